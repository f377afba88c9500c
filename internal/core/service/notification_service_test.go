package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/projecthub/pm-system/internal/core/domain"
	"github.com/projecthub/pm-system/internal/core/ports"
)

func TestNotificationService_Create_SendsEmail(t *testing.T) {
	f := newFixture(t)
	manager := f.seedAccount(t, "Mona", domain.RoleManager, "")

	n, err := f.notifications.Create(f.ctx, ports.CreateNotificationInput{
		Recipient:      manager.ID,
		Type:           domain.NotificationProjectAssignment,
		Title:          "New Project Assigned: Apollo",
		Message:        "You have been assigned to manage project Apollo.",
		RelatedProject: "p-apollo",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if n.Priority != domain.NotificationPriorityMedium {
		t.Fatalf("expected default priority medium, got %s", n.Priority)
	}
	if !n.EmailSent || n.EmailSentAt == nil {
		t.Fatalf("expected notification flagged as emailed")
	}

	sent := f.mailer.Sent()
	if len(sent) != 1 || sent[0].To != manager.Email {
		t.Fatalf("expected one email to %s, got %+v", manager.Email, sent)
	}
	if sent[0].Subject != n.Title || !strings.Contains(sent[0].Body, "manage project Apollo") {
		t.Fatalf("unexpected email: %+v", sent[0])
	}

	stored := f.store.Notifications().All()
	if len(stored) != 1 || !stored[0].EmailSent {
		t.Fatalf("expected stored notification flagged as emailed, got %+v", stored)
	}
}

func TestNotificationService_Create_MasterSwitchSuppressesEveryType(t *testing.T) {
	f := newFixture(t)
	manager := f.seedAccount(t, "Mona", domain.RoleManager, "")
	f.updateNotificationSettings(t, func(n *domain.NotificationSettings) { n.EmailNotifications = false })

	for _, typ := range domain.NotificationTypes() {
		n, err := f.notifications.Create(f.ctx, ports.CreateNotificationInput{
			Recipient: manager.ID,
			Type:      typ,
			Title:     "title",
			Message:   "message",
		})
		if err != nil {
			t.Fatalf("Create(%s) returned error: %v", typ, err)
		}
		if n.EmailSent {
			t.Fatalf("expected no email for %s with master switch off", typ)
		}
	}

	if got := len(f.mailer.Sent()); got != 0 {
		t.Fatalf("expected no emails, got %d", got)
	}
	if got := len(f.store.Notifications().All()); got != len(domain.NotificationTypes()) {
		t.Fatalf("expected every notification stored, got %d", got)
	}
}

func TestNotificationService_Create_TeamUpdatesOnlyEmailManagers(t *testing.T) {
	f := newFixture(t)
	manager := f.seedAccount(t, "Mona", domain.RoleManager, "")
	user := f.seedAccount(t, "Uma", domain.RoleUser, manager.ID)

	for _, recipient := range []string{manager.ID, user.ID} {
		if _, err := f.notifications.Create(f.ctx, ports.CreateNotificationInput{
			Recipient: recipient,
			Type:      domain.NotificationTaskCompletion,
			Title:     "Task Completed: Draft",
			Message:   "done",
		}); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}

	sent := f.mailer.Sent()
	if len(sent) != 1 || sent[0].To != manager.Email {
		t.Fatalf("expected a single email to the manager, got %+v", sent)
	}
}

func TestNotificationService_Create_SendFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	user := f.seedAccount(t, "Uma", domain.RoleUser, "")
	f.mailer.err = errors.New("smtp unavailable")

	n, err := f.notifications.Create(f.ctx, ports.CreateNotificationInput{
		Recipient: user.ID,
		Type:      domain.NotificationTaskAssignment,
		Title:     "New Task Assigned: Draft",
		Message:   "You have a new task.",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if n.EmailSent {
		t.Fatalf("expected EmailSent false after send failure")
	}
	stored := f.store.Notifications().All()
	if len(stored) != 1 || stored[0].EmailSent {
		t.Fatalf("expected one stored notification without email flag, got %+v", stored)
	}
}

func TestNotificationService_Create_SendTimeoutIsBounded(t *testing.T) {
	f := newFixture(t)
	user := f.seedAccount(t, "Uma", domain.RoleUser, "")
	f.mailer.block = make(chan struct{})
	defer close(f.mailer.block)

	start := time.Now()
	n, err := f.notifications.Create(f.ctx, ports.CreateNotificationInput{
		Recipient: user.ID,
		Type:      domain.NotificationTaskAssignment,
		Title:     "New Task Assigned: Draft",
		Message:   "You have a new task.",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("expected Create to return after the mail timeout, took %s", elapsed)
	}
	if n.EmailSent {
		t.Fatalf("expected EmailSent false after timeout")
	}
}

func TestNotificationService_Create_Validation(t *testing.T) {
	f := newFixture(t)

	cases := []ports.CreateNotificationInput{
		{Type: domain.NotificationSystemUpdate, Title: "t", Message: "m"},
		{Recipient: "u", Type: "carrier_pigeon", Title: "t", Message: "m"},
		{Recipient: "u", Type: domain.NotificationSystemUpdate, Message: "m"},
		{Recipient: "u", Type: domain.NotificationSystemUpdate, Title: "t"},
		{Recipient: "u", Type: domain.NotificationSystemUpdate, Title: "t", Message: "m", Priority: "critical"},
	}
	for i, in := range cases {
		if _, err := f.notifications.Create(f.ctx, in); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("case %d: expected ErrValidation, got %v", i, err)
		}
	}
	if got := len(f.store.Notifications().All()); got != 0 {
		t.Fatalf("expected nothing stored, got %d", got)
	}
}

func TestNotificationService_ReadSideIsRecipientScoped(t *testing.T) {
	f := newFixture(t)
	uma := f.seedAccount(t, "Uma", domain.RoleUser, "")
	ugo := f.seedAccount(t, "Ugo", domain.RoleUser, "")

	var first *domain.Notification
	for i := 0; i < 3; i++ {
		n, err := f.notifications.Create(f.ctx, ports.CreateNotificationInput{
			Recipient: uma.ID,
			Type:      domain.NotificationSystemUpdate,
			Title:     "Update",
			Message:   "maintenance window",
		})
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		if first == nil {
			first = n
		}
		f.clock.Advance(time.Minute)
	}

	if _, err := f.notifications.MarkRead(f.ctx, ugo, first.ID); !errors.Is(err, domain.ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound for foreign notification, got %v", err)
	}
	if err := f.notifications.Delete(f.ctx, ugo, first.ID); !errors.Is(err, domain.ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound on foreign delete, got %v", err)
	}

	read, err := f.notifications.MarkRead(f.ctx, uma, first.ID)
	if err != nil {
		t.Fatalf("MarkRead returned error: %v", err)
	}
	if !read.IsRead || read.ReadAt == nil {
		t.Fatalf("expected notification marked read")
	}

	unread, err := f.notifications.UnreadCount(f.ctx, uma)
	if err != nil || unread != 2 {
		t.Fatalf("expected 2 unread, got %d (%v)", unread, err)
	}

	page, err := f.notifications.List(f.ctx, uma, ports.NotificationQuery{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if page.Total != 3 || page.Pages != 2 || len(page.Items) != 2 {
		t.Fatalf("unexpected page: total=%d pages=%d items=%d", page.Total, page.Pages, len(page.Items))
	}
	if page.Items[0].ID == first.ID {
		t.Fatalf("expected newest notification first")
	}

	marked, err := f.notifications.MarkAllRead(f.ctx, uma)
	if err != nil || marked != 2 {
		t.Fatalf("expected 2 marked read, got %d (%v)", marked, err)
	}
	empty, err := f.notifications.List(f.ctx, ugo, ports.NotificationQuery{})
	if err != nil || empty.Total != 0 {
		t.Fatalf("expected no notifications for Ugo, got %+v (%v)", empty, err)
	}
}

func TestNotificationService_SendTestEmail(t *testing.T) {
	f := newFixture(t)
	admin := f.seedAccount(t, "Ada", domain.RoleAdmin, "")
	user := f.seedAccount(t, "Uma", domain.RoleUser, "")

	_, err := f.notifications.SendTestEmail(f.ctx, user)
	expectDenied(t, err)

	n, err := f.notifications.SendTestEmail(f.ctx, admin)
	if err != nil {
		t.Fatalf("SendTestEmail returned error: %v", err)
	}
	if n.Type != domain.NotificationSystemUpdate || n.Recipient != admin.ID || !n.EmailSent {
		t.Fatalf("unexpected test notification: %+v", n)
	}
}
