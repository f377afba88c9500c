package service

import (
	"testing"
	"time"

	"github.com/projecthub/pm-system/internal/core/domain"
	"github.com/projecthub/pm-system/internal/core/ports"
)

// TestScenario_DeadlineToCompletion walks a task from creation through a
// reminder sweep to completion, checking that each step leaves exactly the
// expected notifications, emails and audit entries.
func TestScenario_DeadlineToCompletion(t *testing.T) {
	f := newFixture(t)

	admin, _, err := f.auth.EnsureAdmin(f.ctx, "Ada", "ada@example.com", "changeme")
	if err != nil {
		t.Fatalf("EnsureAdmin returned error: %v", err)
	}
	manager, err := f.accounts.Create(f.ctx, admin, ports.CreateAccountInput{
		Name: "Mona", Email: "mona@example.com", Password: "pass123", Role: domain.RoleManager,
	})
	if err != nil {
		t.Fatalf("create manager: %v", err)
	}
	user, err := f.accounts.Create(f.ctx, manager, ports.CreateAccountInput{
		Name: "Uma", Email: "uma@example.com", Password: "pass123", Role: domain.RoleUser,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	project, err := f.projects.Create(f.ctx, admin, ports.CreateProjectInput{Title: "Apollo", AssignedTo: manager.ID})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	task, err := f.tasks.Create(f.ctx, manager, ports.CreateTaskInput{
		Project:        project.ID,
		Title:          "Draft brief",
		AssignedTo:     user.ID,
		EstimatedHours: 3,
		DueDate:        timePtr(f.clock.Now().Add(30 * time.Hour)),
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	f.clock.Advance(time.Hour)
	res, err := f.sweeps.DeadlineReminders(f.ctx)
	if err != nil || res.Created != 1 {
		t.Fatalf("expected one reminder, got %+v (%v)", res, err)
	}
	f.clock.Advance(time.Hour)
	if res, _ := f.sweeps.DeadlineReminders(f.ctx); res.Created != 0 {
		t.Fatalf("expected repeat sweep to create nothing, got %+v", res)
	}

	if _, err := f.tasks.Update(f.ctx, user, task.ID, ports.UpdateTaskInput{Status: ptr(domain.StatusCompleted)}); err != nil {
		t.Fatalf("complete task: %v", err)
	}
	f.clock.Advance(24 * time.Hour)
	if res, _ := f.sweeps.DeadlineReminders(f.ctx); res.Scanned != 0 {
		t.Fatalf("expected completed task to leave the sweep, got %+v", res)
	}
	if res, _ := f.sweeps.OverdueAlerts(f.ctx); res.Scanned != 0 {
		t.Fatalf("expected completed task never to be overdue, got %+v", res)
	}

	want := map[domain.NotificationType]int{
		domain.NotificationProjectAssignment: 1,
		domain.NotificationTaskAssignment:    1,
		domain.NotificationDeadlineReminder:  1,
		domain.NotificationTaskCompletion:    1,
	}
	for typ, n := range want {
		if got := len(f.notificationsOf(typ)); got != n {
			t.Fatalf("expected %d %s notifications, got %d", n, typ, got)
		}
	}
	if got := len(f.mailer.Sent()); got != 4 {
		t.Fatalf("expected 4 emails, got %d", got)
	}

	actions := map[domain.Action]int{}
	for _, e := range f.activityEntries(t) {
		actions[e.Action]++
	}
	if actions[domain.ActionUserCreated] != 2 || actions[domain.ActionProjectCreated] != 1 ||
		actions[domain.ActionTaskCreated] != 1 || actions[domain.ActionTaskStatusChanged] != 1 {
		t.Fatalf("unexpected audit trail: %+v", actions)
	}

	unread, err := f.notifications.UnreadCount(f.ctx, user)
	if err != nil || unread != 2 {
		t.Fatalf("expected 2 unread for the user, got %d (%v)", unread, err)
	}
}
