package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/projecthub/pm-system/internal/core/domain"
	"github.com/projecthub/pm-system/internal/core/ports"
	"github.com/projecthub/pm-system/internal/infrastructure/db/memory"
)

const testPassword = "secret1"

// testZone stands in for the configured business zone without needing tzdata.
var testZone = time.FixedZone("EST", -5*60*60)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

// recordingMailer records every delivery. err fails each send; block makes
// Send wait until the channel is closed, ignoring ctx.
type recordingMailer struct {
	mu    sync.Mutex
	sent  []sentMail
	err   error
	block chan struct{}
}

func (m *recordingMailer) Send(_ context.Context, to, subject, body string) error {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *recordingMailer) Sent() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

type fixture struct {
	ctx    context.Context
	store  *memory.Store
	clock  *fakeClock
	mailer *recordingMailer

	settings      *SettingsService
	activity      *ActivityService
	notifications *NotificationService
	auth          *AuthService
	accounts      *AccountService
	projects      *ProjectService
	tasks         *TaskService
	dedup         *Deduplicator
	sweeps        *SweepService
}

// newFixture wires every service against one in-memory store. The clock
// starts on Tuesday 2026-03-10 10:00 in testZone.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	clock := &fakeClock{t: time.Date(2026, 3, 10, 10, 0, 0, 0, testZone)}
	mailer := &recordingMailer{}
	log := zerolog.Nop()

	settings := NewSettingsService(store.Settings(), log)
	settings.now = clock.Now
	activity := NewActivityService(store.Activity(), store.Accounts(), log)
	activity.now = clock.Now
	notifications := NewNotificationService(store.Notifications(), store.Accounts(), settings, mailer,
		NewEmailRenderer("http://localhost:3000", testZone), 50*time.Millisecond, log)
	notifications.now = clock.Now
	auth := NewAuthService(store.Accounts(), settings, activity, "test-secret", time.Hour, log)
	auth.now = clock.Now
	accounts := NewAccountService(store.Accounts(), activity, log)
	accounts.now = clock.Now
	projects := NewProjectService(store.Projects(), store.Tasks(), store.Accounts(), settings, activity, notifications, log)
	projects.now = clock.Now
	tasks := NewTaskService(store.Tasks(), store.Projects(), store.Accounts(), settings, activity, notifications, log)
	tasks.now = clock.Now
	dedup := NewDeduplicator(store.Notifications(), nil, testZone, log)
	sweeps := NewSweepService(store.Tasks(), store.Projects(), store.Accounts(), settings, notifications, dedup, testZone, log)
	sweeps.now = clock.Now

	return &fixture{
		ctx:           context.Background(),
		store:         store,
		clock:         clock,
		mailer:        mailer,
		settings:      settings,
		activity:      activity,
		notifications: notifications,
		auth:          auth,
		accounts:      accounts,
		projects:      projects,
		tasks:         tasks,
		dedup:         dedup,
		sweeps:        sweeps,
	}
}

// seedAccount stores an account directly, bypassing permission checks.
func (f *fixture) seedAccount(t *testing.T, name string, role domain.Role, manager string) *domain.Account {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	now := f.clock.Now().UTC()
	acc := &domain.Account{
		ID:           strings.ToLower(name),
		Name:         name,
		Email:        strings.ToLower(name) + "@example.com",
		PasswordHash: string(hash),
		Role:         role,
		Manager:      manager,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := f.store.Accounts().Create(f.ctx, acc); err != nil {
		t.Fatalf("seed account %s: %v", name, err)
	}
	return acc
}

func (f *fixture) seedProject(t *testing.T, title, manager string, status domain.Status) *domain.Project {
	t.Helper()

	now := f.clock.Now().UTC()
	p := &domain.Project{
		ID:         "p-" + strings.ToLower(strings.ReplaceAll(title, " ", "-")),
		Title:      title,
		Status:     status,
		Priority:   domain.PriorityMedium,
		AssignedTo: manager,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := f.store.Projects().Create(f.ctx, p); err != nil {
		t.Fatalf("seed project %s: %v", title, err)
	}
	return p
}

func (f *fixture) seedTask(t *testing.T, title, project, assignee string, status domain.Status, due *time.Time) *domain.Task {
	t.Helper()

	now := f.clock.Now().UTC()
	task := &domain.Task{
		ID:             "t-" + strings.ToLower(strings.ReplaceAll(title, " ", "-")),
		Title:          title,
		Project:        project,
		AssignedTo:     assignee,
		Status:         status,
		Priority:       domain.PriorityMedium,
		DueDate:        due,
		EstimatedHours: 4,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if status == domain.StatusCompleted {
		task.CompletedAt = &now
	}
	if err := f.store.Tasks().Create(f.ctx, task); err != nil {
		t.Fatalf("seed task %s: %v", title, err)
	}
	return task
}

func (f *fixture) updateNotificationSettings(t *testing.T, mutate func(*domain.NotificationSettings)) {
	t.Helper()

	cur, err := f.settings.Get(f.ctx)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	next := cur.Notifications
	mutate(&next)
	if _, err := f.settings.Update(f.ctx, domain.SettingsUpdate{Notifications: &next}, "admin"); err != nil {
		t.Fatalf("update settings: %v", err)
	}
}

func (f *fixture) notificationsOf(typ domain.NotificationType) []*domain.Notification {
	var out []*domain.Notification
	for _, n := range f.store.Notifications().All() {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

func (f *fixture) activityEntries(t *testing.T) []*domain.ActivityEntry {
	t.Helper()

	items, _, err := f.store.Activity().List(f.ctx, ports.ActivityFilter{})
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	return items
}

func timePtr(t time.Time) *time.Time { return &t }

func ptr[T any](v T) *T { return &v }

func expectDenied(t *testing.T, err error) {
	t.Helper()
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
