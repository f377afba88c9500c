package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/projecthub/pm-system/internal/core/domain"
	"github.com/projecthub/pm-system/internal/core/ports"
)

func TestSweepService_DeadlineReminders_OncePerWindow(t *testing.T) {
	f := newFixture(t)
	manager := f.seedAccount(t, "Mona", domain.RoleManager, "")
	user := f.seedAccount(t, "Uma", domain.RoleUser, manager.ID)
	project := f.seedProject(t, "Apollo", manager.ID, domain.StatusInProgress)

	now := f.clock.Now()
	f.seedTask(t, "Draft brief", project.ID, user.ID, domain.StatusInProgress, timePtr(now.Add(36*time.Hour)))
	f.seedTask(t, "Far away", project.ID, user.ID, domain.StatusPending, timePtr(now.AddDate(0, 0, 5)))
	f.seedTask(t, "Already done", project.ID, user.ID, domain.StatusCompleted, timePtr(now.Add(12*time.Hour)))
	f.seedTask(t, "No date", project.ID, user.ID, domain.StatusPending, nil)

	res, err := f.sweeps.DeadlineReminders(f.ctx)
	if err != nil {
		t.Fatalf("DeadlineReminders returned error: %v", err)
	}
	if res.Scanned != 1 || res.Created != 1 {
		t.Fatalf("unexpected first sweep result: %+v", res)
	}

	res, err = f.sweeps.DeadlineReminders(f.ctx)
	if err != nil {
		t.Fatalf("DeadlineReminders returned error: %v", err)
	}
	if res.Created != 0 || res.Skipped != 1 {
		t.Fatalf("expected repeat sweep to skip, got %+v", res)
	}

	reminders := f.notificationsOf(domain.NotificationDeadlineReminder)
	if len(reminders) != 1 {
		t.Fatalf("expected one reminder, got %d", len(reminders))
	}
	r := reminders[0]
	if r.Recipient != user.ID || r.RelatedTask != "t-draft-brief" || r.Priority != domain.NotificationPriorityHigh {
		t.Fatalf("unexpected reminder: %+v", r)
	}
	if !strings.Contains(r.Message, "Mar 11, 2026") || !strings.Contains(r.Message, "Project: Apollo") {
		t.Fatalf("unexpected reminder message: %q", r.Message)
	}

	sent := f.mailer.Sent()
	if len(sent) != 1 || sent[0].Subject != "Task Deadline Reminder - "+r.Title {
		t.Fatalf("expected one reminder email, got %+v", sent)
	}

	f.clock.Advance(25 * time.Hour)
	res, err = f.sweeps.DeadlineReminders(f.ctx)
	if err != nil {
		t.Fatalf("DeadlineReminders returned error: %v", err)
	}
	if res.Created != 1 {
		t.Fatalf("expected a new reminder once the window passed, got %+v", res)
	}
}

func TestSweepService_DeadlineReminders_Disabled(t *testing.T) {
	f := newFixture(t)
	user := f.seedAccount(t, "Uma", domain.RoleUser, "")
	f.seedTask(t, "Draft brief", "p-missing", user.ID, domain.StatusPending, timePtr(f.clock.Now().Add(time.Hour)))
	f.updateNotificationSettings(t, func(n *domain.NotificationSettings) { n.TaskDeadlineReminder = false })

	res, err := f.sweeps.DeadlineReminders(f.ctx)
	if err != nil {
		t.Fatalf("DeadlineReminders returned error: %v", err)
	}
	if res.Reason == "" || res.Scanned != 0 {
		t.Fatalf("expected gated sweep, got %+v", res)
	}
	if got := len(f.store.Notifications().All()); got != 0 {
		t.Fatalf("expected no notifications, got %d", got)
	}
}

func TestSweepService_DeadlineReminders_SkipsUnknownAssignee(t *testing.T) {
	f := newFixture(t)
	f.seedTask(t, "Orphan", "p-missing", "ghost", domain.StatusPending, timePtr(f.clock.Now().Add(time.Hour)))

	res, err := f.sweeps.DeadlineReminders(f.ctx)
	if err != nil {
		t.Fatalf("DeadlineReminders returned error: %v", err)
	}
	if res.Skipped != 1 || res.Created != 0 {
		t.Fatalf("expected orphan task skipped, got %+v", res)
	}
}

func TestSweepService_OverdueAlerts_OncePerCalendarDay(t *testing.T) {
	f := newFixture(t)
	user := f.seedAccount(t, "Uma", domain.RoleUser, "")
	f.seedTask(t, "Late report", "p-gone", user.ID, domain.StatusInProgress, timePtr(f.clock.Now().Add(-24*time.Hour)))

	run := func() SweepResult {
		t.Helper()
		res, err := f.sweeps.OverdueAlerts(f.ctx)
		if err != nil {
			t.Fatalf("OverdueAlerts returned error: %v", err)
		}
		return res
	}

	if res := run(); res.Created != 1 {
		t.Fatalf("expected first alert, got %+v", res)
	}
	alerts := f.notificationsOf(domain.NotificationTaskOverdue)
	if len(alerts) != 1 || alerts[0].Priority != domain.NotificationPriorityUrgent {
		t.Fatalf("unexpected alerts: %+v", alerts)
	}
	if !strings.Contains(alerts[0].Message, "Project: Unknown") {
		t.Fatalf("expected unknown project fallback, got %q", alerts[0].Message)
	}

	// 12:00 the same day.
	f.clock.Advance(2 * time.Hour)
	if res := run(); res.Created != 0 || res.Skipped != 1 {
		t.Fatalf("expected same-day repeat skipped, got %+v", res)
	}

	// 02:00 the next day.
	f.clock.Advance(14 * time.Hour)
	if res := run(); res.Created != 1 {
		t.Fatalf("expected a new alert on the next day, got %+v", res)
	}
	if got := len(f.notificationsOf(domain.NotificationTaskOverdue)); got != 2 {
		t.Fatalf("expected 2 overdue alerts, got %d", got)
	}
	if got := len(f.mailer.Sent()); got != 2 {
		t.Fatalf("expected 2 emails, got %d", got)
	}
}

func TestSweepService_WeeklyReports_OnlyOnConfiguredDay(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t, "Ada", domain.RoleAdmin, "")
	manager := f.seedAccount(t, "Mona", domain.RoleManager, "")
	user := f.seedAccount(t, "Uma", domain.RoleUser, manager.ID)
	gone := f.seedAccount(t, "Gus", domain.RoleUser, manager.ID)
	gone.IsActive = false
	if err := f.store.Accounts().Update(f.ctx, gone); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	project := f.seedProject(t, "Apollo", manager.ID, domain.StatusInProgress)
	f.seedTask(t, "Done", project.ID, user.ID, domain.StatusCompleted, nil)
	f.seedTask(t, "Doing", project.ID, user.ID, domain.StatusInProgress, nil)

	res, err := f.sweeps.WeeklyReports(f.ctx)
	if err != nil {
		t.Fatalf("WeeklyReports returned error: %v", err)
	}
	if res.Reason == "" || res.Created != 0 {
		t.Fatalf("expected no reports on tuesday with friday configured, got %+v", res)
	}

	f.updateNotificationSettings(t, func(n *domain.NotificationSettings) { n.WeeklyReportDay = "tuesday" })
	res, err = f.sweeps.WeeklyReports(f.ctx)
	if err != nil {
		t.Fatalf("WeeklyReports returned error: %v", err)
	}
	if res.Created != 2 {
		t.Fatalf("expected reports for the active user and manager, got %+v", res)
	}

	var report *domain.Notification
	for _, n := range f.notificationsOf(domain.NotificationWeeklyReport) {
		if n.Recipient == user.ID {
			report = n
		}
		if n.Recipient == gone.ID {
			t.Fatalf("inactive account received a report")
		}
	}
	if report == nil {
		t.Fatalf("expected a report for %s", user.ID)
	}
	if !strings.Contains(report.Message, "1 tasks completed this week") || !strings.Contains(report.Message, "50% overall completion rate") {
		t.Fatalf("unexpected report message: %q", report.Message)
	}

	sent := f.mailer.Sent()
	if len(sent) != 2 || sent[0].Subject != "Weekly Progress Report - 03/10/2026" {
		t.Fatalf("unexpected weekly emails: %+v", sent)
	}
}

func TestSweepService_WeeklyReports_Disabled(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t, "Uma", domain.RoleUser, "")
	f.updateNotificationSettings(t, func(n *domain.NotificationSettings) {
		n.WeeklyReportDay = "tuesday"
		n.WeeklyReports = false
	})

	res, err := f.sweeps.WeeklyReports(f.ctx)
	if err != nil {
		t.Fatalf("WeeklyReports returned error: %v", err)
	}
	if res.Reason != "weekly reports disabled" || res.Created != 0 {
		t.Fatalf("expected disabled reports, got %+v", res)
	}
}

func TestSweepService_WeeklyStats(t *testing.T) {
	f := newFixture(t)
	manager := f.seedAccount(t, "Mona", domain.RoleManager, "")
	user := f.seedAccount(t, "Uma", domain.RoleUser, manager.ID)
	apollo := f.seedProject(t, "Apollo", manager.ID, domain.StatusInProgress)
	hermes := f.seedProject(t, "Hermes", manager.ID, domain.StatusPending)

	f.seedTask(t, "One", apollo.ID, user.ID, domain.StatusCompleted, nil)
	f.seedTask(t, "Two", apollo.ID, user.ID, domain.StatusCompleted, nil)
	f.seedTask(t, "Three", hermes.ID, user.ID, domain.StatusPending, nil)

	st, err := f.sweeps.WeeklyStats(f.ctx, user.ID, f.clock.Now())
	if err != nil {
		t.Fatalf("WeeklyStats returned error: %v", err)
	}
	if st.CompletedTasks != 2 || st.TotalTasks != 3 || st.ActiveProjects != 1 || st.CompletionRate != 67 {
		t.Fatalf("unexpected user stats: %+v", st)
	}

	st, err = f.sweeps.WeeklyStats(f.ctx, manager.ID, f.clock.Now())
	if err != nil {
		t.Fatalf("WeeklyStats returned error: %v", err)
	}
	if st.TotalTasks != 0 || st.ActiveProjects != 1 || st.CompletionRate != 0 {
		t.Fatalf("unexpected manager stats: %+v", st)
	}

	// Completions older than a week drop out.
	st, err = f.sweeps.WeeklyStats(f.ctx, user.ID, f.clock.Now().AddDate(0, 0, 8))
	if err != nil {
		t.Fatalf("WeeklyStats returned error: %v", err)
	}
	if st.CompletedTasks != 0 {
		t.Fatalf("expected stale completions excluded, got %+v", st)
	}
}

type stubDedupCache struct {
	seen    map[string]bool
	err     error
	marked  map[string]time.Duration
	lookups int
}

func newStubDedupCache() *stubDedupCache {
	return &stubDedupCache{seen: map[string]bool{}, marked: map[string]time.Duration{}}
}

func (c *stubDedupCache) Seen(_ context.Context, key string) (bool, error) {
	c.lookups++
	if c.err != nil {
		return false, c.err
	}
	return c.seen[key], nil
}

func (c *stubDedupCache) Mark(_ context.Context, key string, ttl time.Duration) error {
	c.marked[key] = ttl
	c.seen[key] = true
	return nil
}

func TestDeduplicator_WindowStart(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2026, 3, 10, 1, 30, 0, 0, testZone)

	if got := f.dedup.WindowStart(domain.NotificationDeadlineReminder, now); !got.Equal(now.Add(-24 * time.Hour)) {
		t.Fatalf("unexpected reminder window start: %s", got)
	}
	want := time.Date(2026, 3, 10, 0, 0, 0, 0, testZone)
	if got := f.dedup.WindowStart(domain.NotificationTaskOverdue, now); !got.Equal(want) {
		t.Fatalf("expected local midnight %s, got %s", want, got)
	}
}

func TestDeduplicator_CacheShortCircuitsAndFallsBack(t *testing.T) {
	f := newFixture(t)
	cache := newStubDedupCache()
	d := NewDeduplicator(f.store.Notifications(), cache, testZone, f.dedup.log)
	now := f.clock.Now()

	d.Remember(f.ctx, "uma", domain.NotificationTaskOverdue, "t-1", now)
	for key, ttl := range cache.marked {
		if !strings.HasSuffix(key, ":2026-03-10") {
			t.Fatalf("expected overdue key bucketed by local date, got %s", key)
		}
		if ttl != 14*time.Hour {
			t.Fatalf("expected ttl until local midnight, got %s", ttl)
		}
	}

	dup, err := d.AlreadySent(f.ctx, "uma", domain.NotificationTaskOverdue, "t-1", now)
	if err != nil || !dup {
		t.Fatalf("expected cache hit, got %v (%v)", dup, err)
	}

	cache.err = errors.New("redis down")
	dup, err = d.AlreadySent(f.ctx, "uma", domain.NotificationTaskOverdue, "t-1", now)
	if err != nil {
		t.Fatalf("expected fallback to store, got error %v", err)
	}
	if dup {
		t.Fatalf("expected store to report no notification")
	}
}

// failingNotifier delegates to next except for notifications about failTask.
type failingNotifier struct {
	next     ports.Notifier
	failTask string
	calls    int
}

func (n *failingNotifier) Create(ctx context.Context, in ports.CreateNotificationInput) (*domain.Notification, error) {
	n.calls++
	if in.RelatedTask == n.failTask {
		return nil, errors.New("store unavailable")
	}
	return n.next.Create(ctx, in)
}

func TestSweepService_DeadlineReminders_ContinuesAfterTaskFailure(t *testing.T) {
	f := newFixture(t)
	manager := f.seedAccount(t, "Mona", domain.RoleManager, "")
	user := f.seedAccount(t, "Uma", domain.RoleUser, manager.ID)
	project := f.seedProject(t, "Apollo", manager.ID, domain.StatusInProgress)

	due := timePtr(f.clock.Now().Add(12 * time.Hour))
	f.seedTask(t, "A", project.ID, user.ID, domain.StatusPending, due)
	f.seedTask(t, "B", project.ID, user.ID, domain.StatusPending, due)
	f.seedTask(t, "C", project.ID, user.ID, domain.StatusPending, due)

	notifier := &failingNotifier{next: f.notifications, failTask: "t-b"}
	sweeps := NewSweepService(f.store.Tasks(), f.store.Projects(), f.store.Accounts(), f.settings, notifier, f.dedup, testZone, f.sweeps.log)
	sweeps.now = f.clock.Now

	res, err := sweeps.DeadlineReminders(f.ctx)
	if err != nil {
		t.Fatalf("DeadlineReminders returned error: %v", err)
	}
	if res.Scanned != 3 || res.Created != 2 || res.Failed != 1 {
		t.Fatalf("expected two reminders and one failure, got %+v", res)
	}
	if notifier.calls != 3 {
		t.Fatalf("expected every task attempted, got %d calls", notifier.calls)
	}

	got := map[string]bool{}
	for _, n := range f.notificationsOf(domain.NotificationDeadlineReminder) {
		got[n.RelatedTask] = true
	}
	if !got["t-a"] || got["t-b"] || !got["t-c"] {
		t.Fatalf("unexpected reminded tasks: %v", got)
	}

	// The failed task is retried on the next sweep; the others stay deduplicated.
	notifier.failTask = ""
	res, err = sweeps.DeadlineReminders(f.ctx)
	if err != nil {
		t.Fatalf("DeadlineReminders returned error: %v", err)
	}
	if res.Created != 1 || res.Skipped != 2 {
		t.Fatalf("expected only the failed task to be retried, got %+v", res)
	}
}

func TestSweepService_WeeklyReports_SubjectUsesLocalDate(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t, "Uma", domain.RoleUser, "")
	f.updateNotificationSettings(t, func(n *domain.NotificationSettings) { n.WeeklyReportDay = "tuesday" })

	// Tuesday 22:00 locally is already Wednesday in UTC.
	f.clock.Advance(12 * time.Hour)
	res, err := f.sweeps.WeeklyReports(f.ctx)
	if err != nil {
		t.Fatalf("WeeklyReports returned error: %v", err)
	}
	if res.Created != 1 {
		t.Fatalf("expected one report, got %+v", res)
	}

	sent := f.mailer.Sent()
	if len(sent) != 1 || sent[0].Subject != "Weekly Progress Report - 03/10/2026" {
		t.Fatalf("expected subject dated in the configured zone, got %+v", sent)
	}
}
