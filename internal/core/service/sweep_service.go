package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/projecthub/pm-system/internal/core/domain"
	"github.com/projecthub/pm-system/internal/core/ports"
)

const (
	defaultReminderDays = 2
	weeklyLookback      = 7
)

// SweepResult summarises one sweep.
type SweepResult struct {
	Scanned int `json:"scanned"`
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
	// Reason is set when the sweep did nothing because it was gated off.
	Reason string `json:"reason,omitempty"`
}

// WeeklyStats is the trailing summary included in a weekly report.
type WeeklyStats struct {
	CompletedTasks int64 `json:"completed_tasks"`
	TotalTasks     int64 `json:"total_tasks"`
	ActiveProjects int64 `json:"active_projects"`
	CompletionRate int   `json:"completion_rate"`
}

// SweepService implements the scheduled scans. Each unit of work (one task,
// one account) is handled independently: its failure is logged and counted
// and the sweep moves on.
type SweepService struct {
	tasks    ports.TaskRepository
	projects ports.ProjectRepository
	accounts ports.AccountRepository
	settings ports.SettingsProvider
	notifier ports.Notifier
	dedup    *Deduplicator
	loc      *time.Location
	log      zerolog.Logger
	now      func() time.Time
}

func NewSweepService(
	tasks ports.TaskRepository,
	projects ports.ProjectRepository,
	accounts ports.AccountRepository,
	settings ports.SettingsProvider,
	notifier ports.Notifier,
	dedup *Deduplicator,
	loc *time.Location,
	log zerolog.Logger,
) *SweepService {
	if loc == nil {
		loc = time.UTC
	}
	return &SweepService{
		tasks:    tasks,
		projects: projects,
		accounts: accounts,
		settings: settings,
		notifier: notifier,
		dedup:    dedup,
		loc:      loc,
		log:      log,
		now:      time.Now,
	}
}

// DeadlineReminders notifies assignees of open tasks due within the
// configured lead time, at most once per task per 24 hours.
func (s *SweepService) DeadlineReminders(ctx context.Context) (SweepResult, error) {
	var res SweepResult

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return res, fmt.Errorf("deadline sweep: %w", err)
	}
	if !settings.Notifications.TaskDeadlineReminder {
		res.Reason = "deadline reminders disabled"
		return res, nil
	}
	days := settings.Notifications.DeadlineReminderDays
	if days <= 0 {
		days = defaultReminderDays
	}

	now := s.now()
	until := now.AddDate(0, 0, days)
	tasks, err := s.tasks.List(ctx, ports.TaskFilter{
		DueFrom:       &now,
		DueTo:         &until,
		ExcludeStatus: domain.StatusCompleted,
	})
	if err != nil {
		return res, fmt.Errorf("deadline sweep: %w", err)
	}

	for _, task := range tasks {
		res.Scanned++
		due := formatDate(*task.DueDate, s.loc)
		outcome := s.remind(ctx, task, now, domain.NotificationDeadlineReminder, func(projectTitle string) ports.CreateNotificationInput {
			return ports.CreateNotificationInput{
				Title:    "Deadline Reminder: " + task.Title,
				Message:  fmt.Sprintf("Your task %q is due on %s. Project: %s", task.Title, due, projectTitle),
				Priority: domain.NotificationPriorityHigh,
			}
		})
		res.count(outcome)
	}

	s.log.Info().
		Int("scanned", res.Scanned).
		Int("created", res.Created).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Msg("deadline reminder sweep finished")
	return res, nil
}

// OverdueAlerts notifies assignees of open tasks past due, at most once per
// task per calendar day.
func (s *SweepService) OverdueAlerts(ctx context.Context) (SweepResult, error) {
	var res SweepResult

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return res, fmt.Errorf("overdue sweep: %w", err)
	}
	if !settings.Notifications.OverdueTasks {
		res.Reason = "overdue alerts disabled"
		return res, nil
	}

	now := s.now()
	tasks, err := s.tasks.List(ctx, ports.TaskFilter{
		DueBefore:     &now,
		ExcludeStatus: domain.StatusCompleted,
	})
	if err != nil {
		return res, fmt.Errorf("overdue sweep: %w", err)
	}

	for _, task := range tasks {
		res.Scanned++
		due := formatDate(*task.DueDate, s.loc)
		outcome := s.remind(ctx, task, now, domain.NotificationTaskOverdue, func(projectTitle string) ports.CreateNotificationInput {
			return ports.CreateNotificationInput{
				Title:    "Overdue Task: " + task.Title,
				Message:  fmt.Sprintf("Your task %q was due on %s and is now overdue. Project: %s", task.Title, due, projectTitle),
				Priority: domain.NotificationPriorityUrgent,
			}
		})
		res.count(outcome)
	}

	s.log.Info().
		Int("scanned", res.Scanned).
		Int("created", res.Created).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Msg("overdue sweep finished")
	return res, nil
}

type outcome int

const (
	outcomeCreated outcome = iota
	outcomeSkipped
	outcomeFailed
)

func (r *SweepResult) count(o outcome) {
	switch o {
	case outcomeCreated:
		r.Created++
	case outcomeSkipped:
		r.Skipped++
	case outcomeFailed:
		r.Failed++
	}
}

func (s *SweepService) remind(
	ctx context.Context,
	task *domain.Task,
	now time.Time,
	typ domain.NotificationType,
	build func(projectTitle string) ports.CreateNotificationInput,
) outcome {
	log := s.log.With().Str("task_id", task.ID).Str("type", string(typ)).Logger()

	if task.AssignedTo == "" {
		return outcomeSkipped
	}
	if _, err := s.accounts.FindByID(ctx, task.AssignedTo); err != nil {
		log.Debug().Err(err).Msg("assignee not resolvable, skipping")
		return outcomeSkipped
	}

	dup, err := s.dedup.AlreadySent(ctx, task.AssignedTo, typ, task.ID, now)
	if err != nil {
		log.Warn().Err(err).Msg("dedup check failed, skipping task")
		return outcomeFailed
	}
	if dup {
		return outcomeSkipped
	}

	projectTitle := "Unknown"
	if p, err := s.projects.FindByID(ctx, task.Project); err == nil {
		projectTitle = p.Title
	}

	in := build(projectTitle)
	in.Recipient = task.AssignedTo
	in.Type = typ
	in.RelatedTask = task.ID
	in.RelatedProject = task.Project
	if _, err := s.notifier.Create(ctx, in); err != nil {
		log.Warn().Err(err).Msg("failed to create reminder")
		return outcomeFailed
	}
	s.dedup.Remember(ctx, task.AssignedTo, typ, task.ID, now)
	return outcomeCreated
}

// WeeklyReports sends every active user and manager a trailing seven-day
// summary, but only when today in the configured zone is the configured
// report day.
func (s *SweepService) WeeklyReports(ctx context.Context) (SweepResult, error) {
	var res SweepResult

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return res, fmt.Errorf("weekly reports: %w", err)
	}
	now := s.now()
	today := strings.ToLower(now.In(s.loc).Weekday().String())
	if today != strings.ToLower(settings.Notifications.WeeklyReportDay) {
		res.Reason = fmt.Sprintf("today is %s, reports go out on %s", today, settings.Notifications.WeeklyReportDay)
		return res, nil
	}
	if !settings.Notifications.WeeklyReports {
		res.Reason = "weekly reports disabled"
		return res, nil
	}

	accounts, err := s.accounts.List(ctx, ports.AccountFilter{
		ActiveOnly: true,
		Roles:      []domain.Role{domain.RoleUser, domain.RoleManager},
	})
	if err != nil {
		return res, fmt.Errorf("weekly reports: %w", err)
	}

	for _, acc := range accounts {
		res.Scanned++
		stats, err := s.WeeklyStats(ctx, acc.ID, now)
		if err != nil {
			s.log.Warn().Err(err).Str("recipient", acc.ID).Msg("weekly stats failed, skipping account")
			res.Failed++
			continue
		}
		_, err = s.notifier.Create(ctx, ports.CreateNotificationInput{
			Recipient: acc.ID,
			Type:      domain.NotificationWeeklyReport,
			Title:     "Weekly Progress Report",
			Message:   formatWeeklyMessage(stats),
			Priority:  domain.NotificationPriorityMedium,
			Metadata: map[string]any{
				"completed_tasks": stats.CompletedTasks,
				"total_tasks":     stats.TotalTasks,
				"active_projects": stats.ActiveProjects,
				"completion_rate": stats.CompletionRate,
			},
		})
		if err != nil {
			s.log.Warn().Err(err).Str("recipient", acc.ID).Msg("failed to create weekly report")
			res.Failed++
			continue
		}
		res.Created++
	}

	s.log.Info().Int("created", res.Created).Int("failed", res.Failed).Msg("weekly reports sent")
	return res, nil
}

// WeeklyStats computes the trailing summary for one account.
func (s *SweepService) WeeklyStats(ctx context.Context, accountID string, now time.Time) (WeeklyStats, error) {
	var st WeeklyStats
	weekAgo := now.AddDate(0, 0, -weeklyLookback)

	completed, err := s.tasks.Count(ctx, ports.TaskFilter{
		AssignedTo:     accountID,
		Status:         domain.StatusCompleted,
		CompletedSince: &weekAgo,
	})
	if err != nil {
		return st, err
	}
	assigned, err := s.tasks.List(ctx, ports.TaskFilter{AssignedTo: accountID})
	if err != nil {
		return st, err
	}

	projectIDs := make([]string, 0, len(assigned))
	seen := make(map[string]bool, len(assigned))
	for _, t := range assigned {
		if !seen[t.Project] {
			seen[t.Project] = true
			projectIDs = append(projectIDs, t.Project)
		}
	}
	active, err := s.projects.Count(ctx, ports.ProjectFilter{
		AssignedTo: accountID,
		IDs:        projectIDs,
		Statuses:   []domain.Status{domain.StatusInProgress},
	})
	if err != nil {
		return st, err
	}

	st.CompletedTasks = completed
	st.TotalTasks = int64(len(assigned))
	st.ActiveProjects = active
	st.CompletionRate = percent(completed, st.TotalTasks)
	return st, nil
}

func formatWeeklyMessage(st WeeklyStats) string {
	return fmt.Sprintf("%d tasks completed this week\n%d active projects\n%d%% overall completion rate",
		st.CompletedTasks, st.ActiveProjects, st.CompletionRate)
}
