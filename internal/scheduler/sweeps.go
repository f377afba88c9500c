package scheduler

import (
	"context"
	"time"

	"github.com/projecthub/pm-system/internal/core/service"
)

const (
	TriggerDeadlineReminders    = "deadline-reminders"
	TriggerOverdueNotifications = "overdue-notifications"
	TriggerWeeklyReports        = "weekly-reports"
)

// Specs holds the cron spec of each sweep trigger.
type Specs struct {
	Deadline string
	Overdue  string
	Weekly   string
}

// SweepTriggers binds the three notification sweeps to their schedules.
// The weekly trigger fires daily; the sweep itself checks the configured
// report day.
func SweepTriggers(sweeps *service.SweepService, specs Specs, loc *time.Location) []Trigger {
	return []Trigger{
		{
			Name:     TriggerDeadlineReminders,
			Spec:     specs.Deadline,
			Location: loc,
			Handler:  sweepHandler(sweeps.DeadlineReminders),
		},
		{
			Name:     TriggerOverdueNotifications,
			Spec:     specs.Overdue,
			Location: loc,
			Handler:  sweepHandler(sweeps.OverdueAlerts),
		},
		{
			Name:     TriggerWeeklyReports,
			Spec:     specs.Weekly,
			Location: loc,
			Handler:  sweepHandler(sweeps.WeeklyReports),
		},
	}
}

func sweepHandler(sweep func(context.Context) (service.SweepResult, error)) Handler {
	return func(ctx context.Context) error {
		_, err := sweep(ctx)
		return err
	}
}
