package service

import "github.com/projecthub/pm-system/internal/core/domain"

// ShouldSendEmail decides email eligibility for one notification. The
// master switch short-circuits every type.
func ShouldSendEmail(prefs domain.NotificationSettings, recipient *domain.Account, typ domain.NotificationType) bool {
	if !prefs.EmailNotifications {
		return false
	}
	switch typ {
	case domain.NotificationDeadlineReminder:
		return prefs.TaskDeadlineReminder
	case domain.NotificationTaskOverdue:
		return prefs.OverdueTasks
	case domain.NotificationProjectStatusChange, domain.NotificationProjectAssignment:
		return prefs.ProjectStatusUpdates
	case domain.NotificationWeeklyReport:
		return prefs.WeeklyReports
	case domain.NotificationTaskCompletion:
		return prefs.TeamUpdates && recipient != nil && recipient.Role == domain.RoleManager
	case domain.NotificationSystemUpdate:
		return prefs.SystemUpdates
	case domain.NotificationTaskAssignment:
		return true
	default:
		return true
	}
}
