package domain

import (
	"regexp"
	"time"
)

// SettingsID is the fixed identifier of the singleton settings document.
const SettingsID = "global"

type ProjectDefaults struct {
	Priority           Priority `json:"priority" bson:"priority"`
	Status             Status   `json:"status" bson:"status"`
	AutoAssignDeadline bool     `json:"auto_assign_deadline" bson:"auto_assign_deadline"`
	DeadlineDays       int      `json:"deadline_days" bson:"deadline_days"`
}

type TaskDefaults struct {
	Priority              Priority `json:"priority" bson:"priority"`
	Status                Status   `json:"status" bson:"status"`
	RequireEstimatedHours bool     `json:"require_estimated_hours" bson:"require_estimated_hours"`
	AutoNotifyOnOverdue   bool     `json:"auto_notify_on_overdue" bson:"auto_notify_on_overdue"`
}

type SystemSettings struct {
	AllowSelfRegistration  bool `json:"allow_self_registration" bson:"allow_self_registration"`
	RequireManagerApproval bool `json:"require_manager_approval" bson:"require_manager_approval"`
	MaxProjectsPerManager  int  `json:"max_projects_per_manager" bson:"max_projects_per_manager"`
	MaxTasksPerUser        int  `json:"max_tasks_per_user" bson:"max_tasks_per_user"`
	SessionTimeoutMinutes  int  `json:"session_timeout_minutes" bson:"session_timeout_minutes"`
}

// NotificationSettings holds the master email switch and the per-type toggles.
type NotificationSettings struct {
	EmailNotifications   bool   `json:"email_notifications" bson:"email_notifications"`
	TaskDeadlineReminder bool   `json:"task_deadline_reminder" bson:"task_deadline_reminder"`
	ProjectStatusUpdates bool   `json:"project_status_updates" bson:"project_status_updates"`
	WeeklyReports        bool   `json:"weekly_reports" bson:"weekly_reports"`
	OverdueTasks         bool   `json:"overdue_tasks" bson:"overdue_tasks"`
	TeamUpdates          bool   `json:"team_updates" bson:"team_updates"`
	SystemUpdates        bool   `json:"system_updates" bson:"system_updates"`
	DeadlineReminderDays int    `json:"deadline_reminder_days" bson:"deadline_reminder_days"`
	ReminderTime         string `json:"reminder_time" bson:"reminder_time"`
	WeeklyReportDay      string `json:"weekly_report_day" bson:"weekly_report_day"`
	WeeklyReportTime     string `json:"weekly_report_time" bson:"weekly_report_time"`
}

// Settings is the process-wide singleton. It holds only value fields, so a
// plain struct copy is a deep copy.
type Settings struct {
	ID              string               `json:"-" bson:"_id"`
	ProjectDefaults ProjectDefaults      `json:"project_defaults" bson:"project_defaults"`
	TaskDefaults    TaskDefaults         `json:"task_defaults" bson:"task_defaults"`
	System          SystemSettings       `json:"system" bson:"system"`
	Notifications   NotificationSettings `json:"notifications" bson:"notifications"`
	LastUpdatedBy   string               `json:"last_updated_by,omitempty" bson:"last_updated_by,omitempty"`
	CreatedAt       time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at" bson:"updated_at"`
}

// SettingsUpdate replaces whole sections; nil sections are left untouched.
type SettingsUpdate struct {
	ProjectDefaults *ProjectDefaults      `json:"project_defaults,omitempty"`
	TaskDefaults    *TaskDefaults         `json:"task_defaults,omitempty"`
	System          *SystemSettings       `json:"system,omitempty"`
	Notifications   *NotificationSettings `json:"notifications,omitempty"`
}

// DefaultSettings returns the document created on first read.
func DefaultSettings() Settings {
	return Settings{
		ID: SettingsID,
		ProjectDefaults: ProjectDefaults{
			Priority:     PriorityMedium,
			Status:       StatusPending,
			DeadlineDays: 7,
		},
		TaskDefaults: TaskDefaults{
			Priority:              PriorityMedium,
			Status:                StatusPending,
			RequireEstimatedHours: true,
			AutoNotifyOnOverdue:   true,
		},
		System: SystemSettings{
			RequireManagerApproval: true,
			MaxProjectsPerManager:  10,
			MaxTasksPerUser:        20,
			SessionTimeoutMinutes:  480,
		},
		Notifications: NotificationSettings{
			EmailNotifications:   true,
			TaskDeadlineReminder: true,
			ProjectStatusUpdates: true,
			WeeklyReports:        true,
			OverdueTasks:         true,
			TeamUpdates:          true,
			SystemUpdates:        true,
			DeadlineReminderDays: 2,
			ReminderTime:         "09:00",
			WeeklyReportDay:      "friday",
			WeeklyReportTime:     "09:00",
		},
	}
}

var clockTime = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

var reportDays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true, "friday": true,
}

// Apply overlays the non-nil sections of u onto s.
func (s *Settings) Apply(u SettingsUpdate) {
	if u.ProjectDefaults != nil {
		s.ProjectDefaults = *u.ProjectDefaults
	}
	if u.TaskDefaults != nil {
		s.TaskDefaults = *u.TaskDefaults
	}
	if u.System != nil {
		s.System = *u.System
	}
	if u.Notifications != nil {
		s.Notifications = *u.Notifications
	}
}

// Validate checks every section and returns the first violation.
func (s *Settings) Validate() error {
	pd := s.ProjectDefaults
	if !pd.Priority.Valid() {
		return Invalid("project_defaults.priority", "must be low, medium or high")
	}
	if !pd.Status.Valid() {
		return Invalid("project_defaults.status", "unknown status")
	}
	if pd.DeadlineDays < 1 {
		return Invalid("project_defaults.deadline_days", "must be at least 1")
	}

	td := s.TaskDefaults
	if !td.Priority.Valid() {
		return Invalid("task_defaults.priority", "must be low, medium or high")
	}
	if !td.Status.Valid() {
		return Invalid("task_defaults.status", "unknown status")
	}

	sys := s.System
	if sys.MaxProjectsPerManager < 1 {
		return Invalid("system.max_projects_per_manager", "must be at least 1")
	}
	if sys.MaxTasksPerUser < 1 {
		return Invalid("system.max_tasks_per_user", "must be at least 1")
	}
	if sys.SessionTimeoutMinutes < 1 {
		return Invalid("system.session_timeout_minutes", "must be at least 1")
	}

	n := s.Notifications
	if n.DeadlineReminderDays < 1 || n.DeadlineReminderDays > 7 {
		return Invalid("notifications.deadline_reminder_days", "must be between 1 and 7")
	}
	if !clockTime.MatchString(n.ReminderTime) {
		return Invalid("notifications.reminder_time", "must be HH:MM")
	}
	if !clockTime.MatchString(n.WeeklyReportTime) {
		return Invalid("notifications.weekly_report_time", "must be HH:MM")
	}
	if !reportDays[n.WeeklyReportDay] {
		return Invalid("notifications.weekly_report_day", "must be a weekday, monday to friday")
	}
	return nil
}
