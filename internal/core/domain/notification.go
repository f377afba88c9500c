package domain

import "time"

// NotificationType is the closed set of notification kinds. Code that
// branches on it switches over every constant below.
type NotificationType string

const (
	NotificationDeadlineReminder    NotificationType = "task_deadline_reminder"
	NotificationTaskOverdue         NotificationType = "task_overdue"
	NotificationProjectStatusChange NotificationType = "project_status_change"
	NotificationProjectAssignment   NotificationType = "project_assignment"
	NotificationTaskAssignment      NotificationType = "task_assignment"
	NotificationTaskCompletion      NotificationType = "task_completion"
	NotificationWeeklyReport        NotificationType = "weekly_report"
	NotificationSystemUpdate        NotificationType = "system_update"
)

var notificationTypes = []NotificationType{
	NotificationDeadlineReminder,
	NotificationTaskOverdue,
	NotificationProjectStatusChange,
	NotificationProjectAssignment,
	NotificationTaskAssignment,
	NotificationTaskCompletion,
	NotificationWeeklyReport,
	NotificationSystemUpdate,
}

// NotificationTypes returns every known type.
func NotificationTypes() []NotificationType {
	out := make([]NotificationType, len(notificationTypes))
	copy(out, notificationTypes)
	return out
}

func (t NotificationType) Valid() bool {
	for _, known := range notificationTypes {
		if t == known {
			return true
		}
	}
	return false
}

// NotificationPriority adds "urgent" on top of the project/task priorities.
type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "low"
	NotificationPriorityMedium NotificationPriority = "medium"
	NotificationPriorityHigh   NotificationPriority = "high"
	NotificationPriorityUrgent NotificationPriority = "urgent"
)

func (p NotificationPriority) Valid() bool {
	switch p {
	case NotificationPriorityLow, NotificationPriorityMedium, NotificationPriorityHigh, NotificationPriorityUrgent:
		return true
	}
	return false
}

// Notification is only ever mutated to set its read and email-sent flags.
type Notification struct {
	ID             string               `json:"id" bson:"_id"`
	Recipient      string               `json:"recipient" bson:"recipient"`
	Sender         string               `json:"sender,omitempty" bson:"sender,omitempty"`
	Type           NotificationType     `json:"type" bson:"type"`
	Title          string               `json:"title" bson:"title"`
	Message        string               `json:"message" bson:"message"`
	RelatedProject string               `json:"related_project,omitempty" bson:"related_project,omitempty"`
	RelatedTask    string               `json:"related_task,omitempty" bson:"related_task,omitempty"`
	Priority       NotificationPriority `json:"priority" bson:"priority"`
	IsRead         bool                 `json:"is_read" bson:"is_read"`
	ReadAt         *time.Time           `json:"read_at,omitempty" bson:"read_at,omitempty"`
	EmailSent      bool                 `json:"email_sent" bson:"email_sent"`
	EmailSentAt    *time.Time           `json:"email_sent_at,omitempty" bson:"email_sent_at,omitempty"`
	ScheduledFor   *time.Time           `json:"scheduled_for,omitempty" bson:"scheduled_for,omitempty"`
	Metadata       map[string]any       `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt      time.Time            `json:"created_at" bson:"created_at"`
}
