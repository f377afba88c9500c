package domain

import "time"

// Task belongs to one project and is assigned to one user under the
// project manager's hierarchy.
type Task struct {
	ID             string     `json:"id" bson:"_id"`
	Title          string     `json:"title" bson:"title"`
	Description    string     `json:"description,omitempty" bson:"description,omitempty"`
	Project        string     `json:"project" bson:"project"`
	AssignedTo     string     `json:"assigned_to" bson:"assigned_to"`
	AssignedBy     string     `json:"assigned_by" bson:"assigned_by"`
	Status         Status     `json:"status" bson:"status"`
	Priority       Priority   `json:"priority" bson:"priority"`
	DueDate        *time.Time `json:"due_date,omitempty" bson:"due_date,omitempty"`
	EstimatedHours float64    `json:"estimated_hours" bson:"estimated_hours"`
	ActualHours    float64    `json:"actual_hours" bson:"actual_hours"`
	CompletedAt    *time.Time `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" bson:"updated_at"`
}

// SetStatus applies a status change and keeps CompletedAt in step with it.
// It reports whether the status actually changed.
func (t *Task) SetStatus(s Status, at time.Time) bool {
	if t.Status == s {
		return false
	}
	t.Status = s
	if s == StatusCompleted {
		done := at
		t.CompletedAt = &done
	} else {
		t.CompletedAt = nil
	}
	return true
}
