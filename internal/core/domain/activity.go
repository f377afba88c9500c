package domain

import (
	"context"
	"time"
)

// Action is the closed set of audited actions.
type Action string

const (
	ActionUserCreated          Action = "user_created"
	ActionUserUpdated          Action = "user_updated"
	ActionUserDeleted          Action = "user_deleted"
	ActionProjectCreated       Action = "project_created"
	ActionProjectUpdated       Action = "project_updated"
	ActionProjectDeleted       Action = "project_deleted"
	ActionProjectStatusChanged Action = "project_status_changed"
	ActionTaskCreated          Action = "task_created"
	ActionTaskUpdated          Action = "task_updated"
	ActionTaskDeleted          Action = "task_deleted"
	ActionTaskStatusChanged    Action = "task_status_changed"
	ActionLogin                Action = "login"
	ActionLogout               Action = "logout"
)

func (a Action) Valid() bool {
	switch a {
	case ActionUserCreated, ActionUserUpdated, ActionUserDeleted,
		ActionProjectCreated, ActionProjectUpdated, ActionProjectDeleted, ActionProjectStatusChanged,
		ActionTaskCreated, ActionTaskUpdated, ActionTaskDeleted, ActionTaskStatusChanged,
		ActionLogin, ActionLogout:
		return true
	}
	return false
}

type TargetType string

const (
	TargetUser    TargetType = "user"
	TargetProject TargetType = "project"
	TargetTask    TargetType = "task"
	TargetSystem  TargetType = "system"
)

func (t TargetType) Valid() bool {
	switch t {
	case TargetUser, TargetProject, TargetTask, TargetSystem:
		return true
	}
	return false
}

// ActivityEntry is an immutable audit record.
type ActivityEntry struct {
	ID          string         `json:"id" bson:"_id"`
	Actor       string         `json:"actor" bson:"actor"`
	Action      Action         `json:"action" bson:"action"`
	TargetType  TargetType     `json:"target_type" bson:"target_type"`
	TargetID    string         `json:"target_id,omitempty" bson:"target_id,omitempty"`
	Description string         `json:"description" bson:"description"`
	Metadata    map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty"`
	IPAddress   string         `json:"ip_address,omitempty" bson:"ip_address,omitempty"`
	UserAgent   string         `json:"user_agent,omitempty" bson:"user_agent,omitempty"`
	CreatedAt   time.Time      `json:"created_at" bson:"created_at"`
}

// ActionCount is one row of the per-action activity aggregate.
type ActionCount struct {
	Action Action `json:"action" bson:"_id"`
	Count  int64  `json:"count" bson:"count"`
}

// Origin identifies where a request came from.
type Origin struct {
	IP        string
	UserAgent string
}

type originKey struct{}

// WithOrigin attaches the request origin to ctx so audit entries can carry it.
func WithOrigin(ctx context.Context, o Origin) context.Context {
	return context.WithValue(ctx, originKey{}, o)
}

// OriginFrom returns the origin stored by WithOrigin, or the zero value.
func OriginFrom(ctx context.Context) Origin {
	o, _ := ctx.Value(originKey{}).(Origin)
	return o
}
