package ports

import (
	"context"

	"github.com/projecthub/pm-system/internal/core/domain"
)

// ReportQuery narrows a report. StartDate and EndDate bound created_at of
// projects and tasks; each is a YYYY-MM-DD date or an RFC 3339 timestamp.
// ManagerID is honoured for admins only.
type ReportQuery struct {
	StartDate string
	EndDate   string
	ManagerID string
}

type ReportOverview struct {
	TotalProjects     int64 `json:"total_projects"`
	CompletedTasks    int64 `json:"completed_tasks"`
	ActiveUsers       int64 `json:"active_users"`
	AvgCompletionDays int   `json:"avg_completion_days"`
}

type ProjectReport struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	ManagerName    string        `json:"manager_name"`
	Status         domain.Status `json:"status"`
	TotalTasks     int64         `json:"total_tasks"`
	CompletedTasks int64         `json:"completed_tasks"`
	Progress       int           `json:"progress"`
}

type UserReport struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Role              domain.Role `json:"role"`
	TotalTasks        int64       `json:"total_tasks"`
	CompletedTasks    int64       `json:"completed_tasks"`
	InProgressTasks   int64       `json:"in_progress_tasks"`
	AvgCompletionDays int         `json:"avg_completion_days"`
}

type Report struct {
	Overview     ReportOverview  `json:"overview"`
	ProjectStats []ProjectReport `json:"project_stats"`
	UserStats    []UserReport    `json:"user_stats"`
}

type ReportService interface {
	Generate(ctx context.Context, actor *domain.Account, q ReportQuery) (*Report, error)
}
