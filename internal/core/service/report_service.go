package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/projecthub/pm-system/internal/core/domain"
	"github.com/projecthub/pm-system/internal/core/permission"
	"github.com/projecthub/pm-system/internal/core/ports"
)

// ReportService builds the progress reports shown to admins and managers.
// A manager only ever sees their own projects, the tasks inside them and
// their own team. An admin sees everything, or one manager's slice when
// ReportQuery.ManagerID is set.
type ReportService struct {
	projects ports.ProjectRepository
	tasks    ports.TaskRepository
	accounts ports.AccountRepository
	loc      *time.Location
	log      zerolog.Logger
}

// NewReportService reads bare dates in the query as days in loc.
func NewReportService(
	projects ports.ProjectRepository,
	tasks ports.TaskRepository,
	accounts ports.AccountRepository,
	loc *time.Location,
	log zerolog.Logger,
) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{projects: projects, tasks: tasks, accounts: accounts, loc: loc, log: log}
}

func (s *ReportService) Generate(ctx context.Context, actor *domain.Account, q ports.ReportQuery) (*ports.Report, error) {
	if actor.Role != domain.RoleAdmin && actor.Role != domain.RoleManager {
		return nil, &permission.DeniedError{Reason: permission.ReasonRoleNotAllowed}
	}
	from, err := parseReportDate("start_date", q.StartDate, false, s.loc)
	if err != nil {
		return nil, err
	}
	to, err := parseReportDate("end_date", q.EndDate, true, s.loc)
	if err != nil {
		return nil, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, &domain.ValidationError{Field: "end_date", Message: "must not be before start_date"}
	}

	manager := ""
	switch {
	case actor.Role == domain.RoleManager:
		manager = actor.ID
	case q.ManagerID != "":
		manager = q.ManagerID
	}

	taskFilter := ports.TaskFilter{CreatedFrom: from, CreatedTo: to}
	if manager != "" {
		owned, err := s.projects.List(ctx, ports.ProjectFilter{AssignedTo: manager})
		if err != nil {
			return nil, fmt.Errorf("report projects: %w", err)
		}
		taskFilter.Projects = make([]string, 0, len(owned))
		for _, p := range owned {
			taskFilter.Projects = append(taskFilter.Projects, p.ID)
		}
	}

	projects, err := s.projects.List(ctx, ports.ProjectFilter{AssignedTo: manager, CreatedFrom: from, CreatedTo: to})
	if err != nil {
		return nil, fmt.Errorf("report projects: %w", err)
	}
	tasks, err := s.tasks.List(ctx, taskFilter)
	if err != nil {
		return nil, fmt.Errorf("report tasks: %w", err)
	}
	active, err := s.accounts.List(ctx, ports.AccountFilter{ActiveOnly: true, ManagedBy: manager})
	if err != nil {
		return nil, fmt.Errorf("report accounts: %w", err)
	}

	all := summarize(tasks)
	report := &ports.Report{
		Overview: ports.ReportOverview{
			TotalProjects:     int64(len(projects)),
			CompletedTasks:    all.completed,
			ActiveUsers:       int64(len(active)),
			AvgCompletionDays: all.avgDays(),
		},
		ProjectStats: make([]ports.ProjectReport, 0, len(projects)),
		UserStats:    []ports.UserReport{},
	}

	names := map[string]string{}
	for _, p := range projects {
		row, err := s.projectRow(ctx, p, names)
		if err != nil {
			return nil, err
		}
		report.ProjectStats = append(report.ProjectStats, row)
	}

	if actor.Role == domain.RoleAdmin {
		report.UserStats, err = s.userRows(ctx, tasks)
		if err != nil {
			return nil, err
		}
	}
	return report, nil
}

// projectRow covers every task of p regardless of the date range, so
// progress reflects the project as it stands.
func (s *ReportService) projectRow(ctx context.Context, p *domain.Project, names map[string]string) (ports.ProjectReport, error) {
	tasks, err := s.tasks.List(ctx, ports.TaskFilter{Project: p.ID})
	if err != nil {
		return ports.ProjectReport{}, fmt.Errorf("report project %s: %w", p.ID, err)
	}
	sum := summarize(tasks)

	name, ok := names[p.AssignedTo]
	if !ok {
		if m, err := s.accounts.FindByID(ctx, p.AssignedTo); err == nil {
			name = m.Name
		} else {
			s.log.Debug().Err(err).Str("project_id", p.ID).Msg("project manager not resolvable")
		}
		names[p.AssignedTo] = name
	}

	return ports.ProjectReport{
		ID:             p.ID,
		Title:          p.Title,
		ManagerName:    name,
		Status:         p.Status,
		TotalTasks:     sum.total,
		CompletedTasks: sum.completed,
		Progress:       percent(sum.completed, sum.total),
	}, nil
}

func (s *ReportService) userRows(ctx context.Context, tasks []*domain.Task) ([]ports.UserReport, error) {
	accounts, err := s.accounts.List(ctx, ports.AccountFilter{
		ActiveOnly: true,
		Roles:      []domain.Role{domain.RoleManager, domain.RoleUser},
	})
	if err != nil {
		return nil, fmt.Errorf("report users: %w", err)
	}

	byAssignee := make(map[string][]*domain.Task)
	for _, t := range tasks {
		byAssignee[t.AssignedTo] = append(byAssignee[t.AssignedTo], t)
	}

	rows := make([]ports.UserReport, 0, len(accounts))
	for _, a := range accounts {
		sum := summarize(byAssignee[a.ID])
		rows = append(rows, ports.UserReport{
			ID:                a.ID,
			Name:              a.Name,
			Role:              a.Role,
			TotalTasks:        sum.total,
			CompletedTasks:    sum.completed,
			InProgressTasks:   sum.inProgress,
			AvgCompletionDays: sum.avgDays(),
		})
	}
	return rows, nil
}

type taskSummary struct {
	total      int64
	completed  int64
	inProgress int64
	timed      int64
	days       float64
}

func summarize(tasks []*domain.Task) taskSummary {
	var sum taskSummary
	for _, t := range tasks {
		sum.total++
		switch t.Status {
		case domain.StatusCompleted:
			sum.completed++
			if t.CompletedAt != nil {
				sum.timed++
				sum.days += t.CompletedAt.Sub(t.CreatedAt).Hours() / 24
			}
		case domain.StatusInProgress:
			sum.inProgress++
		}
	}
	return sum
}

// avgDays is the mean days from creation to completion, rounded.
func (s taskSummary) avgDays() int {
	if s.timed == 0 {
		return 0
	}
	return int(math.Round(s.days / float64(s.timed)))
}

// parseReportDate accepts a calendar date or an RFC 3339 timestamp. A bare
// end date covers that whole day in loc.
func parseReportDate(field, v string, end bool, loc *time.Location) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	d, err := time.ParseInLocation("2006-01-02", v, loc)
	if err != nil {
		return nil, &domain.ValidationError{Field: field, Message: "expected YYYY-MM-DD or RFC 3339"}
	}
	if end {
		d = d.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &d, nil
}
