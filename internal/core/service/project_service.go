package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/projecthub/pm-system/internal/core/domain"
	"github.com/projecthub/pm-system/internal/core/permission"
	"github.com/projecthub/pm-system/internal/core/ports"
)

// ProjectService manages projects. Only admins create or reassign them.
type ProjectService struct {
	repo     ports.ProjectRepository
	tasks    ports.TaskRepository
	accounts ports.AccountRepository
	settings ports.SettingsProvider
	activity ports.ActivityRecorder
	notifier ports.Notifier
	log      zerolog.Logger
	now      func() time.Time
}

func NewProjectService(
	repo ports.ProjectRepository,
	tasks ports.TaskRepository,
	accounts ports.AccountRepository,
	settings ports.SettingsProvider,
	activity ports.ActivityRecorder,
	notifier ports.Notifier,
	log zerolog.Logger,
) *ProjectService {
	return &ProjectService{
		repo:     repo,
		tasks:    tasks,
		accounts: accounts,
		settings: settings,
		activity: activity,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

func (s *ProjectService) Create(ctx context.Context, actor *domain.Account, in ports.CreateProjectInput) (*domain.Project, error) {
	if err := authorize(actor, permission.ActionCreate, permission.NewProjectRef{AssignedTo: in.AssignedTo}); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.Invalid("title", "is required")
	}
	if err := requireActiveRole(ctx, s.accounts, in.AssignedTo, domain.RoleManager, "assigned_to"); err != nil {
		return nil, err
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	defaults := settings.ProjectDefaults

	open, err := s.repo.Count(ctx, ports.ProjectFilter{
		AssignedTo: in.AssignedTo,
		Statuses:   []domain.Status{domain.StatusPending, domain.StatusInProgress},
	})
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	if open >= int64(settings.System.MaxProjectsPerManager) {
		return nil, domain.Invalid("assigned_to", fmt.Sprintf("manager already has %d open projects", open))
	}

	now := s.now().UTC()
	p := &domain.Project{
		ID:          newID(),
		Title:       title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		AssignedTo:  in.AssignedTo,
		CreatedBy:   actor.ID,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.Status == "" {
		p.Status = defaults.Status
	}
	if p.Priority == "" {
		p.Priority = defaults.Priority
	}
	if !p.Status.Valid() {
		return nil, domain.Invalid("status", "unknown status")
	}
	if !p.Priority.Valid() {
		return nil, domain.Invalid("priority", "must be low, medium or high")
	}
	if p.EndDate == nil && defaults.AutoAssignDeadline {
		end := now.AddDate(0, 0, defaults.DeadlineDays)
		p.EndDate = &end
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	s.activity.Record(ctx, actor.ID, domain.ActionProjectCreated, domain.TargetProject, p.ID,
		fmt.Sprintf("Created project %q", p.Title),
		map[string]any{"assigned_to": p.AssignedTo})
	s.notifyAssignment(ctx, actor, p)
	return p, nil
}

// List returns all projects for an admin and the owned ones for a manager.
// Users do not see projects directly.
func (s *ProjectService) List(ctx context.Context, actor *domain.Account) ([]*domain.Project, error) {
	switch actor.Role {
	case domain.RoleAdmin:
		return s.repo.List(ctx, ports.ProjectFilter{})
	case domain.RoleManager:
		return s.repo.List(ctx, ports.ProjectFilter{AssignedTo: actor.ID})
	default:
		return []*domain.Project{}, nil
	}
}

func (s *ProjectService) Get(ctx context.Context, actor *domain.Account, id string) (*domain.Project, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, permission.ActionRead, permission.ProjectRef{AssignedTo: p.AssignedTo}); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProjectService) Update(ctx context.Context, actor *domain.Account, id string, in ports.UpdateProjectInput) (*domain.Project, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, permission.ActionUpdate, permission.ProjectRef{AssignedTo: p.AssignedTo}); err != nil {
		return nil, err
	}

	allowed := permission.ProjectUpdateFields(actor.Role)
	oldStatus := p.Status
	oldOwner := p.AssignedTo

	if in.Title != nil && allowed.Has(permission.FieldTitle) {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, domain.Invalid("title", "is required")
		}
		p.Title = title
	}
	if in.Description != nil && allowed.Has(permission.FieldDescription) {
		p.Description = *in.Description
	}
	if in.Status != nil && allowed.Has(permission.FieldStatus) {
		if !in.Status.Valid() {
			return nil, domain.Invalid("status", "unknown status")
		}
		p.Status = *in.Status
	}
	if in.Priority != nil && allowed.Has(permission.FieldPriority) {
		if !in.Priority.Valid() {
			return nil, domain.Invalid("priority", "must be low, medium or high")
		}
		p.Priority = *in.Priority
	}
	if in.StartDate != nil && allowed.Has(permission.FieldStartDate) {
		p.StartDate = in.StartDate
	}
	if in.EndDate != nil && allowed.Has(permission.FieldEndDate) {
		p.EndDate = in.EndDate
	}
	if in.AssignedTo != nil && allowed.Has(permission.FieldAssignedTo) && *in.AssignedTo != p.AssignedTo {
		if err := requireActiveRole(ctx, s.accounts, *in.AssignedTo, domain.RoleManager, "assigned_to"); err != nil {
			return nil, err
		}
		p.AssignedTo = *in.AssignedTo
	}

	p.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}

	if p.Status != oldStatus {
		s.activity.Record(ctx, actor.ID, domain.ActionProjectStatusChanged, domain.TargetProject, p.ID,
			fmt.Sprintf("Changed project %q status from %s to %s", p.Title, oldStatus, p.Status),
			map[string]any{"old_status": string(oldStatus), "new_status": string(p.Status)})
	} else {
		s.activity.Record(ctx, actor.ID, domain.ActionProjectUpdated, domain.TargetProject, p.ID,
			fmt.Sprintf("Updated project %q", p.Title), nil)
	}

	if p.AssignedTo != oldOwner {
		s.notifyAssignment(ctx, actor, p)
	}
	if p.Status != oldStatus && actor.ID != p.AssignedTo {
		s.notify(ctx, ports.CreateNotificationInput{
			Recipient:      p.AssignedTo,
			Sender:         actor.ID,
			Type:           domain.NotificationProjectStatusChange,
			Title:          "Project Status Updated: " + p.Title,
			Message:        fmt.Sprintf("Project %q status changed from %s to %s by %s.", p.Title, oldStatus, p.Status, actor.Name),
			RelatedProject: p.ID,
		})
	}
	return p, nil
}

// Delete removes the project and its tasks.
func (s *ProjectService) Delete(ctx context.Context, actor *domain.Account, id string) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(actor, permission.ActionDelete, permission.ProjectRef{AssignedTo: p.AssignedTo}); err != nil {
		return err
	}

	removed, err := s.tasks.DeleteByProject(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("delete project tasks: %w", err)
	}
	if err := s.repo.Delete(ctx, p.ID); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	s.activity.Record(ctx, actor.ID, domain.ActionProjectDeleted, domain.TargetProject, p.ID,
		fmt.Sprintf("Deleted project %q", p.Title),
		map[string]any{"tasks_removed": removed})
	return nil
}

func (s *ProjectService) notifyAssignment(ctx context.Context, actor *domain.Account, p *domain.Project) {
	s.notify(ctx, ports.CreateNotificationInput{
		Recipient:      p.AssignedTo,
		Sender:         actor.ID,
		Type:           domain.NotificationProjectAssignment,
		Title:          "New Project Assigned: " + p.Title,
		Message:        fmt.Sprintf("You have been assigned to manage project %q.", p.Title),
		RelatedProject: p.ID,
		Priority:       priorityFor(p.Priority),
	})
}

func (s *ProjectService) notify(ctx context.Context, in ports.CreateNotificationInput) {
	if _, err := s.notifier.Create(ctx, in); err != nil {
		s.log.Warn().Err(err).Str("recipient", in.Recipient).Str("type", string(in.Type)).Msg("failed to create notification")
	}
}

func priorityFor(p domain.Priority) domain.NotificationPriority {
	if p == domain.PriorityHigh {
		return domain.NotificationPriorityHigh
	}
	return domain.NotificationPriorityMedium
}
