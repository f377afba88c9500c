package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/projecthub/pm-system/internal/core/domain"
	"github.com/projecthub/pm-system/internal/core/permission"
	"github.com/projecthub/pm-system/internal/core/ports"
)

// TaskService manages tasks inside projects.
type TaskService struct {
	repo     ports.TaskRepository
	projects ports.ProjectRepository
	accounts ports.AccountRepository
	settings ports.SettingsProvider
	activity ports.ActivityRecorder
	notifier ports.Notifier
	log      zerolog.Logger
	now      func() time.Time
}

func NewTaskService(
	repo ports.TaskRepository,
	projects ports.ProjectRepository,
	accounts ports.AccountRepository,
	settings ports.SettingsProvider,
	activity ports.ActivityRecorder,
	notifier ports.Notifier,
	log zerolog.Logger,
) *TaskService {
	return &TaskService{
		repo:     repo,
		projects: projects,
		accounts: accounts,
		settings: settings,
		activity: activity,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

func (s *TaskService) Create(ctx context.Context, actor *domain.Account, in ports.CreateTaskInput) (*domain.Task, error) {
	project, err := s.projects.FindByID(ctx, in.Project)
	if err != nil {
		return nil, err
	}
	assignee, err := s.accounts.FindByID(ctx, in.AssignedTo)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.Invalid("assigned_to", "account not found")
		}
		return nil, err
	}
	ref := permission.NewTaskRef{ProjectOwner: project.AssignedTo, Assignee: permission.AccountRefOf(assignee)}
	if err := authorize(actor, permission.ActionCreate, ref); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.Invalid("title", "is required")
	}
	if assignee.Role != domain.RoleUser || !assignee.IsActive {
		return nil, domain.Invalid("assigned_to", "must be an active user")
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	defaults := settings.TaskDefaults
	if defaults.RequireEstimatedHours && in.EstimatedHours <= 0 {
		return nil, domain.Invalid("estimated_hours", "is required")
	}
	if in.EstimatedHours < 0 {
		return nil, domain.Invalid("estimated_hours", "must not be negative")
	}

	open, err := s.repo.Count(ctx, ports.TaskFilter{AssignedTo: assignee.ID, ExcludeStatus: domain.StatusCompleted})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	if open >= int64(settings.System.MaxTasksPerUser) {
		return nil, domain.Invalid("assigned_to", fmt.Sprintf("user already has %d open tasks", open))
	}

	now := s.now().UTC()
	task := &domain.Task{
		ID:             newID(),
		Title:          title,
		Description:    in.Description,
		Project:        project.ID,
		AssignedTo:     assignee.ID,
		AssignedBy:     actor.ID,
		Status:         in.Status,
		Priority:       in.Priority,
		DueDate:        in.DueDate,
		EstimatedHours: in.EstimatedHours,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if task.Status == "" {
		task.Status = defaults.Status
	}
	if task.Priority == "" {
		task.Priority = defaults.Priority
	}
	if !task.Status.Valid() {
		return nil, domain.Invalid("status", "unknown status")
	}
	if !task.Priority.Valid() {
		return nil, domain.Invalid("priority", "must be low, medium or high")
	}
	if task.Status == domain.StatusCompleted {
		task.CompletedAt = &now
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	s.activity.Record(ctx, actor.ID, domain.ActionTaskCreated, domain.TargetTask, task.ID,
		fmt.Sprintf("Created task %q in project %q", task.Title, project.Title),
		map[string]any{"project": project.ID, "assigned_to": assignee.ID})
	s.notify(ctx, ports.CreateNotificationInput{
		Recipient:      assignee.ID,
		Sender:         actor.ID,
		Type:           domain.NotificationTaskAssignment,
		Title:          "New Task Assigned: " + task.Title,
		Message:        fmt.Sprintf("You have been assigned a new task %q in project %q.", task.Title, project.Title),
		RelatedTask:    task.ID,
		RelatedProject: project.ID,
		Priority:       priorityFor(task.Priority),
	})
	return task, nil
}

// List scopes tasks: admins see all, managers see tasks in projects they
// own, users see tasks assigned to them.
func (s *TaskService) List(ctx context.Context, actor *domain.Account, q ports.TaskQuery) ([]*domain.Task, error) {
	f := ports.TaskFilter{Project: q.Project, Status: q.Status}

	if q.Project != "" && actor.Role == domain.RoleManager {
		p, err := s.projects.FindByID(ctx, q.Project)
		if err != nil {
			return nil, err
		}
		if err := authorize(actor, permission.ActionRead, permission.ProjectRef{AssignedTo: p.AssignedTo}); err != nil {
			return nil, err
		}
	}

	switch actor.Role {
	case domain.RoleAdmin:
	case domain.RoleManager:
		owned, err := s.projects.List(ctx, ports.ProjectFilter{AssignedTo: actor.ID})
		if err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}
		f.Projects = make([]string, 0, len(owned))
		for _, p := range owned {
			f.Projects = append(f.Projects, p.ID)
		}
	default:
		f.AssignedTo = actor.ID
	}
	return s.repo.List(ctx, f)
}

func (s *TaskService) Get(ctx context.Context, actor *domain.Account, id string) (*domain.Task, error) {
	task, ref, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, permission.ActionRead, ref); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Update(ctx context.Context, actor *domain.Account, id string, in ports.UpdateTaskInput) (*domain.Task, error) {
	task, ref, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, permission.ActionUpdate, ref); err != nil {
		return nil, err
	}

	allowed := permission.TaskUpdateFields(actor.Role)
	now := s.now().UTC()
	oldStatus := task.Status
	statusChanged := false

	if in.Title != nil && allowed.Has(permission.FieldTitle) {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, domain.Invalid("title", "is required")
		}
		task.Title = title
	}
	if in.Description != nil && allowed.Has(permission.FieldDescription) {
		task.Description = *in.Description
	}
	if in.Priority != nil && allowed.Has(permission.FieldPriority) {
		if !in.Priority.Valid() {
			return nil, domain.Invalid("priority", "must be low, medium or high")
		}
		task.Priority = *in.Priority
	}
	if in.DueDate != nil && allowed.Has(permission.FieldDueDate) {
		task.DueDate = in.DueDate
	}
	if in.ActualHours != nil && allowed.Has(permission.FieldActualHours) {
		if *in.ActualHours < 0 {
			return nil, domain.Invalid("actual_hours", "must not be negative")
		}
		task.ActualHours = *in.ActualHours
	}
	if in.Status != nil && allowed.Has(permission.FieldStatus) {
		if !in.Status.Valid() {
			return nil, domain.Invalid("status", "unknown status")
		}
		statusChanged = task.SetStatus(*in.Status, now)
	}

	task.UpdatedAt = now
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	if statusChanged {
		s.activity.Record(ctx, actor.ID, domain.ActionTaskStatusChanged, domain.TargetTask, task.ID,
			fmt.Sprintf("Changed task %q status from %s to %s", task.Title, oldStatus, task.Status),
			map[string]any{"old_status": string(oldStatus), "new_status": string(task.Status), "updated_by": string(actor.Role)})
		s.notifyStatusChange(ctx, actor, task, ref.ProjectOwner, oldStatus)
	} else {
		s.activity.Record(ctx, actor.ID, domain.ActionTaskUpdated, domain.TargetTask, task.ID,
			fmt.Sprintf("Updated task %q", task.Title), nil)
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, actor *domain.Account, id string) error {
	task, ref, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(actor, permission.ActionDelete, ref); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, task.ID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	s.activity.Record(ctx, actor.ID, domain.ActionTaskDeleted, domain.TargetTask, task.ID,
		fmt.Sprintf("Deleted task %q", task.Title), map[string]any{"project": task.Project})
	return nil
}

// load fetches a task with the owner of its project. A task whose project
// has vanished has no owning manager.
func (s *TaskService) load(ctx context.Context, id string) (*domain.Task, permission.TaskRef, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, permission.TaskRef{}, err
	}
	ref := permission.TaskRef{AssignedTo: task.AssignedTo}
	project, err := s.projects.FindByID(ctx, task.Project)
	switch {
	case err == nil:
		ref.ProjectOwner = project.AssignedTo
	case !errors.Is(err, domain.ErrProjectNotFound):
		return nil, permission.TaskRef{}, err
	}
	return task, ref, nil
}

// notifyStatusChange tells the assignee when someone else moved their task,
// and tells the project manager when the assignee completes it.
func (s *TaskService) notifyStatusChange(ctx context.Context, actor *domain.Account, task *domain.Task, owner string, oldStatus domain.Status) {
	if task.AssignedTo != actor.ID {
		s.notify(ctx, ports.CreateNotificationInput{
			Recipient:      task.AssignedTo,
			Sender:         actor.ID,
			Type:           domain.NotificationTaskCompletion,
			Title:          "Task Status Updated: " + task.Title,
			Message:        fmt.Sprintf("Your task %q status has been changed from %q to %q by %s.", task.Title, oldStatus, task.Status, actor.Name),
			RelatedTask:    task.ID,
			RelatedProject: task.Project,
		})
	}
	if task.Status == domain.StatusCompleted && actor.Role == domain.RoleUser && owner != "" && owner != actor.ID {
		s.notify(ctx, ports.CreateNotificationInput{
			Recipient:      owner,
			Sender:         actor.ID,
			Type:           domain.NotificationTaskCompletion,
			Title:          "Task Completed: " + task.Title,
			Message:        fmt.Sprintf("%s has completed the task %q.", actor.Name, task.Title),
			RelatedTask:    task.ID,
			RelatedProject: task.Project,
		})
	}
}

func (s *TaskService) notify(ctx context.Context, in ports.CreateNotificationInput) {
	if _, err := s.notifier.Create(ctx, in); err != nil {
		s.log.Warn().Err(err).Str("recipient", in.Recipient).Str("type", string(in.Type)).Msg("failed to create notification")
	}
}
