package memory

import (
	"context"
	"sort"
	"time"

	"github.com/projecthub/pm-system/internal/core/domain"
	"github.com/projecthub/pm-system/internal/core/ports"
)

type TaskRepository struct {
	s *Store
}

var _ ports.TaskRepository = (*TaskRepository)(nil)

func (r *TaskRepository) Create(_ context.Context, t *domain.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ensureID(&t.ID)
	r.s.tasks[t.ID] = *t
	return nil
}

func (r *TaskRepository) FindByID(_ context.Context, id string) (*domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &t, nil
}

func (r *TaskRepository) List(_ context.Context, f ports.TaskFilter) ([]*domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Task, 0)
	for _, t := range r.s.tasks {
		if !matchTask(t, f) {
			continue
		}
		found := t
		out = append(out, &found)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *TaskRepository) Count(ctx context.Context, f ports.TaskFilter) (int64, error) {
	list, err := r.List(ctx, f)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (r *TaskRepository) Update(_ context.Context, t *domain.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tasks[t.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	r.s.tasks[t.ID] = *t
	return nil
}

func (r *TaskRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.s.tasks, id)
	return nil
}

func (r *TaskRepository) DeleteByProject(_ context.Context, projectID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, t := range r.s.tasks {
		if t.Project == projectID {
			delete(r.s.tasks, id)
			n++
		}
	}
	return n, nil
}

func matchTask(t domain.Task, f ports.TaskFilter) bool {
	if f.Project != "" && t.Project != f.Project {
		return false
	}
	if f.Projects != nil && !containsString(f.Projects, t.Project) {
		return false
	}
	if f.AssignedTo != "" && t.AssignedTo != f.AssignedTo {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.ExcludeStatus != "" && t.Status == f.ExcludeStatus {
		return false
	}
	if f.DueFrom != nil || f.DueTo != nil || f.DueBefore != nil {
		if t.DueDate == nil {
			return false
		}
		if f.DueFrom != nil && t.DueDate.Before(*f.DueFrom) {
			return false
		}
		if f.DueTo != nil && t.DueDate.After(*f.DueTo) {
			return false
		}
		if f.DueBefore != nil && !t.DueDate.Before(*f.DueBefore) {
			return false
		}
	}
	if f.CompletedSince != nil {
		if t.CompletedAt == nil || t.CompletedAt.Before(*f.CompletedSince) {
			return false
		}
	}
	return createdWithin(t.CreatedAt, f.CreatedFrom, f.CreatedTo)
}

func createdWithin(at time.Time, from, to *time.Time) bool {
	if from != nil && at.Before(*from) {
		return false
	}
	if to != nil && at.After(*to) {
		return false
	}
	return true
}
