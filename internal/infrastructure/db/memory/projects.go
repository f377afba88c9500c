package memory

import (
	"context"
	"sort"

	"github.com/projecthub/pm-system/internal/core/domain"
	"github.com/projecthub/pm-system/internal/core/ports"
)

type ProjectRepository struct {
	s *Store
}

var _ ports.ProjectRepository = (*ProjectRepository)(nil)

func (r *ProjectRepository) Create(_ context.Context, p *domain.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ensureID(&p.ID)
	r.s.projects[p.ID] = *p
	return nil
}

func (r *ProjectRepository) FindByID(_ context.Context, id string) (*domain.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	return &p, nil
}

func (r *ProjectRepository) List(_ context.Context, f ports.ProjectFilter) ([]*domain.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Project, 0)
	for _, p := range r.s.projects {
		if !matchProject(p, f) {
			continue
		}
		found := p
		out = append(out, &found)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *ProjectRepository) Count(ctx context.Context, f ports.ProjectFilter) (int64, error) {
	list, err := r.List(ctx, f)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (r *ProjectRepository) Update(_ context.Context, p *domain.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.projects[p.ID]; !ok {
		return domain.ErrProjectNotFound
	}
	r.s.projects[p.ID] = *p
	return nil
}

func (r *ProjectRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.projects[id]; !ok {
		return domain.ErrProjectNotFound
	}
	delete(r.s.projects, id)
	return nil
}

func matchProject(p domain.Project, f ports.ProjectFilter) bool {
	switch {
	case f.AssignedTo != "" && len(f.IDs) > 0:
		if p.AssignedTo != f.AssignedTo && !containsString(f.IDs, p.ID) {
			return false
		}
	case f.AssignedTo != "":
		if p.AssignedTo != f.AssignedTo {
			return false
		}
	case f.IDs != nil:
		if !containsString(f.IDs, p.ID) {
			return false
		}
	}
	if len(f.Statuses) > 0 {
		ok := false
		for _, s := range f.Statuses {
			if p.Status == s {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return createdWithin(p.CreatedAt, f.CreatedFrom, f.CreatedTo)
}
