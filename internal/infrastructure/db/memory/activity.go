package memory

import (
	"context"
	"sort"

	"github.com/projecthub/pm-system/internal/core/domain"
	"github.com/projecthub/pm-system/internal/core/ports"
)

type ActivityRepository struct {
	s *Store
}

var _ ports.ActivityRepository = (*ActivityRepository)(nil)

func (r *ActivityRepository) Append(_ context.Context, e *domain.ActivityEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.failActivity != nil {
		return r.s.failActivity
	}
	ensureID(&e.ID)
	stored := *e
	stored.Metadata = cloneMeta(e.Metadata)
	r.s.activity = append(r.s.activity, stored)
	return nil
}

func (r *ActivityRepository) List(_ context.Context, f ports.ActivityFilter) ([]*domain.ActivityEntry, int64, error) {
	matched := r.matching(f)
	return page(matched, f.Page, f.Limit), int64(len(matched)), nil
}

func (r *ActivityRepository) CountByAction(_ context.Context, f ports.ActivityFilter) ([]domain.ActionCount, error) {
	counts := make(map[domain.Action]int64)
	for _, e := range r.matching(f) {
		counts[e.Action]++
	}
	out := make([]domain.ActionCount, 0, len(counts))
	for action, n := range counts {
		out = append(out, domain.ActionCount{Action: action, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Action < out[j].Action
	})
	return out, nil
}

func (r *ActivityRepository) matching(f ports.ActivityFilter) []*domain.ActivityEntry {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.ActivityEntry, 0)
	for i := range r.s.activity {
		e := r.s.activity[i]
		if f.Actors != nil && !containsString(f.Actors, e.Actor) {
			continue
		}
		if f.Action != "" && e.Action != f.Action {
			continue
		}
		if f.TargetType != "" && e.TargetType != f.TargetType {
			continue
		}
		out = append(out, &e)
	}
	sortNewestFirst(out, func(e *domain.ActivityEntry) int64 { return e.CreatedAt.UnixNano() })
	return out
}
