package memory

import (
	"context"

	"github.com/projecthub/pm-system/internal/core/domain"
	"github.com/projecthub/pm-system/internal/core/ports"
)

type SettingsRepository struct {
	s *Store
}

var _ ports.SettingsRepository = (*SettingsRepository)(nil)

func (r *SettingsRepository) Get(_ context.Context) (*domain.Settings, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if r.s.settings == nil {
		return nil, domain.ErrSettingsNotFound
	}
	out := *r.s.settings
	return &out, nil
}

func (r *SettingsRepository) Save(_ context.Context, s *domain.Settings) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := *s
	stored.ID = domain.SettingsID
	r.s.settings = &stored
	return nil
}
