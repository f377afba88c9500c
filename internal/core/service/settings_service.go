package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/projecthub/pm-system/internal/core/domain"
	"github.com/projecthub/pm-system/internal/core/ports"
)

// SettingsService owns the settings singleton. Reads are served from a
// cached copy; Update is the only writer.
type SettingsService struct {
	repo ports.SettingsRepository
	log  zerolog.Logger
	now  func() time.Time

	mu     sync.RWMutex
	cached *domain.Settings
}

func NewSettingsService(repo ports.SettingsRepository, log zerolog.Logger) *SettingsService {
	return &SettingsService{repo: repo, log: log, now: time.Now}
}

// Get returns a copy of the current settings, creating the default document
// on first use.
func (s *SettingsService) Get(ctx context.Context) (*domain.Settings, error) {
	s.mu.RLock()
	if s.cached != nil {
		out := *s.cached
		s.mu.RUnlock()
		return &out, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	cur, err := s.loadLocked(ctx)
	if err != nil {
		return nil, err
	}
	out := *cur
	return &out, nil
}

func (s *SettingsService) Update(ctx context.Context, upd domain.SettingsUpdate, actorID string) (*domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.loadLocked(ctx)
	if err != nil {
		return nil, err
	}
	next := *cur
	next.Apply(upd)
	if err := next.Validate(); err != nil {
		return nil, err
	}
	next.LastUpdatedBy = actorID
	next.UpdatedAt = s.now().UTC()

	if err := s.repo.Save(ctx, &next); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}
	s.cached = &next

	s.log.Info().Str("actor", actorID).Msg("settings updated")
	out := next
	return &out, nil
}

func (s *SettingsService) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cached = nil
	_, err := s.loadLocked(ctx)
	return err
}

func (s *SettingsService) loadLocked(ctx context.Context) (*domain.Settings, error) {
	if s.cached != nil {
		return s.cached, nil
	}

	cur, err := s.repo.Get(ctx)
	switch {
	case errors.Is(err, domain.ErrSettingsNotFound):
		defaults := domain.DefaultSettings()
		now := s.now().UTC()
		defaults.CreatedAt, defaults.UpdatedAt = now, now
		if err := s.repo.Save(ctx, &defaults); err != nil {
			return nil, fmt.Errorf("create default settings: %w", err)
		}
		s.log.Info().Msg("created default settings")
		cur = &defaults
	case err != nil:
		return nil, fmt.Errorf("load settings: %w", err)
	}

	s.cached = cur
	return cur, nil
}
