package ports

import (
	"context"

	"github.com/projecthub/pm-system/internal/core/domain"
)

// SettingsProvider is the read side of the settings singleton.
type SettingsProvider interface {
	Get(ctx context.Context) (*domain.Settings, error)
}

// SettingsService has a single writer path, Update. Reload discards any
// cached copy and re-reads the store.
type SettingsService interface {
	SettingsProvider
	Update(ctx context.Context, upd domain.SettingsUpdate, actorID string) (*domain.Settings, error)
	Reload(ctx context.Context) error
}
