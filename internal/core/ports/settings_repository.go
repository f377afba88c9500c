package ports

import (
	"context"

	"github.com/projecthub/pm-system/internal/core/domain"
)

// SettingsRepository stores the singleton settings document. Get returns
// domain.ErrSettingsNotFound until the first Save.
type SettingsRepository interface {
	Get(ctx context.Context) (*domain.Settings, error)
	Save(ctx context.Context, s *domain.Settings) error
}
