package mail

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/projecthub/pm-system/internal/core/ports"
)

// LogMailer stands in for SMTP when no relay is configured.
type LogMailer struct {
	log zerolog.Logger
}

var _ ports.Mailer = (*LogMailer)(nil)

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log.With().Str("component", "mail").Logger()}
}

func (m *LogMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	m.log.Info().Str("to", to).Str("subject", subject).Int("bytes", len(htmlBody)).Msg("email not sent, smtp disabled")
	return nil
}
