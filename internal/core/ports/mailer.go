package ports

import (
	"context"
	"time"
)

// Mailer delivers a rendered HTML email. Implementations should honour ctx
// cancellation; callers still bound the call themselves.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// DedupCache is an optional fast path in front of the notification store
// for reminder dedup checks. A miss is never authoritative.
type DedupCache interface {
	Seen(ctx context.Context, key string) (bool, error)
	Mark(ctx context.Context, key string, ttl time.Duration) error
}
