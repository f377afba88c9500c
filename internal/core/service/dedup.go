package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/projecthub/pm-system/internal/core/domain"
	"github.com/projecthub/pm-system/internal/core/ports"
	"github.com/projecthub/pm-system/internal/pkg/metrics"
)

const reminderWindow = 24 * time.Hour

// Deduplicator suppresses repeat reminders for the same recipient, type
// and task within a window:
//
//	task_deadline_reminder → the trailing 24 hours
//	task_overdue           → the current calendar day in loc
//
// The notification store is authoritative. The optional cache only
// short-circuits positive answers.
type Deduplicator struct {
	repo  ports.NotificationRepository
	cache ports.DedupCache
	loc   *time.Location
	log   zerolog.Logger
}

func NewDeduplicator(repo ports.NotificationRepository, cache ports.DedupCache, loc *time.Location, log zerolog.Logger) *Deduplicator {
	if loc == nil {
		loc = time.UTC
	}
	return &Deduplicator{repo: repo, cache: cache, loc: loc, log: log}
}

// WindowStart returns the earliest creation time that still counts as a
// duplicate at now.
func (d *Deduplicator) WindowStart(typ domain.NotificationType, now time.Time) time.Time {
	if typ == domain.NotificationTaskOverdue {
		local := now.In(d.loc)
		return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, d.loc)
	}
	return now.Add(-reminderWindow)
}

// AlreadySent reports whether a matching notification exists inside the window.
func (d *Deduplicator) AlreadySent(ctx context.Context, recipient string, typ domain.NotificationType, taskID string, now time.Time) (bool, error) {
	if d.cache != nil {
		seen, err := d.cache.Seen(ctx, d.key(recipient, typ, taskID, now))
		if err != nil {
			d.log.Warn().Err(err).Str("task_id", taskID).Msg("dedup cache check failed, falling back to store")
		} else if seen {
			metrics.DedupTotal.WithLabelValues(string(typ), "hit").Inc()
			return true, nil
		}
	}

	exists, err := d.repo.ExistsSince(ctx, recipient, typ, taskID, d.WindowStart(typ, now))
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	result := "miss"
	if exists {
		result = "hit"
	}
	metrics.DedupTotal.WithLabelValues(string(typ), result).Inc()
	return exists, nil
}

// Remember primes the cache after a reminder was created.
func (d *Deduplicator) Remember(ctx context.Context, recipient string, typ domain.NotificationType, taskID string, now time.Time) {
	if d.cache == nil {
		return
	}
	ttl := reminderWindow
	if typ == domain.NotificationTaskOverdue {
		ttl = d.WindowStart(typ, now).AddDate(0, 0, 1).Sub(now)
	}
	if err := d.cache.Mark(ctx, d.key(recipient, typ, taskID, now), ttl); err != nil {
		d.log.Warn().Err(err).Str("task_id", taskID).Msg("failed to set dedup key")
	}
}

// key buckets overdue alerts by local date; reminders use a rolling key
// whose TTL is the window itself.
func (d *Deduplicator) key(recipient string, typ domain.NotificationType, taskID string, now time.Time) string {
	if typ == domain.NotificationTaskOverdue {
		return fmt.Sprintf("%s:%s:%s:%s", typ, recipient, taskID, now.In(d.loc).Format("2006-01-02"))
	}
	return fmt.Sprintf("%s:%s:%s", typ, recipient, taskID)
}
