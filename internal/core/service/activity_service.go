package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/projecthub/pm-system/internal/core/domain"
	"github.com/projecthub/pm-system/internal/core/permission"
	"github.com/projecthub/pm-system/internal/core/ports"
	"github.com/projecthub/pm-system/internal/pkg/metrics"
)

const recentActivityLimit = 10

// ActivityService appends and queries the audit trail.
type ActivityService struct {
	repo     ports.ActivityRepository
	accounts ports.AccountRepository
	log      zerolog.Logger
	now      func() time.Time
}

func NewActivityService(repo ports.ActivityRepository, accounts ports.AccountRepository, log zerolog.Logger) *ActivityService {
	return &ActivityService{repo: repo, accounts: accounts, log: log, now: time.Now}
}

// Record appends one entry. Failures are logged and swallowed so that audit
// problems never fail the action being audited.
func (s *ActivityService) Record(ctx context.Context, actorID string, action domain.Action, target domain.TargetType, targetID, description string, metadata map[string]any) {
	origin := domain.OriginFrom(ctx)
	entry := &domain.ActivityEntry{
		ID:          newID(),
		Actor:       actorID,
		Action:      action,
		TargetType:  target,
		TargetID:    targetID,
		Description: description,
		Metadata:    metadata,
		IPAddress:   origin.IP,
		UserAgent:   origin.UserAgent,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Append(ctx, entry); err != nil {
		metrics.ActivityLogFailuresTotal.Inc()
		s.log.Warn().Err(err).
			Str("actor", actorID).
			Str("action", string(action)).
			Str("target_id", targetID).
			Msg("failed to record activity")
	}
}

func (s *ActivityService) List(ctx context.Context, actor *domain.Account, q ports.ActivityQuery) (*ports.ActivityPage, error) {
	actors, err := s.visibleActors(ctx, actor)
	if err != nil {
		return nil, err
	}
	page, limit := normalizePage(q.Page, q.Limit)

	items, total, err := s.repo.List(ctx, ports.ActivityFilter{
		Actors:     actors,
		Action:     q.Action,
		TargetType: q.TargetType,
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return &ports.ActivityPage{Items: items, Page: page, Pages: pageCount(total, limit), Total: total}, nil
}

// Stats aggregates visible activity by action. Plain users have no access.
func (s *ActivityService) Stats(ctx context.Context, actor *domain.Account) (*ports.ActivityStats, error) {
	if actor.Role == domain.RoleUser {
		return nil, &permission.DeniedError{Reason: permission.ReasonRoleNotAllowed}
	}
	actors, err := s.visibleActors(ctx, actor)
	if err != nil {
		return nil, err
	}

	byAction, err := s.repo.CountByAction(ctx, ports.ActivityFilter{Actors: actors})
	if err != nil {
		return nil, fmt.Errorf("activity stats: %w", err)
	}
	recent, _, err := s.repo.List(ctx, ports.ActivityFilter{Actors: actors, Page: 1, Limit: recentActivityLimit})
	if err != nil {
		return nil, fmt.Errorf("activity stats: %w", err)
	}
	return &ports.ActivityStats{ByAction: byAction, Recent: recent}, nil
}

// visibleActors returns nil for "everyone" (admin), otherwise the explicit
// set of actors whose activity the caller may see.
func (s *ActivityService) visibleActors(ctx context.Context, actor *domain.Account) ([]string, error) {
	switch actor.Role {
	case domain.RoleAdmin:
		return nil, nil
	case domain.RoleManager:
		team, err := s.accounts.List(ctx, ports.AccountFilter{ManagedBy: actor.ID})
		if err != nil {
			return nil, fmt.Errorf("activity scope: %w", err)
		}
		ids := make([]string, 0, len(team)+1)
		ids = append(ids, actor.ID)
		for _, a := range team {
			ids = append(ids, a.ID)
		}
		return ids, nil
	default:
		return []string{actor.ID}, nil
	}
}
