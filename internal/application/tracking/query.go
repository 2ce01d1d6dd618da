package tracking

import (
	"context"
	"strings"

	"github.com/baechuer/tracking-service/internal/domain"
)

func (s *Service) ByActor(ctx context.Context, actorID string, limit int) ([]*domain.Event, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return nil, domain.ErrValidationMeta("invalid query", map[string]string{"user_id": "required"})
	}
	return s.store.Find(ctx, domain.EventFilter{ActorID: actorID}, ClampLimit(limit, DefaultQueryLimit))
}

func (s *Service) BySession(ctx context.Context, sessionID string, limit int) ([]*domain.Event, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, domain.ErrValidationMeta("invalid query", map[string]string{"session_id": "required"})
	}
	return s.store.Find(ctx, domain.EventFilter{SessionID: sessionID}, ClampLimit(limit, DefaultQueryLimit))
}

// Filtered returns events matching every non-zero field of f. An empty
// filter returns the newest events of the whole log up to the cap.
func (s *Service) Filtered(ctx context.Context, f domain.EventFilter, limit int) ([]*domain.Event, error) {
	if f.Action != "" && !f.Action.Valid() {
		return nil, domain.ErrValidationMeta("invalid query", map[string]string{
			"action": "must be one of: view, click, add_to_cart, purchase, search",
		})
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return nil, domain.ErrValidationMeta("invalid query", map[string]string{
			"start_date": "must not be after end_date",
		})
	}
	return s.store.Find(ctx, f, ClampLimit(limit, DefaultQueryLimit))
}

// RecentlyViewed returns the actor's view events, newest first.
func (s *Service) RecentlyViewed(ctx context.Context, actorID string, limit int) ([]*domain.Event, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return nil, domain.ErrValidationMeta("invalid query", map[string]string{"user_id": "required"})
	}
	return s.store.Find(ctx, domain.EventFilter{ActorID: actorID, Action: domain.ActionView}, ClampLimit(limit, DefaultRecentLimit))
}

func (s *Service) DistinctProductsViewedBy(ctx context.Context, actorID string) ([]string, error) {
	return s.store.DistinctProductsViewedBy(ctx, actorID)
}
