package tracking

import (
	"context"
	"strings"

	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/tracking-service/internal/domain"
	"github.com/baechuer/tracking-service/internal/metrics"
)

// MergeSession attaches the anonymous history of sessionID to userID.
// Repeating a merge is safe and reports zero updates.
func (s *Service) MergeSession(ctx context.Context, sessionID, userID string) (int64, error) {
	sessionID = strings.TrimSpace(sessionID)
	userID = strings.TrimSpace(userID)

	meta := map[string]string{}
	if sessionID == "" {
		meta["session_id"] = "required"
	}
	if userID == "" {
		meta["user_id"] = "required"
	} else if userID == domain.AnonymousActor {
		meta["user_id"] = "must be an authenticated user id"
	}
	if len(meta) > 0 {
		return 0, domain.ErrValidationMeta("invalid merge request", meta)
	}

	n, err := s.store.ReassignSession(ctx, sessionID, userID)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	metrics.SessionsMergedTotal.Inc()

	if err := s.pub.PublishEvent(ctx, RoutingKeySessionMerged, SessionMergedPayload{
		SessionID: sessionID,
		UserID:    userID,
		Updated:   n,
	}); err != nil {
		zlog.Warn().Err(err).Str("session_id", sessionID).Msg("publish tracking.session_merged failed")
	}
	return n, nil
}
