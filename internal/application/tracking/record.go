package tracking

import (
	"context"

	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/tracking-service/internal/domain"
	"github.com/baechuer/tracking-service/internal/metrics"
)

type RecordCmd struct {
	ActorID    string
	SessionID  string
	ProductID  string
	CategoryID string
	Action     string
	Metadata   map[string]any
}

// Record validates and appends one event. It is not idempotent: a retried
// call stores a second, distinct event.
func (s *Service) Record(ctx context.Context, cmd RecordCmd) (*domain.Event, error) {
	e, err := domain.NewEvent(s.newID(), domain.NewEventInput{
		ActorID:    cmd.ActorID,
		SessionID:  cmd.SessionID,
		ProductID:  cmd.ProductID,
		CategoryID: cmd.CategoryID,
		Action:     cmd.Action,
		Metadata:   cmd.Metadata,
	}, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.store.Append(ctx, e); err != nil {
		return nil, err
	}
	metrics.EventsRecordedTotal.WithLabelValues(string(e.Action)).Inc()

	// best effort, the event is already durable
	if err := s.pub.PublishEvent(ctx, RoutingKeyRecorded, RecordedPayload{
		EventID:    e.ID,
		ActorID:    e.ActorID,
		SessionID:  e.SessionID,
		ProductID:  e.ProductID,
		CategoryID: e.CategoryID,
		Action:     string(e.Action),
		CreatedAt:  e.CreatedAt,
	}); err != nil {
		zlog.Warn().Err(err).Str("event_id", e.ID).Msg("publish tracking.recorded failed")
	}
	return e, nil
}
