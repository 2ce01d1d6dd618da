package tracking

import (
	"context"
	"time"

	"github.com/baechuer/tracking-service/internal/domain"
)

type Clock interface {
	Now() time.Time
}

// EventStore is the append-only interaction log.
type EventStore interface {
	Append(ctx context.Context, e *domain.Event) error
	// Find returns events matching f, newest first, at most limit.
	Find(ctx context.Context, f domain.EventFilter, limit int) ([]*domain.Event, error)
	DistinctProductsViewedBy(ctx context.Context, actorID string) ([]string, error)
	ActionSummary(ctx context.Context, actorID string) (map[domain.Action]domain.ActionStat, error)
	// ActivityCounts groups events by (bucket, action). A nil since covers the whole log.
	ActivityCounts(ctx context.Context, g domain.Granularity, since *time.Time) ([]domain.BucketCount, error)
	// ReassignSession moves anonymous events of sessionID onto userID and
	// clears their session id. It returns the number of events rewritten.
	ReassignSession(ctx context.Context, sessionID, userID string) (int64, error)
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, routingKey string, payload any) error
}

const (
	RoutingKeyRecorded      = "tracking.recorded"
	RoutingKeySessionMerged = "tracking.session_merged"
)

type RecordedPayload struct {
	EventID    string    `json:"event_id"`
	ActorID    string    `json:"actor_id"`
	SessionID  string    `json:"session_id,omitempty"`
	ProductID  string    `json:"product_id"`
	CategoryID string    `json:"category_id,omitempty"`
	Action     string    `json:"action"`
	CreatedAt  time.Time `json:"created_at"`
}

type SessionMergedPayload struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Updated   int64  `json:"updated"`
}
