package tracking

import (
	"github.com/google/uuid"
)

const (
	DefaultQueryLimit  = 50
	DefaultRecentLimit = 10
	MaxQueryLimit      = 500
	DefaultStatsDays   = 7
)

type Service struct {
	store EventStore
	pub   EventPublisher
	clock Clock
	newID func() string
}

func New(store EventStore, clock Clock, pub EventPublisher) *Service {
	if pub == nil {
		pub = NoopPublisher{}
	}
	return &Service{
		store: store,
		pub:   pub,
		clock: clock,
		newID: uuid.NewString,
	}
}

// ClampLimit applies def to non-positive limits and caps at MaxQueryLimit.
func ClampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > MaxQueryLimit {
		return MaxQueryLimit
	}
	return limit
}
