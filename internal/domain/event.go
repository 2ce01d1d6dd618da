package domain

import (
	"strings"
	"time"
)

// AnonymousActor is the actor id recorded for visitors who are not signed in.
// Such events are tied together by SessionID until a merge reassigns them.
const AnonymousActor = "anonymous"

type Event struct {
	ID         string
	ActorID    string
	SessionID  string
	ProductID  string
	CategoryID string
	Action     Action
	Metadata   map[string]any
	CreatedAt  time.Time
}

func (e *Event) IsAnonymous() bool { return e.ActorID == AnonymousActor }

type NewEventInput struct {
	ActorID    string
	SessionID  string
	ProductID  string
	CategoryID string
	Action     string
	Metadata   map[string]any
}

// NewEvent validates in and builds an event stamped with id and now.
// CreatedAt keeps microsecond precision, the resolution Postgres stores.
func NewEvent(id string, in NewEventInput, now time.Time) (*Event, error) {
	meta := map[string]string{}

	actor := strings.TrimSpace(in.ActorID)
	if actor == "" {
		meta["actor_id"] = "required"
	}
	product := strings.TrimSpace(in.ProductID)
	if product == "" {
		meta["product_id"] = "required"
	}
	action := Action(strings.TrimSpace(in.Action))
	if !action.Valid() {
		meta["action"] = "must be one of: view, click, add_to_cart, purchase, search"
	}
	if len(meta) > 0 {
		return nil, ErrValidationMeta("invalid event", meta)
	}

	md := in.Metadata
	if md == nil {
		md = map[string]any{}
	}

	return &Event{
		ID:         id,
		ActorID:    actor,
		SessionID:  strings.TrimSpace(in.SessionID),
		ProductID:  product,
		CategoryID: strings.TrimSpace(in.CategoryID),
		Action:     action,
		Metadata:   md,
		CreatedAt:  now.UTC().Truncate(time.Microsecond),
	}, nil
}

// EventFilter narrows an event query. Zero fields are ignored.
// From and To are inclusive bounds on CreatedAt.
type EventFilter struct {
	ActorID   string
	SessionID string
	ProductID string
	Action    Action
	From      *time.Time
	To        *time.Time
}

func (f EventFilter) Matches(e *Event) bool {
	if f.ActorID != "" && e.ActorID != f.ActorID {
		return false
	}
	if f.SessionID != "" && e.SessionID != f.SessionID {
		return false
	}
	if f.ProductID != "" && e.ProductID != f.ProductID {
		return false
	}
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if f.From != nil && e.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && e.CreatedAt.After(*f.To) {
		return false
	}
	return true
}
