package dto

import (
	"time"

	"github.com/baechuer/tracking-service/internal/domain"
)

type RecordEventReq struct {
	ActorID    string         `json:"actorId" validate:"required,max=128"`
	SessionID  string         `json:"sessionId" validate:"max=128"`
	ProductID  string         `json:"productId" validate:"required,max=256"`
	CategoryID string         `json:"categoryId" validate:"max=128"`
	Action     string         `json:"action" validate:"required,action"`
	Metadata   map[string]any `json:"metadata"`
}

// TrackReq is the authenticated variant: the actor comes from the token.
type TrackReq struct {
	SessionID  string         `json:"sessionId" validate:"max=128"`
	ProductID  string         `json:"productId" validate:"required,max=256"`
	CategoryID string         `json:"categoryId" validate:"max=128"`
	Action     string         `json:"action" validate:"required,action"`
	Metadata   map[string]any `json:"metadata"`
}

type MergeReq struct {
	SessionID string `json:"sessionId" validate:"required,max=128"`
	UserID    string `json:"userId" validate:"required,max=128"`
}

type MergeResp struct {
	Updated int64 `json:"updated"`
}

type EventResp struct {
	ID         string         `json:"id"`
	ActorID    string         `json:"actorId"`
	SessionID  string         `json:"sessionId,omitempty"`
	ProductID  string         `json:"productId"`
	CategoryID string         `json:"categoryId,omitempty"`
	Action     string         `json:"action"`
	Metadata   map[string]any `json:"metadata"`
	CreatedAt  time.Time      `json:"createdAt"`
}

func ToEventResp(e *domain.Event) EventResp {
	md := e.Metadata
	if md == nil {
		md = map[string]any{}
	}
	return EventResp{
		ID:         e.ID,
		ActorID:    e.ActorID,
		SessionID:  e.SessionID,
		ProductID:  e.ProductID,
		CategoryID: e.CategoryID,
		Action:     string(e.Action),
		Metadata:   md,
		CreatedAt:  e.CreatedAt.UTC(),
	}
}

func ToEventResps(in []*domain.Event) []EventResp {
	out := make([]EventResp, 0, len(in))
	for _, e := range in {
		out = append(out, ToEventResp(e))
	}
	return out
}
