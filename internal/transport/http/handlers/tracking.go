package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/tracking-service/internal/application/tracking"
	"github.com/baechuer/tracking-service/internal/domain"
	"github.com/baechuer/tracking-service/internal/transport/http/dto"
	"github.com/baechuer/tracking-service/internal/transport/http/middleware"
	"github.com/baechuer/tracking-service/internal/transport/http/response"
	"github.com/baechuer/tracking-service/internal/transport/http/validate"
)

type TrackingHandler struct {
	svc *tracking.Service
}

func NewTrackingHandler(svc *tracking.Service) *TrackingHandler {
	return &TrackingHandler{svc: svc}
}

// Record stores one event. Anonymous events without an explicit sessionId
// take the session cookie's id.
func (h *TrackingHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordEventReq
	if err := validate.DecodeJSON(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		response.Err(w, r, err)
		return
	}

	h.record(w, r, tracking.RecordCmd{
		ActorID:    req.ActorID,
		SessionID:  h.sessionOr(r, req.ActorID, req.SessionID),
		ProductID:  req.ProductID,
		CategoryID: req.CategoryID,
		Action:     req.Action,
		Metadata:   req.Metadata,
	})
}

// Track is Record for a signed-in user; the actor is the token subject and
// only an explicit sessionId is stored.
func (h *TrackingHandler) Track(w http.ResponseWriter, r *http.Request) {
	var req dto.TrackReq
	if err := validate.DecodeJSON(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		response.Err(w, r, err)
		return
	}

	h.record(w, r, tracking.RecordCmd{
		ActorID:    middleware.UserID(r),
		SessionID:  strings.TrimSpace(req.SessionID),
		ProductID:  req.ProductID,
		CategoryID: req.CategoryID,
		Action:     req.Action,
		Metadata:   req.Metadata,
	})
}

func (h *TrackingHandler) record(w http.ResponseWriter, r *http.Request, cmd tracking.RecordCmd) {
	ev, err := h.svc.Record(r.Context(), cmd)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, dto.ToEventResp(ev))
}

// sessionOr falls back to the cookie session for anonymous actors only;
// merges rewrite anonymous rows, so a user's row must not carry it.
func (h *TrackingHandler) sessionOr(r *http.Request, actorID, explicit string) string {
	if s := strings.TrimSpace(explicit); s != "" {
		return s
	}
	if strings.TrimSpace(actorID) != domain.AnonymousActor {
		return ""
	}
	sid, _ := middleware.SessionIDFromContext(r.Context())
	return sid
}

func (h *TrackingHandler) Merge(w http.ResponseWriter, r *http.Request) {
	var req dto.MergeReq
	if err := validate.DecodeJSON(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		response.Err(w, r, err)
		return
	}

	n, err := h.svc.MergeSession(r.Context(), req.SessionID, req.UserID)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.MergeResp{Updated: n})
}

// List serves GET /events with optional filters.
func (h *TrackingHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := validate.Limit(r, "limit", tracking.DefaultQueryLimit)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	from, err := validate.Time(r, "start_date")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	to, err := validate.Time(r, "end_date")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	f := domain.EventFilter{
		ActorID:   strings.TrimSpace(q.Get("actor_id")),
		SessionID: strings.TrimSpace(q.Get("session_id")),
		ProductID: strings.TrimSpace(q.Get("product_id")),
		Action:    domain.Action(strings.TrimSpace(q.Get("action"))),
		From:      from,
		To:        to,
	}
	items, err := h.svc.Filtered(r.Context(), f, limit)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToEventResps(items))
}

func (h *TrackingHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	limit, err := validate.Limit(r, "limit", tracking.DefaultQueryLimit)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	items, err := h.svc.ByActor(r.Context(), chi.URLParam(r, "user_id"), limit)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToEventResps(items))
}

func (h *TrackingHandler) BySession(w http.ResponseWriter, r *http.Request) {
	limit, err := validate.Limit(r, "limit", tracking.DefaultQueryLimit)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	items, err := h.svc.BySession(r.Context(), chi.URLParam(r, "session_id"), limit)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToEventResps(items))
}

func (h *TrackingHandler) Recent(w http.ResponseWriter, r *http.Request) {
	h.recent(w, r, chi.URLParam(r, "user_id"))
}

func (h *TrackingHandler) MyRecent(w http.ResponseWriter, r *http.Request) {
	h.recent(w, r, middleware.UserID(r))
}

func (h *TrackingHandler) recent(w http.ResponseWriter, r *http.Request, actorID string) {
	limit, err := validate.Limit(r, "limit", tracking.DefaultRecentLimit)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	items, err := h.svc.RecentlyViewed(r.Context(), actorID, limit)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToEventResps(items))
}

func (h *TrackingHandler) UserStats(w http.ResponseWriter, r *http.Request) {
	h.userStats(w, r, chi.URLParam(r, "user_id"))
}

func (h *TrackingHandler) MyStats(w http.ResponseWriter, r *http.Request) {
	h.userStats(w, r, middleware.UserID(r))
}

func (h *TrackingHandler) userStats(w http.ResponseWriter, r *http.Request, actorID string) {
	stats, err := h.svc.UserStats(r.Context(), actorID)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToUserStatsResp(stats))
}

func (h *TrackingHandler) HourlyStats(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.svc.HourlyStats(r.Context())
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToBucketResps(buckets))
}

func (h *TrackingHandler) DailyStats(w http.ResponseWriter, r *http.Request) {
	days, err := validate.Limit(r, "days", tracking.DefaultStatsDays)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	buckets, err := h.svc.DailyStats(r.Context(), days)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToBucketResps(buckets))
}
