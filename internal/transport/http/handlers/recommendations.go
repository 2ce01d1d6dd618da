package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/tracking-service/internal/application/recommend"
	"github.com/baechuer/tracking-service/internal/domain"
	"github.com/baechuer/tracking-service/internal/transport/http/dto"
	"github.com/baechuer/tracking-service/internal/transport/http/middleware"
	"github.com/baechuer/tracking-service/internal/transport/http/response"
	"github.com/baechuer/tracking-service/internal/transport/http/validate"
)

type RecommendationsHandler struct {
	svc *recommend.Service
}

func NewRecommendationsHandler(svc *recommend.Service) *RecommendationsHandler {
	return &RecommendationsHandler{svc: svc}
}

type recommendFunc func(ctx context.Context, key string, limit int) ([]domain.Recommendation, error)

func (h *RecommendationsHandler) serve(w http.ResponseWriter, r *http.Request, key string, fn recommendFunc) {
	limit, err := validate.Limit(r, "limit", recommend.DefaultLimit)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	items, err := fn(r.Context(), key, limit)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToRecommendationResps(items))
}

func (h *RecommendationsHandler) Blended(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, chi.URLParam(r, "user_id"), h.svc.Recommend)
}

func (h *RecommendationsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, middleware.UserID(r), h.svc.Recommend)
}

func (h *RecommendationsHandler) Collaborative(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, chi.URLParam(r, "user_id"), h.svc.Collaborative)
}

func (h *RecommendationsHandler) ContentBased(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, chi.URLParam(r, "user_id"), h.svc.ContentBased)
}

func (h *RecommendationsHandler) Similar(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, chi.URLParam(r, "product_id"), h.svc.Similar)
}

func (h *RecommendationsHandler) Popular(w http.ResponseWriter, r *http.Request) {
	limit, err := validate.Limit(r, "limit", recommend.DefaultLimit)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	items, err := h.svc.Popular(r.Context(), limit)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToPopularResps(items))
}
