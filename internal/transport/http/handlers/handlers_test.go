package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/baechuer/tracking-service/internal/application/catalog"
	"github.com/baechuer/tracking-service/internal/application/tracking"
	"github.com/baechuer/tracking-service/internal/domain"
	"github.com/baechuer/tracking-service/internal/infrastructure/memory"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestHealthHandler_Readyz(t *testing.T) {
	t.Run("ready_when_checks_pass", func(t *testing.T) {
		h := NewHealthHandler(map[string]Check{
			"postgres": func(context.Context) error { return nil },
		})
		rr := httptest.NewRecorder()
		h.Readyz(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("503_names_failed_dependency", func(t *testing.T) {
		h := NewHealthHandler(map[string]Check{
			"redis": func(context.Context) error { return errors.New("connection refused") },
		})
		rr := httptest.NewRecorder()
		h.Readyz(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.Contains(t, rr.Body.String(), "redis")
	})
}

func TestTrackingHandler_ByUser(t *testing.T) {
	svc := tracking.New(memory.NewEventStore(), fixedClock{t: time.Now()}, nil)
	h := NewTrackingHandler(svc)

	t.Run("blank_user_is_400", func(t *testing.T) {
		req := withURLParam(httptest.NewRequest(http.MethodGet, "/events/user/%20", nil), "user_id", " ")
		rr := httptest.NewRecorder()
		h.ByUser(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "user_id")
	})

	t.Run("negative_limit_is_400", func(t *testing.T) {
		req := withURLParam(httptest.NewRequest(http.MethodGet, "/events/user/u1?limit=-3", nil), "user_id", "u1")
		rr := httptest.NewRecorder()
		h.ByUser(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown_user_is_empty_list", func(t *testing.T) {
		req := withURLParam(httptest.NewRequest(http.MethodGet, "/events/user/u1", nil), "user_id", "u1")
		rr := httptest.NewRecorder()
		h.ByUser(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"data":[]}`, rr.Body.String())
	})
}

func TestTrackingHandler_List(t *testing.T) {
	svc := tracking.New(memory.NewEventStore(), fixedClock{t: time.Now()}, nil)
	h := NewTrackingHandler(svc)

	t.Run("inverted_range_is_400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/events?start_date=2025-03-02&end_date=2025-03-01", nil)
		rr := httptest.NewRecorder()
		h.List(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "start_date")
	})

	t.Run("malformed_date_is_400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/events?start_date=yesterday", nil)
		rr := httptest.NewRecorder()
		h.List(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestTrackingHandler_Merge(t *testing.T) {
	svc := tracking.New(memory.NewEventStore(), fixedClock{t: time.Now()}, nil)
	h := NewTrackingHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/events/merge",
		strings.NewReader(`{"sessionId":"s1","userId":"anonymous"}`))
	rr := httptest.NewRecorder()
	h.Merge(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "user_id")
}

type failingCategories struct{}

func (failingCategories) Children(context.Context, string) ([]domain.Category, error) {
	return nil, domain.ErrUnavailable("category children", errors.New("dial tcp: refused"))
}

func (failingCategories) Exists(context.Context, string) (bool, error) { return true, nil }

func TestCatalogHandler_Descendants(t *testing.T) {
	t.Run("data_source_failure_is_503_without_details", func(t *testing.T) {
		h := NewCatalogHandler(catalog.NewResolver(failingCategories{}))
		req := withURLParam(httptest.NewRequest(http.MethodGet, "/categories/root/descendants", nil), "category_id", "root")
		rr := httptest.NewRecorder()
		h.Descendants(rr, req)

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.NotContains(t, rr.Body.String(), "dial tcp")
	})

	t.Run("leaf_returns_itself", func(t *testing.T) {
		tree := memory.NewCategoryTree(domain.Category{ID: "leaf", IsLeaf: true})
		h := NewCatalogHandler(catalog.NewResolver(tree))
		req := withURLParam(httptest.NewRequest(http.MethodGet, "/categories/leaf/descendants", nil), "category_id", "leaf")
		rr := httptest.NewRecorder()
		h.Descendants(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"data":{"categoryId":"leaf","ids":["leaf"]}}`, rr.Body.String())
	})
}
