package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/tracking-service/internal/domain"
	appCtx "github.com/baechuer/tracking-service/internal/pkg/context"
)

func TestErr(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "validation",
			err:         domain.ErrValidationMeta("invalid event", map[string]string{"action": "bad"}),
			wantStatus:  http.StatusBadRequest,
			wantCode:    "validation_error",
			wantMessage: "invalid event",
		},
		{
			name:        "not_found",
			err:         domain.ErrNotFound("category not found"),
			wantStatus:  http.StatusNotFound,
			wantCode:    "not_found",
			wantMessage: "category not found",
		},
		{
			name:        "unavailable_hides_cause",
			err:         domain.ErrUnavailable("tracking store: find", errors.New("dial tcp 10.0.0.7:5432")),
			wantStatus:  http.StatusServiceUnavailable,
			wantCode:    "unavailable",
			wantMessage: "temporarily unavailable",
		},
		{
			name:        "generic_error",
			err:         errors.New("boom"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "internal_error",
			wantMessage: "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(appCtx.WithRequestID(req.Context(), "req-9"))

			Err(rr, req, tt.err)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.NotContains(t, rr.Body.String(), "10.0.0.7")

			var body ErrorBody
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, tt.wantMessage, body.Error.Message)
			assert.Equal(t, "req-9", body.Error.RequestID)
		})
	}
}

func TestData(t *testing.T) {
	rr := httptest.NewRecorder()
	Data(rr, http.StatusCreated, map[string]int64{"updated": 3})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":{"updated":3}}`, rr.Body.String())
}
