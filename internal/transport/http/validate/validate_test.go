package validate

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/tracking-service/internal/domain"
)

type sample struct {
	ActorID string `json:"actorId" validate:"required"`
	Action  string `json:"action" validate:"required,action"`
}

func TestStruct(t *testing.T) {
	t.Run("reports_json_field_names", func(t *testing.T) {
		err := Struct(sample{Action: "teleport"})
		require.Error(t, err)

		var ae *domain.AppError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, domain.CodeValidation, ae.Code)
		assert.Equal(t, "required", ae.Meta["actorId"])
		assert.Contains(t, ae.Meta["action"], "must be one of")
	})

	t.Run("passes_valid_struct", func(t *testing.T) {
		assert.NoError(t, Struct(sample{ActorID: "u1", Action: "purchase"}))
	})
}

func TestDecodeJSON(t *testing.T) {
	t.Run("rejects_unknown_fields", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"actorId":"u1","extra":1}`))
		var s sample
		err := DecodeJSON(req, &s)
		assert.True(t, domain.IsCode(err, domain.CodeValidation))
	})

	t.Run("decodes_known_fields", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"actorId":"u1","action":"view"}`))
		var s sample
		require.NoError(t, DecodeJSON(req, &s))
		assert.Equal(t, "u1", s.ActorID)
	})
}

func TestLimit(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    int
		wantErr bool
	}{
		{name: "absent_uses_default", query: "", want: 10},
		{name: "numeric", query: "?limit=3", want: 3},
		{name: "non_numeric_rejected", query: "?limit=abc", wantErr: true},
		{name: "zero_rejected", query: "?limit=0", wantErr: true},
		{name: "negative_rejected", query: "?limit=-4", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
			got, err := Limit(req, "limit", 10)
			if tt.wantErr {
				assert.True(t, domain.IsCode(err, domain.CodeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTime(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?start_date=2025-03-01&end_date=2025-03-02T10:00:00Z&bad=yesterday", nil)

	got, err := Time(req, "start_date")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), *got)

	got, err = Time(req, "end_date")
	require.NoError(t, err)
	assert.Equal(t, 10, got.Hour())

	_, err = Time(req, "bad")
	assert.Error(t, err)

	got, err = Time(req, "missing")
	assert.NoError(t, err)
	assert.Nil(t, got)
}
