package response

import (
	"encoding/json"
	"errors"
	"net/http"

	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/tracking-service/internal/domain"
	appCtx "github.com/baechuer/tracking-service/internal/pkg/context"
)

// Envelope is the success envelope:
// {"data": ...}
type Envelope struct {
	Data any `json:"data"`
}

// ErrorBody:
// {"error":{"code":"...","message":"...","meta":{...},"request_id":"..."}}
type ErrorBody struct {
	Error ErrorPayload `json:"error"`
}

type ErrorPayload struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Meta      map[string]string `json:"meta,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Data(w http.ResponseWriter, status int, payload any) {
	JSON(w, status, Envelope{Data: payload})
}

func Fail(w http.ResponseWriter, status int, code, message string, meta map[string]string, requestID string) {
	JSON(w, status, ErrorBody{
		Error: ErrorPayload{
			Code:      code,
			Message:   message,
			Meta:      meta,
			RequestID: requestID,
		},
	})
}

// Err renders err. Data source failures are logged with their cause and
// reported to the client without it.
func Err(w http.ResponseWriter, r *http.Request, err error) {
	requestID := RequestIDFromRequest(r)

	var ae *domain.AppError
	if err != nil && errors.As(err, &ae) {
		if ae.Code == domain.CodeUnavailable {
			zlog.Error().Err(err).Str("request_id", requestID).Msg("data source unavailable")
			Fail(w, http.StatusServiceUnavailable, string(ae.Code), "temporarily unavailable", nil, requestID)
			return
		}
		Fail(w, statusFromCode(ae.Code), string(ae.Code), ae.Message, ae.Meta, requestID)
		return
	}

	// keep details in logs only
	zlog.Error().Err(err).Str("request_id", requestID).Msg("unhandled error")
	Fail(w, http.StatusInternalServerError, "internal_error", "internal error", nil, requestID)
}

func statusFromCode(code domain.ErrCode) int {
	switch code {
	case domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeUnauthorized:
		return http.StatusUnauthorized
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RequestIDFromRequest prefers the id stored by the RequestID middleware and
// falls back to the inbound header.
func RequestIDFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	if id := appCtx.GetRequestID(r.Context()); id != "" {
		return id
	}
	return r.Header.Get("X-Request-Id")
}
