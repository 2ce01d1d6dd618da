package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/tracking-service/internal/transport/http/response"
)

type ctxKey string

const ctxUserID ctxKey = "user_id"

// Claims are issued by the external auth service.
type Claims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type AuthMiddleware struct {
	secret []byte
	issuer string
}

func NewAuth(secret, issuer string) *AuthMiddleware {
	return &AuthMiddleware{
		secret: []byte(secret),
		issuer: issuer,
	}
}

func (a *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, err := a.parse(r)
		if err != nil {
			zlog.Debug().Err(err).Msg("auth rejected")
			response.Fail(
				w,
				http.StatusUnauthorized,
				"unauthorized",
				"unauthorized",
				map[string]string{"reason": err.Error()},
				response.RequestIDFromRequest(r),
			)
			return
		}

		ctx := context.WithValue(r.Context(), ctxUserID, uid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *AuthMiddleware) parse(r *http.Request) (string, error) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(h, "Bearer ") {
		return "", errors.New("missing bearer token")
	}
	raw := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))

	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, jwt.WithLeeway(30*time.Second))
	if err != nil {
		return "", err
	}
	if !tok.Valid {
		return "", errors.New("invalid token")
	}

	if a.issuer != "" && claims.Issuer != a.issuer {
		return "", errors.New("invalid issuer")
	}
	if strings.TrimSpace(claims.UserID) == "" {
		return "", errors.New("missing uid")
	}
	return claims.UserID, nil
}

func UserID(r *http.Request) string {
	if v, ok := r.Context().Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}
