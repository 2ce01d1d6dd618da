package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestAuthMiddleware_Require(t *testing.T) {
	secret := "test-secret"
	issuer := "test-issuer"
	auth := NewAuth(secret, issuer)

	generateToken := func(uid, iss, secret string, expired bool) string {
		exp := time.Now().Add(time.Hour)
		if expired {
			exp = time.Now().Add(-time.Hour)
		}
		claims := Claims{
			UserID: uid,
			Role:   "user",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    iss,
				ExpiresAt: jwt.NewNumericDate(exp),
			},
		}
		ss, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		return ss
	}

	serve := func(authz string) (*httptest.ResponseRecorder, string) {
		var seen string
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if authz != "" {
			req.Header.Set("Authorization", authz)
		}
		rr := httptest.NewRecorder()
		auth.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = UserID(r)
			w.WriteHeader(http.StatusOK)
		})).ServeHTTP(rr, req)
		return rr, seen
	}

	t.Run("valid_token_sets_user_id", func(t *testing.T) {
		rr, uid := serve("Bearer " + generateToken("user-123", issuer, secret, false))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "user-123", uid)
	})

	t.Run("missing_header_is_unauthorized", func(t *testing.T) {
		rr, _ := serve("")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "missing bearer token")
	})

	t.Run("expired_token_is_unauthorized", func(t *testing.T) {
		rr, _ := serve("Bearer " + generateToken("user-1", issuer, secret, true))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("wrong_issuer_is_unauthorized", func(t *testing.T) {
		rr, _ := serve("Bearer " + generateToken("user-1", "someone-else", secret, false))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "invalid issuer")
	})

	t.Run("wrong_secret_is_unauthorized", func(t *testing.T) {
		rr, _ := serve("Bearer " + generateToken("user-1", issuer, "other-secret", false))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("missing_uid_is_unauthorized", func(t *testing.T) {
		rr, _ := serve("Bearer " + generateToken("", issuer, secret, false))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
