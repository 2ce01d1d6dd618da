package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const SessionCookieName = "tracking_sid"

type sessionIDKey struct{}

// Session issues an HMAC-signed anonymous session cookie and exposes its id
// to handlers. Cookie format: <session_id>.<exp_unix>.<sig>
func Session(secret string, ttl time.Duration, secureCookie bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sid string

			if c, err := r.Cookie(SessionCookieName); err == nil {
				if id, ok := verifySessionCookie(secret, c.Value, time.Now()); ok {
					sid = id
				}
			}

			if sid == "" {
				sid = uuid.NewString()
				exp := time.Now().Add(ttl).Unix()

				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    signSessionCookie(secret, sid, exp),
					Path:     "/",
					MaxAge:   int(ttl.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
					Secure:   secureCookie,
				})
			}

			ctx := context.WithValue(r.Context(), sessionIDKey{}, sid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(sessionIDKey{}).(string)
	return v, ok && v != ""
}

func signSessionCookie(secret, sid string, exp int64) string {
	payload := fmt.Sprintf("%s.%d", sid, exp)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return payload + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func verifySessionCookie(secret, cookie string, now time.Time) (string, bool) {
	parts := strings.SplitN(cookie, ".", 3)
	if len(parts) != 3 {
		return "", false
	}
	sid, expStr := parts[0], parts[1]

	exp, err := strconv.ParseInt(expStr, 10, 64)
	if err != nil || now.Unix() > exp {
		return "", false
	}

	expected := signSessionCookie(secret, sid, exp)
	if !hmac.Equal([]byte(cookie), []byte(expected)) {
		return "", false
	}
	return sid, true
}
