package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"regexp"
	"time"
)

const (
	ClientCookieName = "harvin_client"
	clientCookieAge  = 30 * 24 * time.Hour
)

type contextKey int

const clientIDKey contextKey = iota

var clientIDPattern = regexp.MustCompile(`^c_[a-f0-9]{32}$`)

// ClientIDFromContext returns the browser identity set by ClientIdentity.
func ClientIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(clientIDKey).(string); ok {
		return v
	}
	return ""
}

func generateClientID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate client id: %w", err)
	}
	return "c_" + hex.EncodeToString(buf), nil
}

// ClientIdentity gives every browser a stable id cookie. All client state is keyed by it.
// The cookie is refreshed on each request and is Secure outside development.
func ClientIdentity(isDev bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(ClientCookieName); err == nil && clientIDPattern.MatchString(c.Value) {
				id = c.Value
			} else {
				var err error
				if id, err = generateClientID(); err != nil {
					Error(w, http.StatusInternalServerError, "internal error")
					return
				}
			}

			http.SetCookie(w, &http.Cookie{
				Name:     ClientCookieName,
				Value:    id,
				Path:     "/",
				MaxAge:   int(clientCookieAge.Seconds()),
				Expires:  time.Now().Add(clientCookieAge),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				Secure:   !isDev,
			})

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientIDKey, id)))
		})
	}
}
