package api

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/authgate/authgate/internal/auth"
	"github.com/authgate/authgate/internal/config"
	"github.com/authgate/authgate/internal/store"
)

type contextKey string

const clientContextKey contextKey = "client"

// SecurityHeadersMiddleware adds security headers to all responses
func SecurityHeadersMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Prevent clickjacking
			w.Header().Set("X-Frame-Options", "DENY")

			// Prevent MIME sniffing
			w.Header().Set("X-Content-Type-Options", "nosniff")

			// Referrer Policy
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			// HSTS - enable in production
			if cfg.Environment == "production" {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuthMiddleware validates the session token from the Authorization header or
// the session cookie and loads the client into the request context.
func AuthMiddleware(issuer *auth.TokenIssuer, clients store.ClientStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				if cookie, err := r.Cookie(sessionCookieName); err == nil {
					token = cookie.Value
				}
			}
			if token == "" {
				writeError(w, auth.Errorf(auth.ErrUnauthorized, "missing session token"))
				return
			}

			claims, err := issuer.Verify(token)
			if err != nil {
				writeError(w, auth.Errorf(auth.ErrUnauthorized, "invalid token"))
				return
			}

			client, err := clients.GetClientByID(r.Context(), claims.ClientID)
			if err != nil || client == nil {
				if err != nil {
					log.Println("AuthMiddleware: Failed to load client:", err.Error())
				}
				writeError(w, auth.Errorf(auth.ErrUnauthorized, "invalid token"))
				return
			}

			ctx := context.WithValue(r.Context(), clientContextKey, client)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return ""
	}
	return token
}
