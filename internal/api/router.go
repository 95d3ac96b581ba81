package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/authgate/authgate/internal/auth"
	"github.com/authgate/authgate/internal/config"
	"github.com/authgate/authgate/internal/oauth"
	"github.com/authgate/authgate/internal/store"
)

// NewRouter creates a new HTTP router
func NewRouter(cfg *config.Config, clients store.ClientStore, orch *auth.Orchestrator, issuer *auth.TokenIssuer, states *auth.StateTokenManager, adapters []oauth.Adapter) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(SecurityHeadersMiddleware(cfg))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Local auth routes
	r.Post("/auth/login", HandleLogin(orch, cfg))
	r.Post("/auth/register", HandleRegister(orch, cfg))
	r.Post("/auth/logout", HandleLogout(cfg))

	// OAuth redirect routes, one pair per enabled provider
	for _, adapter := range adapters {
		r.Get(fmt.Sprintf("/auth/%s", adapter.Name()), HandleOAuthAuthorize(adapter, states))
		r.Get(fmt.Sprintf("/auth/%s/callback", adapter.Name()), HandleOAuthCallback(adapter, states, orch, cfg))
	}

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(issuer, clients))

		r.Get("/api/me", HandleGetCurrentClient())
	})

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
