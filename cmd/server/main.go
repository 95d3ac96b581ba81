package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/authgate/authgate/internal/api"
	"github.com/authgate/authgate/internal/auth"
	"github.com/authgate/authgate/internal/config"
	"github.com/authgate/authgate/internal/database"
	"github.com/authgate/authgate/internal/oauth"
	"github.com/authgate/authgate/internal/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Get underlying SQL database for cleanup
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database connection: %v", err)
	}
	defer sqlDB.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.Database); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Wire the auth engine
	clients := store.NewGormStore(db)
	issuer := auth.NewTokenIssuer(cfg.SessionSecret, cfg.SessionTTL)
	states := auth.NewStateTokenManager(cfg.StateSecret, cfg.StateTTL)
	orch := auth.NewOrchestrator(
		auth.NewCredentialVerifier(clients),
		auth.NewIdentityReconciler(clients),
		issuer,
	)

	var adapters []oauth.Adapter
	if cfg.Google.Enabled {
		adapters = append(adapters, oauth.NewGoogleAdapter(oauth.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURI:  cfg.Google.RedirectURI,
		}))
	}
	if cfg.Github.Enabled {
		adapters = append(adapters, oauth.NewGithubAdapter(oauth.Config{
			ClientID:     cfg.Github.ClientID,
			ClientSecret: cfg.Github.ClientSecret,
			RedirectURI:  cfg.Github.RedirectURI,
		}))
	}

	// Setup API router
	router := api.NewRouter(cfg, clients, orch, issuer, states, adapters)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on port %d", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
