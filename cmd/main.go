/*
Package main is the entry point for the DMLine messaging server.

It is responsible for loading configuration, initializing the global logging
system, connecting to PostgreSQL (running migrations), starting the WebSocket
Hub, setting up the HTTP server, and gracefully handling operating system
interrupt signals (SIGINT, SIGTERM) for a smooth shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dmline/internal/app/ai"
	"dmline/internal/app/chat"
	"dmline/internal/app/db"
	"dmline/internal/app/storage"
	"dmline/internal/app/store"
	"dmline/internal/configs"
	"dmline/internal/handler"
	"dmline/internal/pkg/auth/google"
	"dmline/internal/pkg/logx"
)

// sessionSweepInterval is how often expired session rows are purged.
const sessionSweepInterval = time.Hour

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Bool("google_login", cfg.GoogleClientID != "").
		Bool("ai_chat", cfg.GeminiAPIKey != "").
		Bool("avatar_storage", cfg.StorageEnabled()).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL and apply migrations
	pool, err := db.NewPool(cfg.DatabaseDSN)
	if err != nil {
		logx.Fatal(err, "Failed to initialize database")
	}
	defer pool.Close()

	users := store.NewUsers(pool)
	sessions := store.NewSessions(pool)
	messages := store.NewMessages(pool)

	// Start the WebSocket Hub (presence registry + dispatcher)
	hub := chat.NewHub(users)

	deps := &handler.AppDeps{
		Hub:      hub,
		Config:   cfg,
		Users:    users,
		Sessions: sessions,
		Messages: messages,
	}

	if cfg.GoogleClientID != "" {
		deps.GoogleVerifier = google.NewVerifier(cfg.GoogleClientID)
	}

	if cfg.GeminiAPIKey != "" {
		deps.AI = ai.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	}

	if cfg.StorageEnabled() {
		storageService, err := storage.NewStorageService(storage.ServiceConfig{
			S3BucketName:      cfg.S3BucketName,
			S3Endpoint:        cfg.S3Endpoint,
			S3AccessKeyID:     cfg.S3AccessKeyID,
			S3SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			logx.Fatal(err, "Failed to initialize avatar storage")
		}
		deps.StorageService = storageService
	}

	// Periodically sweep expired session rows.
	go func() {
		ticker := time.NewTicker(sessionSweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				sweepCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				removed, err := sessions.DeleteExpired(sweepCtx)
				cancel()

				if err != nil {
					logx.Error(err, "Session sweep failed")
				} else if removed > 0 {
					logx.Info("Session sweep finished", "removed", removed)
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	// Setup HTTP server and routes
	router := handler.Router(deps)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("DMLine Server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	hub.Shutdown()

	logx.Info("Server gracefully stopped.")
}
