package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/teamup-web/internal/api"
	"github.com/isdelr/teamup-web/internal/api/handlers"
	"github.com/isdelr/teamup-web/internal/auth"
	"github.com/isdelr/teamup-web/internal/config"
	"github.com/isdelr/teamup-web/internal/database"
	"github.com/isdelr/teamup-web/internal/housekeeping"
	"github.com/isdelr/teamup-web/internal/logger"
	"github.com/isdelr/teamup-web/internal/services"
	"github.com/isdelr/teamup-web/internal/session"
	"github.com/isdelr/teamup-web/internal/websocket"
	"github.com/rs/zerolog/log"
)

const sessionCookieName = "teamup_session"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info")
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.LogLevel)

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	cookies, err := auth.NewCookieManager(cfg.SessionSecret, sessionCookieName, cfg.SessionTTL, cfg.CookieSecure)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up session cookies")
	}

	// Set up WebSocket Hub
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	hub := websocket.NewHub()
	go hub.Run(hubCtx)

	// Set up and run the expired-session sweeper
	sweeper, err := housekeeping.NewSweeper(db, cfg.SessionSweepCron)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up session sweeper")
	}
	go sweeper.Run()

	backend := services.NewBackend(cfg.BackendURL, cfg.BackendTimeout)
	sessions := handlers.NewSessionLoader(cookies, sqlStorage(db), backend, cfg.SessionTTL, hub)

	csrfKey, err := auth.DeriveCSRFKey(cfg.SessionSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to derive CSRF key")
	}

	// Set up router
	router := api.NewRouter(api.Deps{
		Sessions:       sessions,
		Cookies:        cookies,
		Hub:            hub,
		DB:             db,
		AllowedOrigins: cfg.AllowedOrigins,
		CSRFKey:        csrfKey,
		Secure:         cfg.CookieSecure,
	})

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("backend", cfg.BackendURL).Msg("Server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	stopHub()

	log.Info().Msg("Server exiting")
}

func sqlStorage(db *sql.DB) handlers.StorageFactory {
	return func(sessionID string) session.Storage {
		return session.NewSQLStorage(db, sessionID)
	}
}
