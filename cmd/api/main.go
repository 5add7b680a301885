package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/woundtrack/internal/api/handlers"
	"github.com/zatekoja/woundtrack/internal/api/routes"
	"github.com/zatekoja/woundtrack/internal/app"
	"github.com/zatekoja/woundtrack/internal/infrastructure/observability"
	"github.com/zatekoja/woundtrack/pkg/config"
	"github.com/zatekoja/woundtrack/pkg/secrets"
)

func main() {
	observability.InitLogger("woundtrack", os.Getenv("APP_ENV"))

	if _, err := secrets.ApplyVaultSecrets(context.Background(), secrets.LoadVaultConfigFromEnv(), secrets.ProcessEnv); err != nil {
		log.Warn().Err(err).Msg("Failed to load secrets from Vault")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	observability.InitLogger(cfg.OTEL.ServiceName, cfg.App.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	application, err := app.New(ctx, cfg, app.Options{WaitForUpstreams: true, Metrics: metrics})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing application")
		}
	}()

	if application.Search != nil {
		go func() {
			n, err := application.Hospitals.Reindex(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("Initial hospital indexing failed")
				return
			}
			log.Info().Int("hospitals", n).Msg("Hospital search index ready")
		}()
	}

	router := routes.NewRouter(routes.Handlers{
		Health:     handlers.NewHealthHandler(application.Predictions),
		Auth:       handlers.NewAuthHandler(application.Auth),
		Location:   handlers.NewLocationHandler(application.Locations),
		Hospital:   handlers.NewHospitalHandler(application.Hospitals, application.Locations),
		Prediction: handlers.NewPredictionHandler(application.Predictions, application.History, application.Auth),
		SSE:        handlers.NewSSEHandler(application.Events, application.Auth),
	}, cfg.Server.AllowedOrigins, metrics)

	serverAddr := cfg.Server.ServerAddr()
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     router.SetupRoutes(),
		ReadTimeout: 15 * time.Second,
		// Uploads and event streams outlive a fixed write deadline.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
		// Cancelling ctx ends open event streams before Shutdown waits on them.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	for sig := range signals {
		if sig != syscall.SIGHUP {
			break
		}
		if err := application.ReloadDirectory(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to reload hospital directory")
		}
	}

	log.Info().Msg("Server shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	log.Info().Msg("Server stopped")
}
