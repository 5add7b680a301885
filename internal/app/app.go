// Package app wires configuration into the services shared by the API
// server and the command line client.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/woundtrack/internal/adapters/cache"
	"github.com/zatekoja/woundtrack/internal/adapters/content"
	"github.com/zatekoja/woundtrack/internal/adapters/directory"
	"github.com/zatekoja/woundtrack/internal/adapters/events"
	"github.com/zatekoja/woundtrack/internal/adapters/providers/geolocation"
	"github.com/zatekoja/woundtrack/internal/adapters/search"
	"github.com/zatekoja/woundtrack/internal/application/services"
	"github.com/zatekoja/woundtrack/internal/application/session"
	"github.com/zatekoja/woundtrack/internal/domain/providers"
	"github.com/zatekoja/woundtrack/internal/domain/repositories"
	"github.com/zatekoja/woundtrack/internal/infrastructure/clients/classifier"
	"github.com/zatekoja/woundtrack/internal/infrastructure/clients/contentapi"
	"github.com/zatekoja/woundtrack/internal/infrastructure/clients/redis"
	"github.com/zatekoja/woundtrack/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/woundtrack/internal/infrastructure/observability"
	"github.com/zatekoja/woundtrack/pkg/config"
)

const memoryCacheSize = 1024

// Options control start-up behaviour
type Options struct {
	// WaitForUpstreams retries optional backends (Typesense) at start-up
	// instead of probing them once.
	WaitForUpstreams bool
	Metrics          *observability.Metrics
}

// App holds the wired services
type App struct {
	Config *config.Config

	Session     *session.Manager
	Auth        *services.AuthService
	Locations   *services.LocationService
	Hospitals   *services.HospitalService
	Predictions *services.PredictionService
	History     *services.HistoryService
	Events      providers.EventBus

	Directory  *directory.StaticRepository
	Classifier *classifier.BreakerClassifier
	Search     *search.TypesenseAdapter
	Metrics    *observability.Metrics

	closers []func() error
}

// New builds the application from cfg and restores the stored session.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	a := &App{Config: cfg, Metrics: opts.Metrics}

	cacheProvider, redisClient := a.initCache(ctx)

	store, err := a.sessionStore(cacheProvider)
	if err != nil {
		return nil, err
	}
	a.Session = session.NewManager(store)
	if _, err := a.Session.Init(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to restore session")
	}

	// Content API
	contentClient := contentapi.NewClient(contentapi.Options{
		BaseURL: cfg.ContentAPI.URL,
		Timeout: cfg.ContentAPI.Timeout,
		Tokens:  a.Session,
		Metrics: opts.Metrics,
	})
	predictionRepo := content.NewPredictionAdapter(contentClient, content.PredictionAdapterOptions{
		BaseURL:        cfg.ContentAPI.URL,
		ExtendedFields: cfg.ContentAPI.ExtendedFields,
	})
	imageStore := content.NewImageAdapter(contentClient, cfg.ContentAPI.URL)
	userRepo := content.NewUserAdapter(contentClient)

	// Classifier
	a.Classifier = classifier.NewBreakerClassifier(
		classifier.NewClient(cfg.Classifier.URL, cfg.Classifier.Timeout, nil, opts.Metrics),
		classifier.DefaultBreakerSettings(),
	)

	// Hospital directory
	hospitals, err := directory.LoadHospitals(cfg.Directory.HospitalsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load hospital directory: %w", err)
	}
	a.Directory, err = directory.NewStaticRepository(hospitals)
	if err != nil {
		return nil, fmt.Errorf("invalid hospital directory: %w", err)
	}

	var searchRepo repositories.HospitalSearchRepository
	if cfg.Typesense.URL != "" {
		a.Search = a.initSearch(ctx, cfg, opts.WaitForUpstreams)
		if a.Search != nil {
			searchRepo = a.Search
		}
	}

	// Events
	if redisClient != nil {
		a.Events = events.NewRedisEventBus(redisClient)
	} else {
		a.Events = events.NewMemoryEventBus()
	}
	a.closers = append(a.closers, a.Events.Close)
	if redisClient != nil {
		a.closers = append(a.closers, redisClient.Close)
	}

	// Location
	var geocoder providers.GeolocationProvider
	switch strings.ToLower(cfg.Geolocation.Provider) {
	case "google":
		geocoder = geolocation.NewGoogleGeolocationProvider(cfg.Geolocation.APIKey, cacheProvider)
	case "none":
	default:
		geocoder = geolocation.NewMockGeolocationProvider()
	}
	position := geolocation.NewStaticPositionProvider(cfg.Device.Latitude, cfg.Device.Longitude, cfg.Device.LocationGranted)

	a.Locations = services.NewLocationService(position, geocoder)
	a.Hospitals = services.NewHospitalService(a.Directory, searchRepo, services.DirectoryOptions{
		DefaultRadiusMiles: cfg.Directory.DefaultRadiusMiles,
		NearestLimit:       cfg.Directory.NearestLimit,
	})
	a.Auth = services.NewAuthService(userRepo, a.Session)
	a.Predictions = services.NewPredictionService(imageStore, a.Classifier, predictionRepo).WithEventBus(a.Events)
	a.History = services.NewHistoryService(predictionRepo, cacheProvider, opts.Metrics)

	return a, nil
}

// ReloadDirectory re-reads the hospital file and swaps it in
func (a *App) ReloadDirectory(ctx context.Context) error {
	hospitals, err := directory.LoadHospitals(a.Config.Directory.HospitalsFile)
	if err != nil {
		return err
	}
	if err := a.Directory.Replace(hospitals); err != nil {
		return err
	}
	log.Info().Int("hospitals", len(hospitals)).Msg("Hospital directory reloaded")

	if a.Search != nil {
		if _, err := a.Hospitals.Reindex(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to reindex hospitals after reload")
		}
	}
	return nil
}

// Close releases connections opened by New
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// initCache prefers Redis and falls back to an in-process cache.
func (a *App) initCache(ctx context.Context) (providers.CacheProvider, *redis.Client) {
	if !a.Config.Redis.Enabled {
		return cache.NewMemoryAdapter(memoryCacheSize), nil
	}

	client, err := redis.NewClient(ctx, &a.Config.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, using in-memory cache")
		return cache.NewMemoryAdapter(memoryCacheSize), nil
	}
	return cache.NewRedisAdapter(client, a.Config.App.Name+":"), client
}

func (a *App) sessionStore(cacheProvider providers.CacheProvider) (repositories.SessionStore, error) {
	switch a.Config.Session.Store {
	case "file":
		return session.NewFileStore(a.Config.Session.Path), nil
	case "cache":
		if _, inMemory := cacheProvider.(*cache.MemoryAdapter); inMemory {
			log.Warn().Msg("Session cache is in-memory; sessions end with the process")
		}
		return session.NewCacheStore(cacheProvider), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", a.Config.Session.Store)
	}
}

func (a *App) initSearch(ctx context.Context, cfg *config.Config, wait bool) *search.TypesenseAdapter {
	var client *typesense.Client
	if wait {
		c, err := typesense.NewClient(ctx, &cfg.Typesense)
		if err != nil {
			log.Warn().Err(err).Msg("Typesense unavailable, using in-memory search")
			return nil
		}
		client = c
	} else {
		client = typesense.NewUncheckedClient(cfg.Typesense.URL, cfg.Typesense.APIKey)
	}

	if err := client.InitSchema(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to initialise Typesense schema, using in-memory search")
		return nil
	}
	return search.NewTypesenseAdapter(client)
}

