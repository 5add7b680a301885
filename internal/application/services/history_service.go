package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/zatekoja/woundtrack/internal/domain/entities"
	"github.com/zatekoja/woundtrack/internal/domain/providers"
	"github.com/zatekoja/woundtrack/internal/domain/repositories"
	"github.com/zatekoja/woundtrack/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/woundtrack/pkg/errors"
)

// History sources, in the order they are tried
const (
	SourceContentAPI           = "content-api"
	SourceContentAPIUnfiltered = "content-api-unfiltered"
	SourceSnapshot             = "snapshot"
)

const (
	snapshotKeyPrefix = "history:v1:"
	snapshotTTL       = 7 * 24 * 60 * 60
	allUsersKey       = "*"
)

type historySource struct {
	name  string
	fetch func(ctx context.Context, userID string) ([]*entities.Prediction, error)
}

// HistoryService lists stored predictions
type HistoryService struct {
	repo    repositories.PredictionRepository
	cache   providers.CacheProvider
	metrics *observability.Metrics
	sources []historySource

	gate    Latest
	mu      sync.RWMutex
	current []*entities.Prediction
	loaded  time.Time
}

// NewHistoryService creates a history service. cache keeps the last good
// listing per user for offline fallback and may be nil.
func NewHistoryService(repo repositories.PredictionRepository, cache providers.CacheProvider, metrics *observability.Metrics) *HistoryService {
	s := &HistoryService{repo: repo, cache: cache, metrics: metrics}
	s.sources = []historySource{
		{name: SourceContentAPI, fetch: s.fetchFiltered},
		{name: SourceContentAPIUnfiltered, fetch: s.fetchUnfiltered},
		{name: SourceSnapshot, fetch: s.fetchSnapshot},
	}
	return s
}

// List returns the user's predictions, newest first. An empty userID lists
// every record.
func (s *HistoryService) List(ctx context.Context, userID string) ([]*entities.Prediction, error) {
	logger := observability.LoggerFromContext(ctx)
	if userID == "" {
		logger.Warn().Msg("Listing predictions for all users")
	}

	var firstErr error
	for _, src := range s.sources {
		if userID == "" && src.name == SourceContentAPIUnfiltered {
			continue
		}

		start := time.Now()
		records, err := src.fetch(ctx, userID)
		elapsed := time.Since(start)

		if err == nil {
			observability.RecordHistoryAttempt(ctx, s.metrics, src.name, "success")
			logger.Debug().Str("source", src.name).Int("count", len(records)).Dur("elapsed", elapsed).
				Msg("History loaded")
			if src.name != SourceSnapshot {
				s.saveSnapshot(ctx, userID, records)
			}
			return records, nil
		}

		outcome := "failure"
		if errors.Is(err, providers.ErrCacheMiss) {
			outcome = "miss"
		}
		observability.RecordHistoryAttempt(ctx, s.metrics, src.name, outcome)
		logger.Warn().Err(err).Str("source", src.name).Dur("elapsed", elapsed).
			Msg("History source failed")

		if firstErr == nil {
			firstErr = err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, apperrors.NewExternalError("failed to load prediction history", firstErr)
}

// Refresh reloads the listing held by the service. When refreshes overlap,
// only the latest one updates the listing; earlier ones return ErrSuperseded.
func (s *HistoryService) Refresh(ctx context.Context, userID string) ([]*entities.Prediction, error) {
	ctx, ticket := s.gate.Begin(ctx)
	records, err := s.List(ctx, userID)

	err = ticket.Finish(err, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.current = records
		s.loaded = time.Now()
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Current returns the listing from the last completed refresh
func (s *HistoryService) Current() ([]*entities.Prediction, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entities.Prediction, len(s.current))
	copy(out, s.current)
	return out, s.loaded
}

// Get retrieves a prediction by ID
func (s *HistoryService) Get(ctx context.Context, id string) (*entities.Prediction, error) {
	if id == "" {
		return nil, apperrors.NewValidationError("prediction id is required")
	}
	return s.repo.GetByID(ctx, id)
}

func (s *HistoryService) fetchFiltered(ctx context.Context, userID string) ([]*entities.Prediction, error) {
	if userID == "" {
		return s.repo.ListAll(ctx)
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *HistoryService) fetchUnfiltered(ctx context.Context, userID string) ([]*entities.Prediction, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*entities.Prediction, 0, len(all))
	for _, p := range all {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *HistoryService) fetchSnapshot(ctx context.Context, userID string) ([]*entities.Prediction, error) {
	if s.cache == nil {
		return nil, providers.ErrCacheMiss
	}
	data, err := s.cache.Get(ctx, snapshotKey(userID))
	if err != nil {
		if errors.Is(err, providers.ErrCacheMiss) {
			observability.RecordCacheMiss(ctx, s.metrics, snapshotKeyPrefix)
		}
		return nil, err
	}
	observability.RecordCacheHit(ctx, s.metrics, snapshotKeyPrefix)

	var records []*entities.Prediction
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *HistoryService) saveSnapshot(ctx context.Context, userID string, records []*entities.Prediction) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(records)
	if err == nil {
		err = s.cache.Set(ctx, snapshotKey(userID), data, snapshotTTL)
	}
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("Failed to save history snapshot")
	}
}

func snapshotKey(userID string) string {
	if userID == "" {
		userID = allUsersKey
	}
	return snapshotKeyPrefix + userID
}
