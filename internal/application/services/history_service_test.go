package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/woundtrack/internal/adapters/cache"
	"github.com/zatekoja/woundtrack/internal/application/services"
	"github.com/zatekoja/woundtrack/internal/domain/entities"
	apperrors "github.com/zatekoja/woundtrack/pkg/errors"
)

func record(id, userID string, created time.Time) *entities.Prediction {
	return &entities.Prediction{
		ID:              id,
		UserID:          userID,
		Image:           entities.ImageRef{ID: "img-" + id},
		PredictedClass:  "healthy",
		Confidence:      0.9,
		Recommendations: entities.Recommendations{"Keep dry"},
		CreatedAt:       created,
	}
}

func predictionIDs(ps []*entities.Prediction) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

var day = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func TestHistoryService_ListUsesFilteredSource(t *testing.T) {
	repo := &mockPredictionRepository{}
	repo.On("ListByUser", mock.Anything, "7").
		Return([]*entities.Prediction{record("2", "7", day.Add(time.Hour)), record("1", "7", day)}, nil).Once()

	svc := services.NewHistoryService(repo, nil, nil)
	got, err := svc.List(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "1"}, predictionIDs(got))
	repo.AssertNotCalled(t, "ListAll", mock.Anything)
}

func TestHistoryService_FallsBackToUnfilteredListing(t *testing.T) {
	repo := &mockPredictionRepository{}
	repo.On("ListByUser", mock.Anything, "7").Return(nil, apperrors.NewValidationError("invalid filter")).Once()
	repo.On("ListAll", mock.Anything).Return([]*entities.Prediction{
		record("3", "8", day.Add(2*time.Hour)),
		record("2", "7", day.Add(time.Hour)),
		record("1", "7", day),
	}, nil).Once()

	got, err := services.NewHistoryService(repo, nil, nil).List(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "1"}, predictionIDs(got))
}

func TestHistoryService_FallsBackToSnapshot(t *testing.T) {
	ctx := context.Background()
	snapshots := cache.NewMemoryAdapter(16)
	repo := &mockPredictionRepository{}
	svc := services.NewHistoryService(repo, snapshots, nil)

	repo.On("ListByUser", mock.Anything, "7").Return([]*entities.Prediction{record("1", "7", day)}, nil).Once()
	_, err := svc.List(ctx, "7")
	require.NoError(t, err)

	offline := errors.New("dial tcp: connection refused")
	repo.On("ListByUser", mock.Anything, "7").Return(nil, offline).Once()
	repo.On("ListAll", mock.Anything).Return(nil, offline).Once()

	got, err := svc.List(ctx, "7")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, entities.Recommendations{"Keep dry"}, got[0].Recommendations)
	assert.True(t, day.Equal(got[0].CreatedAt))
}

func TestHistoryService_AllSourcesFailReturnsFirstError(t *testing.T) {
	first := errors.New("filtered listing failed")
	repo := &mockPredictionRepository{}
	repo.On("ListByUser", mock.Anything, "7").Return(nil, first)
	repo.On("ListAll", mock.Anything).Return(nil, errors.New("unfiltered listing failed"))

	_, err := services.NewHistoryService(repo, cache.NewMemoryAdapter(4), nil).List(context.Background(), "7")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
	assert.ErrorIs(t, err, first)
}

func TestHistoryService_EmptyUserListsEverything(t *testing.T) {
	repo := &mockPredictionRepository{}
	repo.On("ListAll", mock.Anything).
		Return([]*entities.Prediction{record("2", "8", day), record("1", "7", day)}, nil).Once()

	got, err := services.NewHistoryService(repo, nil, nil).List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "1"}, predictionIDs(got))
	repo.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything)
}

func TestHistoryService_Get(t *testing.T) {
	repo := &mockPredictionRepository{}
	repo.On("GetByID", mock.Anything, "1").Return(record("1", "7", day), nil)
	repo.On("GetByID", mock.Anything, "404").Return(nil, apperrors.NewNotFoundError("prediction not found"))

	svc := services.NewHistoryService(repo, nil, nil)
	got, err := svc.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "1", got.ID)

	_, err = svc.Get(context.Background(), "404")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))

	_, err = svc.Get(context.Background(), "")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestHistoryService_RefreshOnlyLatestWins(t *testing.T) {
	repo := &mockPredictionRepository{}
	started := make(chan struct{})

	repo.On("ListByUser", mock.Anything, "7").Run(func(args mock.Arguments) {
		close(started)
		<-args.Get(0).(context.Context).Done()
	}).Return(nil, context.Canceled).Once()
	repo.On("ListByUser", mock.Anything, "7").
		Return([]*entities.Prediction{record("fresh", "7", day)}, nil).Once()

	svc := services.NewHistoryService(repo, nil, nil)

	stale := make(chan error, 1)
	go func() {
		_, err := svc.Refresh(context.Background(), "7")
		stale <- err
	}()

	<-started
	got, err := svc.Refresh(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, predictionIDs(got))

	assert.ErrorIs(t, <-stale, services.ErrSuperseded)

	current, loaded := svc.Current()
	assert.Equal(t, []string{"fresh"}, predictionIDs(current))
	assert.False(t, loaded.IsZero())
	repo.AssertNotCalled(t, "ListAll", mock.Anything)
}
