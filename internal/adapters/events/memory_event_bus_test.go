package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/woundtrack/internal/domain/entities"
	"github.com/zatekoja/woundtrack/internal/domain/providers"
)

func TestMemoryEventBus_DeliversToChannelSubscribers(t *testing.T) {
	bus := NewMemoryEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mine, err := bus.Subscribe(ctx, providers.PredictionChannel("7"))
	require.NoError(t, err)
	theirs, err := bus.Subscribe(ctx, providers.PredictionChannel("8"))
	require.NoError(t, err)

	event := entities.NewPredictionSavedEvent(&entities.Prediction{ID: "1", UserID: "7", PredictedClass: "healthy"})
	require.NoError(t, bus.Publish(ctx, providers.PredictionChannel("7"), event))

	select {
	case got := <-mine:
		assert.Equal(t, "1", got.PredictionID)
		assert.Equal(t, entities.PredictionEventSaved, got.EventType)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	select {
	case <-theirs:
		t.Fatal("event leaked to another user's channel")
	default:
	}
}

func TestMemoryEventBus_UnsubscribesOnCancel(t *testing.T) {
	bus := NewMemoryEventBus()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := bus.Subscribe(ctx, "predictions:7")
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription not closed")
	}
}

func TestMemoryEventBus_Close(t *testing.T) {
	bus := NewMemoryEventBus()
	ch, err := bus.Subscribe(context.Background(), "predictions:7")
	require.NoError(t, err)

	require.NoError(t, bus.Close())
	_, ok := <-ch
	assert.False(t, ok)

	assert.ErrorIs(t, bus.Publish(context.Background(), "predictions:7", &entities.PredictionEvent{}), ErrClosed)
	_, err = bus.Subscribe(context.Background(), "predictions:7")
	assert.ErrorIs(t, err, ErrClosed)
}
