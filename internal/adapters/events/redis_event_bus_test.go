package events

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/woundtrack/internal/domain/entities"
	"github.com/zatekoja/woundtrack/internal/domain/providers"
	redisclient "github.com/zatekoja/woundtrack/internal/infrastructure/clients/redis"
)

func liveRedisBus(t *testing.T) *RedisEventBus {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, rdb.Ping(context.Background()).Err())
	bus := NewRedisEventBus(redisclient.NewClientFrom(rdb))
	t.Cleanup(func() {
		assert.NoError(t, bus.Close())
		_ = rdb.Close()
	})
	return bus
}

func TestRedisEventBus_PublishFailure(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()
	bus := NewRedisEventBus(redisclient.NewClientFrom(rdb))
	defer bus.Close()

	event := entities.NewPredictionSavedEvent(&entities.Prediction{ID: "1", UserID: "7"})
	err := bus.Publish(context.Background(), providers.PredictionChannel("7"), event)
	assert.ErrorContains(t, err, "failed to publish event")
}

func TestRedisEventBus_DeliversToChannelSubscribers(t *testing.T) {
	bus := liveRedisBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	userID := uuid.NewString()
	mine, err := bus.Subscribe(ctx, providers.PredictionChannel(userID))
	require.NoError(t, err)
	theirs, err := bus.Subscribe(ctx, providers.PredictionChannel(uuid.NewString()))
	require.NoError(t, err)

	event := entities.NewPredictionSavedEvent(&entities.Prediction{ID: "1", UserID: userID, PredictedClass: "healthy"})

	// The subscription is confirmed asynchronously; publish until it is live.
	var got *entities.PredictionEvent
	require.Eventually(t, func() bool {
		if bus.Publish(ctx, providers.PredictionChannel(userID), event) != nil {
			return false
		}
		select {
		case got = <-mine:
			return true
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, "1", got.PredictionID)
	assert.Equal(t, entities.PredictionEventSaved, got.EventType)

	select {
	case <-theirs:
		t.Fatal("event leaked to another user's channel")
	default:
	}
}

func TestRedisEventBus_UnsubscribesOnCancel(t *testing.T) {
	bus := liveRedisBus(t)
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := bus.Subscribe(ctx, providers.PredictionChannel(uuid.NewString()))
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription not closed")
	}
}
