package events

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/woundtrack/internal/domain/entities"
	"github.com/zatekoja/woundtrack/internal/domain/providers"
)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("event bus closed")

// MemoryEventBus delivers events within one process
type MemoryEventBus struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan *entities.PredictionEvent]struct{}
	closed      bool
}

// NewMemoryEventBus creates an in-process event bus
func NewMemoryEventBus() *MemoryEventBus {
	return &MemoryEventBus{subscribers: make(map[string]map[chan *entities.PredictionEvent]struct{})}
}

var _ providers.EventBus = (*MemoryEventBus)(nil)

// Publish delivers event to current subscribers. Full subscribers miss it.
func (b *MemoryEventBus) Publish(ctx context.Context, channel string, event *entities.PredictionEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}

	for subscriber := range b.subscribers[channel] {
		select {
		case subscriber <- event:
		default:
			log.Warn().Str("channel", channel).Str("event_id", event.ID).Msg("Subscriber full, event skipped")
		}
	}
	return nil
}

// Subscribe returns a channel that is closed when ctx is done
func (b *MemoryEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.PredictionEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}

	eventChan := make(chan *entities.PredictionEvent, 16)
	if b.subscribers[channel] == nil {
		b.subscribers[channel] = make(map[chan *entities.PredictionEvent]struct{})
	}
	b.subscribers[channel][eventChan] = struct{}{}

	go func() {
		<-ctx.Done()
		b.remove(channel, eventChan)
	}()
	return eventChan, nil
}

func (b *MemoryEventBus) remove(channel string, eventChan chan *entities.PredictionEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subscribers := b.subscribers[channel]
	if _, ok := subscribers[eventChan]; !ok {
		return
	}
	delete(subscribers, eventChan)
	close(eventChan)
	if len(subscribers) == 0 {
		delete(b.subscribers, channel)
	}
}

// Close closes every subscription
func (b *MemoryEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for channel, subscribers := range b.subscribers {
		for subscriber := range subscribers {
			close(subscriber)
		}
		delete(b.subscribers, channel)
	}
	return nil
}
