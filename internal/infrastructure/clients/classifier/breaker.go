package classifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"github.com/zatekoja/woundtrack/internal/domain/entities"
	"github.com/zatekoja/woundtrack/internal/domain/providers"
)

// BreakerSettings tunes the circuit breaker
type BreakerSettings struct {
	// ConsecutiveFailures opens the breaker
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before a trial call
	OpenTimeout time.Duration
}

// DefaultBreakerSettings returns settings sized for interactive captures.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		ConsecutiveFailures: 3,
		OpenTimeout:         30 * time.Second,
	}
}

// BreakerClassifier fails fast while the inference service is down
type BreakerClassifier struct {
	next providers.Classifier
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerClassifier wraps next with a circuit breaker
func NewBreakerClassifier(next providers.Classifier, settings BreakerSettings) *BreakerClassifier {
	if settings.ConsecutiveFailures == 0 {
		settings.ConsecutiveFailures = DefaultBreakerSettings().ConsecutiveFailures
	}
	threshold := settings.ConsecutiveFailures

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "classifier",
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("classifier circuit breaker state changed")
		},
	})

	return &BreakerClassifier{next: next, cb: cb}
}

var _ providers.Classifier = (*BreakerClassifier)(nil)

// rejected carries a 4xx answer through the breaker without counting it as
// a service failure.
type rejected struct {
	err error
}

// Classify delegates through the breaker. A refused call is reported as
// providers.ErrClassifierUnavailable.
func (b *BreakerClassifier) Classify(ctx context.Context, image *entities.ImageUpload) (*entities.Classification, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		c, err := b.next.Classify(ctx, image)
		if err != nil && (IsClientError(err) || ctx.Err() != nil) {
			return rejected{err: err}, nil
		}
		return c, err
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", providers.ErrClassifierUnavailable, err)
	}
	if err != nil {
		return nil, err
	}
	if r, ok := result.(rejected); ok {
		return nil, r.err
	}
	return result.(*entities.Classification), nil
}

// Health bypasses the breaker so health checks can observe recovery.
func (b *BreakerClassifier) Health(ctx context.Context) (string, error) {
	return b.next.Health(ctx)
}

// State returns the breaker state name.
func (b *BreakerClassifier) State() string {
	return b.cb.State().String()
}
