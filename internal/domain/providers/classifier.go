package providers

import (
	"context"
	"errors"

	"github.com/zatekoja/woundtrack/internal/domain/entities"
)

// Classifier errors. Implementations wrap these so callers can tell a bad
// answer from a service that is not taking requests.
var (
	ErrMalformedClassification = errors.New("malformed classifier response")
	ErrClassifierUnavailable   = errors.New("classifier unavailable")
)

// Classifier sends wound photos to the inference service
type Classifier interface {
	// Classify returns the predicted condition for one image
	Classify(ctx context.Context, image *entities.ImageUpload) (*entities.Classification, error)

	// Health returns the status reported by the service
	Health(ctx context.Context) (string, error)
}
