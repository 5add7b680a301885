package repositories

import (
	"context"

	"github.com/zatekoja/woundtrack/internal/domain/entities"
)

// PredictionRepository defines the interface for prediction records
type PredictionRepository interface {
	// Create persists a prediction and returns the stored record
	Create(ctx context.Context, prediction *entities.Prediction) (*entities.Prediction, error)

	// GetByID retrieves a prediction by ID
	GetByID(ctx context.Context, id string) (*entities.Prediction, error)

	// ListByUser retrieves a user's predictions, newest first, filtered server side
	ListByUser(ctx context.Context, userID string) ([]*entities.Prediction, error)

	// ListAll retrieves every prediction visible to the caller, newest first
	ListAll(ctx context.Context) ([]*entities.Prediction, error)
}

// ImageStore stores uploaded wound photos
type ImageStore interface {
	// Upload stores the image and returns its reference
	Upload(ctx context.Context, image *entities.ImageUpload) (entities.ImageRef, error)
}
