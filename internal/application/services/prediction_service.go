package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/zatekoja/woundtrack/internal/domain/entities"
	"github.com/zatekoja/woundtrack/internal/domain/providers"
	"github.com/zatekoja/woundtrack/internal/domain/repositories"
	"github.com/zatekoja/woundtrack/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/woundtrack/pkg/errors"
)

// MaxImageBytes caps a single wound photo.
const MaxImageBytes = 10 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/heic": true,
}

// PredictionService runs the capture flow: upload, classify, persist
type PredictionService struct {
	images      repositories.ImageStore
	classifier  providers.Classifier
	predictions repositories.PredictionRepository
	events      providers.EventBus

	inFlight atomic.Bool
}

// NewPredictionService creates a new prediction service
func NewPredictionService(images repositories.ImageStore, classifier providers.Classifier, predictions repositories.PredictionRepository) *PredictionService {
	return &PredictionService{
		images:      images,
		classifier:  classifier,
		predictions: predictions,
	}
}

// WithEventBus announces saved predictions on bus
func (s *PredictionService) WithEventBus(bus providers.EventBus) *PredictionService {
	s.events = bus
	return s
}

// Submit uploads the photo, classifies it and stores the result.
//
// When only the final save fails, the unsaved prediction is returned together
// with a PERSISTENCE error so the caller can still show the classification.
// A second Submit while one is running is rejected with CONFLICT.
func (s *PredictionService) Submit(ctx context.Context, image *entities.ImageUpload, userID string) (*entities.Prediction, error) {
	if err := validateImage(image); err != nil {
		return nil, err
	}
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.NewValidationError("user id is required")
	}

	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, apperrors.NewConflictError("a submission is already in progress")
	}
	defer s.inFlight.Store(false)

	ctx, span := observability.StartSpan(ctx, "PredictionService.Submit")
	defer span.End()

	logger := observability.LoggerFromContext(ctx).With().Str("user_id", userID).Logger()

	ref, err := s.images.Upload(ctx, image)
	if err != nil {
		observability.RecordError(span, err)
		logger.Error().Err(err).Msg("Image upload failed")
		return nil, err
	}
	logger.Debug().Str("image_id", ref.ID).Msg("Image uploaded")

	classification, err := s.classifier.Classify(ctx, image)
	if err != nil {
		observability.RecordError(span, err)
		logger.Error().Err(err).Str("image_id", ref.ID).Msg("Classification failed")
		return nil, classificationError(err)
	}

	prediction, err := entities.NewPrediction(userID, ref, classification)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build prediction", err)
	}

	stored, err := s.predictions.Create(ctx, prediction)
	if err != nil {
		observability.RecordError(span, err)
		logger.Error().Err(err).
			Str("image_id", ref.ID).
			Str("predicted_class", prediction.PredictedClass).
			Msg("Prediction could not be saved")
		return prediction, apperrors.NewPersistenceError("prediction was classified but not saved", err)
	}

	logger.Info().
		Str("prediction_id", stored.ID).
		Str("predicted_class", stored.PredictedClass).
		Str("confidence", stored.ConfidenceLabel()).
		Msg("Prediction saved")

	if s.events != nil {
		event := entities.NewPredictionSavedEvent(stored)
		if err := s.events.Publish(ctx, providers.PredictionChannel(stored.UserID), event); err != nil {
			logger.Warn().Err(err).Str("prediction_id", stored.ID).Msg("Failed to publish prediction event")
		}
	}
	return stored, nil
}

// Health reports the classifier status
func (s *PredictionService) Health(ctx context.Context) (string, error) {
	status, err := s.classifier.Health(ctx)
	if err != nil {
		return "", apperrors.NewExternalError("classifier health check failed", err)
	}
	return status, nil
}

func validateImage(image *entities.ImageUpload) error {
	if image == nil || len(image.Data) == 0 {
		return apperrors.NewValidationError("image is required")
	}
	if len(image.Data) > MaxImageBytes {
		return apperrors.NewValidationError(fmt.Sprintf("image exceeds %d MB", MaxImageBytes>>20))
	}

	contentType := image.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(image.Data)
		image.ContentType = contentType
	}
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	if !allowedImageTypes[strings.ToLower(contentType)] {
		return apperrors.NewValidationError(fmt.Sprintf("unsupported image type %q", contentType))
	}
	return nil
}

func classificationError(err error) error {
	switch {
	case apperrors.TypeOf(err) != "":
		return err
	case errors.Is(err, providers.ErrMalformedClassification):
		return &apperrors.AppError{Type: apperrors.ErrorTypeValidation, Message: "classifier returned a malformed response", Err: err}
	case errors.Is(err, providers.ErrClassifierUnavailable):
		return apperrors.NewUnavailableError("classifier is unavailable, try again later", err)
	default:
		return apperrors.NewExternalError("classification failed", err)
	}
}
