package content

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/zatekoja/woundtrack/internal/domain/entities"
	"github.com/zatekoja/woundtrack/internal/domain/repositories"
	"github.com/zatekoja/woundtrack/internal/infrastructure/clients/contentapi"
	apperrors "github.com/zatekoja/woundtrack/pkg/errors"
	"github.com/zatekoja/woundtrack/pkg/retry"
)

// PredictionAdapter stores predictions in the content API
type PredictionAdapter struct {
	client         contentapi.Client
	mediaOrigin    string
	extendedFields bool
	readRetry      retry.Config
}

// PredictionAdapterOptions configures the adapter
type PredictionAdapterOptions struct {
	// BaseURL resolves relative media URLs
	BaseURL string
	// ExtendedFields persists urgency level, hospital flag and probabilities
	ExtendedFields bool
	ReadRetry      *retry.Config
}

// NewPredictionAdapter creates a prediction repository over the content API
func NewPredictionAdapter(client contentapi.Client, opts PredictionAdapterOptions) *PredictionAdapter {
	readRetry := retry.ReadConfig()
	if opts.ReadRetry != nil {
		readRetry = *opts.ReadRetry
	}
	return &PredictionAdapter{
		client:         client,
		mediaOrigin:    origin(opts.BaseURL),
		extendedFields: opts.ExtendedFields,
		readRetry:      readRetry,
	}
}

var _ repositories.PredictionRepository = (*PredictionAdapter)(nil)

// Create persists a prediction. It is never retried.
func (a *PredictionAdapter) Create(ctx context.Context, p *entities.Prediction) (*entities.Prediction, error) {
	if p == nil {
		return nil, apperrors.NewValidationError("prediction is required")
	}
	if p.Image.IsZero() {
		return nil, apperrors.NewValidationError("prediction has no image reference")
	}

	input := contentapi.PredictionInput{
		Prediction:           p.PredictedClass,
		PredictionConfidence: p.Confidence,
		Recommendations:      p.Recommendations.Joined(),
		Image:                contentapi.ID(p.Image.ID),
		User:                 contentapi.ID(p.UserID),
	}
	if a.extendedFields {
		input.UrgencyLevel = p.UrgencyLevel
		input.RequiresHospital = p.RequiresHospital
		input.Probabilities = p.Probabilities
	}

	entity, err := a.client.CreatePrediction(ctx, input)
	if err != nil {
		return nil, mapError(err, "failed to save prediction")
	}

	stored, err := a.toPrediction(entity)
	if err != nil {
		return nil, mapError(fmt.Errorf("%w: %v", contentapi.ErrMalformedResponse, err), "failed to save prediction")
	}

	// Create responses are not populated; keep what the caller sent.
	if stored.Image.IsZero() {
		stored.Image = p.Image
	}
	if stored.UserID == "" {
		stored.UserID = p.UserID
	}
	if len(stored.Recommendations) == 0 {
		stored.Recommendations = p.Recommendations.Clone()
	}
	if stored.UrgencyLevel == "" {
		stored.UrgencyLevel = p.UrgencyLevel
	}
	if stored.RequiresHospital == nil {
		stored.RequiresHospital = p.RequiresHospital
	}
	if stored.Probabilities == nil {
		stored.Probabilities = p.Probabilities
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = p.CreatedAt
	}
	return stored, nil
}

// GetByID retrieves a prediction by ID
func (a *PredictionAdapter) GetByID(ctx context.Context, id string) (*entities.Prediction, error) {
	var entity *contentapi.Entity
	err := retry.Do(ctx, a.readRetry, func(ctx context.Context) error {
		var err error
		entity, err = a.client.GetPrediction(ctx, id)
		return retryable(err)
	})
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("failed to load prediction %s", id))
	}

	p, err := a.toPrediction(entity)
	if err != nil {
		return nil, mapError(fmt.Errorf("%w: %v", contentapi.ErrMalformedResponse, err), "failed to load prediction")
	}
	return p, nil
}

// ListByUser retrieves a user's predictions using the server-side filter
func (a *PredictionAdapter) ListByUser(ctx context.Context, userID string) ([]*entities.Prediction, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.NewValidationError("user id is required")
	}
	return a.list(ctx, contentapi.ListPredictionsRequest{UserID: userID})
}

// ListAll retrieves every visible prediction
func (a *PredictionAdapter) ListAll(ctx context.Context) ([]*entities.Prediction, error) {
	return a.list(ctx, contentapi.ListPredictionsRequest{})
}

func (a *PredictionAdapter) list(ctx context.Context, req contentapi.ListPredictionsRequest) ([]*entities.Prediction, error) {
	var rows []contentapi.Entity
	err := retry.Do(ctx, a.readRetry, func(ctx context.Context) error {
		var err error
		rows, err = a.client.ListPredictions(ctx, req)
		return retryable(err)
	})
	if err != nil {
		return nil, mapError(err, "failed to list predictions")
	}

	out := make([]*entities.Prediction, 0, len(rows))
	for i := range rows {
		p, err := a.toPrediction(&rows[i])
		if err != nil {
			return nil, mapError(fmt.Errorf("%w: record %s: %v", contentapi.ErrMalformedResponse, rows[i].ID, err), "failed to list predictions")
		}
		out = append(out, p)
	}
	return out, nil
}

func (a *PredictionAdapter) toPrediction(entity *contentapi.Entity) (*entities.Prediction, error) {
	var attrs contentapi.PredictionAttributes
	if err := json.Unmarshal(entity.Attributes, &attrs); err != nil {
		return nil, err
	}

	p := &entities.Prediction{
		ID:               string(entity.ID),
		UserID:           attrs.User.ID(),
		PredictedClass:   attrs.Prediction,
		Confidence:       attrs.PredictionConfidence,
		Recommendations:  entities.Recommendations{},
		UrgencyLevel:     attrs.UrgencyLevel,
		RequiresHospital: attrs.RequiresHospital,
		CreatedAt:        attrs.CreatedAt,
	}

	if len(attrs.Recommendations) > 0 {
		if err := json.Unmarshal(attrs.Recommendations, &p.Recommendations); err != nil {
			return nil, err
		}
	}
	p.Probabilities = decodeProbabilities(attrs.Probabilities)

	if attrs.Image.Entity != nil {
		p.Image.ID = string(attrs.Image.Entity.ID)
		var media contentapi.MediaAttributes
		if err := json.Unmarshal(attrs.Image.Entity.Attributes, &media); err == nil {
			p.Image.URL = a.resolveMediaURL(media.URL)
		}
	}
	return p, nil
}

// decodeProbabilities accepts an object or a JSON-encoded string of one.
func decodeProbabilities(raw json.RawMessage) map[string]float64 {
	if len(raw) == 0 {
		return nil
	}
	var probs map[string]float64
	if err := json.Unmarshal(raw, &probs); err == nil {
		return probs
	}
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		if err := json.Unmarshal([]byte(encoded), &probs); err == nil {
			return probs
		}
	}
	return nil
}

func (a *PredictionAdapter) resolveMediaURL(u string) string {
	if u == "" || a.mediaOrigin == "" || !strings.HasPrefix(u, "/") {
		return u
	}
	return a.mediaOrigin + u
}

// origin returns scheme://host of an API base URL.
func origin(base string) string {
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}
