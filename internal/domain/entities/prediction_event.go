package entities

import (
	"time"

	"github.com/google/uuid"
)

// PredictionEventType names what happened to a prediction
type PredictionEventType string

const (
	PredictionEventSaved PredictionEventType = "prediction_saved"
)

// PredictionEvent tells listeners that a user's history changed
type PredictionEvent struct {
	ID             string              `json:"id"`
	EventType      PredictionEventType `json:"event_type"`
	UserID         string              `json:"user_id"`
	PredictionID   string              `json:"prediction_id"`
	PredictedClass string              `json:"predicted_class"`
	Confidence     float64             `json:"confidence"`
	UrgencyLevel   string              `json:"urgency_level,omitempty"`
	Timestamp      time.Time           `json:"timestamp"`
}

// NewPredictionSavedEvent creates the event for a stored prediction
func NewPredictionSavedEvent(p *Prediction) *PredictionEvent {
	return &PredictionEvent{
		ID:             uuid.NewString(),
		EventType:      PredictionEventSaved,
		UserID:         p.UserID,
		PredictionID:   p.ID,
		PredictedClass: p.PredictedClass,
		Confidence:     p.Confidence,
		UrgencyLevel:   p.UrgencyLevel,
		Timestamp:      time.Now().UTC(),
	}
}
