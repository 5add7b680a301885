package entities

import (
	"errors"
	"fmt"
)

// Classification is the classifier response for one image
type Classification struct {
	PredictedClass   string             `json:"predicted_class"`
	Confidence       float64            `json:"confidence"`
	UrgencyLevel     string             `json:"urgency_level"`
	RequiresHospital bool               `json:"requires_hospital"`
	Recommendations  Recommendations    `json:"recommendations"`
	Probabilities    map[string]float64 `json:"probabilities,omitempty"`
}

// Validate rejects responses missing the fields a prediction is built from.
func (c *Classification) Validate() error {
	if c.PredictedClass == "" {
		return errors.New("missing predicted_class")
	}
	if c.Confidence < 0 || c.Confidence > 1 {
		return fmt.Errorf("confidence %v outside [0, 1]", c.Confidence)
	}
	return nil
}

// ImageUpload is a captured photo on its way to the content store
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}
