package entities

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ImageRef identifies an uploaded wound photo in the content store
type ImageRef struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// IsZero reports whether no upload has been recorded.
func (r ImageRef) IsZero() bool {
	return r.ID == ""
}

// Prediction is a stored wound classification result
type Prediction struct {
	ID              string          `json:"id,omitempty"`
	UserID          string          `json:"user_id"`
	Image           ImageRef        `json:"image"`
	PredictedClass  string          `json:"predicted_class"`
	Confidence      float64         `json:"confidence"`
	Recommendations Recommendations `json:"recommendations"`

	// Carried from the classifier. Persisted only when the content schema
	// has room for them.
	UrgencyLevel     string             `json:"urgency_level,omitempty"`
	RequiresHospital *bool              `json:"requires_hospital,omitempty"`
	Probabilities    map[string]float64 `json:"probabilities,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewPrediction builds an unsaved prediction. Both an image reference and a
// classification are required.
func NewPrediction(userID string, image ImageRef, c *Classification) (*Prediction, error) {
	if image.IsZero() {
		return nil, errors.New("prediction requires an uploaded image reference")
	}
	if c == nil {
		return nil, errors.New("prediction requires a classification")
	}

	requiresHospital := c.RequiresHospital
	return &Prediction{
		UserID:           userID,
		Image:            image,
		PredictedClass:   c.PredictedClass,
		Confidence:       c.Confidence,
		Recommendations:  c.Recommendations.Clone(),
		UrgencyLevel:     c.UrgencyLevel,
		RequiresHospital: &requiresHospital,
		Probabilities:    c.Probabilities,
		CreatedAt:        time.Now().UTC(),
	}, nil
}

// ConfidenceLabel renders the confidence as a percentage with one decimal,
// e.g. 0.83 -> "83.0%".
func (p *Prediction) ConfidenceLabel() string {
	return fmt.Sprintf("%.1f%%", p.Confidence*100)
}

// Persisted reports whether the content API has stored the record.
func (p *Prediction) Persisted() bool {
	return p.ID != ""
}

// MarshalJSON adds the display label so UI shells don't format it themselves.
func (p Prediction) MarshalJSON() ([]byte, error) {
	type plain Prediction
	return json.Marshal(struct {
		plain
		ConfidenceLabel string `json:"confidence_label"`
	}{plain(p), p.ConfidenceLabel()})
}

// Recommendations is the single list form of classifier advice.
type Recommendations []string

// ParseRecommendations splits a pipe- or newline-delimited string. Items are
// trimmed and empty items dropped.
func ParseRecommendations(s string) Recommendations {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '|' || r == '\n' || r == '\r'
	})
	out := make(Recommendations, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// UnmarshalJSON accepts an array of strings, a delimited string or null.
func (r *Recommendations) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*r = Recommendations{}
		return nil
	}

	if strings.HasPrefix(trimmed, "\"") {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("recommendations: %w", err)
		}
		*r = ParseRecommendations(s)
		return nil
	}

	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("recommendations must be a string or a list of strings: %w", err)
	}
	out := make(Recommendations, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*r = out
	return nil
}

// MarshalJSON always writes a list, never null.
func (r Recommendations) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(r))
}

var delimiterReplacer = strings.NewReplacer("|", "/", "\r\n", " ", "\n", " ", "\r", " ")

// Joined returns the pipe-delimited form stored by the content API. Delimiters
// inside an item are replaced and blank items dropped, so ParseRecommendations
// gives back one entry per item.
func (r Recommendations) Joined() string {
	parts := make([]string, 0, len(r))
	for _, item := range r {
		if item = strings.TrimSpace(delimiterReplacer.Replace(item)); item != "" {
			parts = append(parts, item)
		}
	}
	return strings.Join(parts, "|")
}

// Clone returns an independent copy.
func (r Recommendations) Clone() Recommendations {
	return append(Recommendations{}, r...)
}
