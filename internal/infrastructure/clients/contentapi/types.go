package contentapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ID is a content API identifier. The API emits numbers; some deployments
// emit strings.
type ID string

// UnmarshalJSON accepts a JSON number or string.
func (id *ID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("id must be a number or string: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes numeric ids as numbers.
func (id ID) MarshalJSON() ([]byte, error) {
	s := string(id)
	if s != "" && strings.Trim(s, "0123456789") == "" {
		return []byte(s), nil
	}
	return json.Marshal(s)
}

// Entity is one record of a collection response. Older API versions nest the
// fields under "attributes"; newer ones inline them.
type Entity struct {
	ID         ID
	Attributes json.RawMessage
}

// UnmarshalJSON flattens both layouts to ID + Attributes.
func (e *Entity) UnmarshalJSON(data []byte) error {
	var nested struct {
		ID         ID              `json:"id"`
		Attributes json.RawMessage `json:"attributes"`
	}
	if err := json.Unmarshal(data, &nested); err != nil {
		return err
	}
	e.ID = nested.ID
	if len(nested.Attributes) > 0 && !bytes.Equal(nested.Attributes, []byte("null")) {
		e.Attributes = nested.Attributes
	} else {
		e.Attributes = append(json.RawMessage(nil), data...)
	}
	return nil
}

// Relation is a populated relation field. Both {"data":{...}} and an inlined
// object are accepted; an unpopulated relation may be a bare id.
type Relation struct {
	Entity *Entity
}

// UnmarshalJSON decodes the relation in any of its layouts.
func (r *Relation) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		r.Entity = nil
		return nil
	}
	if trimmed[0] != '{' {
		var id ID
		if err := json.Unmarshal(trimmed, &id); err != nil {
			return err
		}
		r.Entity = &Entity{ID: id, Attributes: json.RawMessage("{}")}
		return nil
	}

	var wrapped struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err == nil && len(wrapped.Data) > 0 {
		if bytes.Equal(bytes.TrimSpace(wrapped.Data), []byte("null")) {
			r.Entity = nil
			return nil
		}
		var e Entity
		if err := json.Unmarshal(wrapped.Data, &e); err != nil {
			return err
		}
		r.Entity = &e
		return nil
	}

	var e Entity
	if err := json.Unmarshal(trimmed, &e); err != nil {
		return err
	}
	r.Entity = &e
	return nil
}

// ID returns the related record id, or "" when unset.
func (r Relation) ID() string {
	if r.Entity == nil {
		return ""
	}
	return string(r.Entity.ID)
}

// Pagination is the collection paging metadata
type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
}

// CollectionResponse is the envelope of a collection GET
type CollectionResponse struct {
	Data []Entity `json:"data"`
	Meta struct {
		Pagination Pagination `json:"pagination"`
	} `json:"meta"`
}

// SingleResponse is the envelope of a single-record response
type SingleResponse struct {
	Data *Entity `json:"data"`
}

// PredictionAttributes is the stored shape of a prediction record
type PredictionAttributes struct {
	Prediction           string          `json:"prediction"`
	PredictionConfidence float64         `json:"predictionConfidence"`
	Recommendations      json.RawMessage `json:"recommendations,omitempty"`
	Image                Relation        `json:"image"`
	User                 Relation        `json:"user"`
	UrgencyLevel         string          `json:"urgencyLevel,omitempty"`
	RequiresHospital     *bool           `json:"requiresHospital,omitempty"`
	Probabilities        json.RawMessage `json:"probabilities,omitempty"`
	CreatedAt            time.Time       `json:"createdAt"`
}

// MediaAttributes is the subset of an uploaded file the client uses
type MediaAttributes struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Mime string `json:"mime"`
}

// PredictionInput is the body of a prediction create request. Relations are
// written as ids.
type PredictionInput struct {
	Prediction           string             `json:"prediction"`
	PredictionConfidence float64            `json:"predictionConfidence"`
	Recommendations      string             `json:"recommendations"`
	Image                ID                 `json:"image"`
	User                 ID                 `json:"user"`
	UrgencyLevel         string             `json:"urgencyLevel,omitempty"`
	RequiresHospital     *bool              `json:"requiresHospital,omitempty"`
	Probabilities        map[string]float64 `json:"probabilities,omitempty"`
}

// UploadedFile is one element of the upload response
type UploadedFile struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
	Mime string `json:"mime"`
}

// User is the account shape returned by the auth and users endpoints
type User struct {
	ID        ID        `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Confirmed bool      `json:"confirmed"`
	Blocked   bool      `json:"blocked"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthResponse is returned by login and register
type AuthResponse struct {
	JWT  string `json:"jwt"`
	User User   `json:"user"`
}

// ListPredictionsRequest selects prediction records
type ListPredictionsRequest struct {
	// UserID applies the server-side owner filter when set
	UserID   string
	PageSize int
}
