package directory

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/zatekoja/woundtrack/internal/domain/entities"
	"github.com/zatekoja/woundtrack/internal/domain/repositories"
	apperrors "github.com/zatekoja/woundtrack/pkg/errors"
	"github.com/zatekoja/woundtrack/pkg/geo"
)

//go:embed data/hospitals.json
var defaultHospitals []byte

// StaticRepository serves a load-once hospital directory from memory
type StaticRepository struct {
	mu        sync.RWMutex
	hospitals []*entities.Hospital
	byID      map[string]int
	index     *spatialIndex
}

// NewStaticRepository indexes the given hospitals. Directory order is the
// order of the slice.
func NewStaticRepository(hospitals []*entities.Hospital) (*StaticRepository, error) {
	r := &StaticRepository{}
	if err := r.Replace(hospitals); err != nil {
		return nil, err
	}
	return r, nil
}

var _ repositories.HospitalRepository = (*StaticRepository)(nil)

// LoadHospitals reads a JSON array of hospitals from path, or the bundled
// directory when path is empty.
func LoadHospitals(path string) ([]*entities.Hospital, error) {
	data := defaultHospitals
	if strings.TrimSpace(path) != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read hospitals file: %w", err)
		}
	}

	var hospitals []*entities.Hospital
	if err := json.Unmarshal(data, &hospitals); err != nil {
		return nil, fmt.Errorf("failed to decode hospitals: %w", err)
	}
	return hospitals, nil
}

// Replace swaps the directory contents atomically.
func (r *StaticRepository) Replace(hospitals []*entities.Hospital) error {
	byID := make(map[string]int, len(hospitals))
	points := make([]geo.Point, len(hospitals))
	snapshot := make([]*entities.Hospital, len(hospitals))

	for i, h := range hospitals {
		if h == nil {
			return fmt.Errorf("hospital at position %d is null", i)
		}
		if h.ID == "" {
			return fmt.Errorf("hospital at position %d has no id", i)
		}
		if _, dup := byID[h.ID]; dup {
			return fmt.Errorf("duplicate hospital id %q", h.ID)
		}
		if !h.Location.Valid() {
			return fmt.Errorf("hospital %q has invalid coordinates", h.ID)
		}
		byID[h.ID] = i
		points[i] = h.Location.Point()
		snapshot[i] = h
	}

	index := newSpatialIndex(points)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.hospitals = snapshot
	r.byID = byID
	r.index = index
	return nil
}

// All returns every record in directory order
func (r *StaticRepository) All(ctx context.Context) ([]*entities.Hospital, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]*entities.Hospital(nil), r.hospitals...), nil
}

// GetByID retrieves a hospital by ID
func (r *StaticRepository) GetByID(ctx context.Context, id string) (*entities.Hospital, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pos, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("hospital %s not found", id))
	}
	return r.hospitals[pos], nil
}

// Candidates returns the records inside the radius bounding box, in directory
// order. Boxes that wrap a pole or the antimeridian return every record.
func (r *StaticRepository) Candidates(ctx context.Context, center geo.Point, radiusMiles float64) ([]*entities.Hospital, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	positions, ok, err := r.index.within(center, radiusMiles)
	if err != nil || !ok {
		return append([]*entities.Hospital(nil), r.hospitals...), nil
	}

	out := make([]*entities.Hospital, 0, len(positions))
	for _, pos := range positions {
		out = append(out, r.hospitals[pos])
	}
	return out, nil
}

// Len returns the number of records.
func (r *StaticRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hospitals)
}
