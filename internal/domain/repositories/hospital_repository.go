package repositories

import (
	"context"

	"github.com/zatekoja/woundtrack/internal/domain/entities"
	"github.com/zatekoja/woundtrack/pkg/geo"
)

// HospitalRepository defines read access to the hospital directory
type HospitalRepository interface {
	// All returns every record in directory order
	All(ctx context.Context) ([]*entities.Hospital, error)

	// GetByID retrieves a hospital by ID
	GetByID(ctx context.Context, id string) (*entities.Hospital, error)

	// Candidates returns records that may lie within radiusMiles of center,
	// in directory order. The result may include records outside the radius.
	Candidates(ctx context.Context, center geo.Point, radiusMiles float64) ([]*entities.Hospital, error)
}

// HospitalSearchRepository defines free-text hospital search (e.g. Typesense)
type HospitalSearchRepository interface {
	// Search returns the IDs of hospitals matching query within radiusMiles of center
	Search(ctx context.Context, params HospitalSearchParams) ([]string, error)

	// Index upserts hospitals into the search backend
	Index(ctx context.Context, hospitals []*entities.Hospital) error
}

// HospitalSearchParams defines parameters for hospital search
type HospitalSearchParams struct {
	Query       string
	Center      geo.Point
	RadiusMiles float64
	Limit       int
}
