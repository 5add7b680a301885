package services

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/zatekoja/woundtrack/internal/domain/entities"
	"github.com/zatekoja/woundtrack/internal/domain/repositories"
	"github.com/zatekoja/woundtrack/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/woundtrack/pkg/errors"
	"github.com/zatekoja/woundtrack/pkg/geo"
)

// DirectoryOptions tune directory queries
type DirectoryOptions struct {
	DefaultRadiusMiles float64
	NearestLimit       int
}

// DefaultDirectoryOptions returns the stock radius and result limit
func DefaultDirectoryOptions() DirectoryOptions {
	return DirectoryOptions{DefaultRadiusMiles: 50, NearestLimit: 10}
}

// HospitalService answers proximity and text queries over the hospital directory
type HospitalService struct {
	repo       repositories.HospitalRepository
	searchRepo repositories.HospitalSearchRepository
	opts       DirectoryOptions
}

// NewHospitalService creates a new hospital service. searchRepo is optional.
func NewHospitalService(repo repositories.HospitalRepository, searchRepo repositories.HospitalSearchRepository, opts DirectoryOptions) *HospitalService {
	defaults := DefaultDirectoryOptions()
	if opts.DefaultRadiusMiles <= 0 {
		opts.DefaultRadiusMiles = defaults.DefaultRadiusMiles
	}
	if opts.NearestLimit <= 0 {
		opts.NearestLimit = defaults.NearestLimit
	}
	return &HospitalService{repo: repo, searchRepo: searchRepo, opts: opts}
}

// Options returns the effective directory options
func (s *HospitalService) Options() DirectoryOptions {
	return s.opts
}

// Nearby returns hospitals within radiusMiles of loc, nearest first. Equal
// distances keep directory order. A zero radius keeps only hospitals at loc.
func (s *HospitalService) Nearby(ctx context.Context, loc entities.Location, radiusMiles float64) ([]*entities.Hospital, error) {
	if !loc.Valid() {
		return nil, apperrors.NewValidationError("invalid location")
	}
	if radiusMiles < 0 || math.IsNaN(radiusMiles) {
		return nil, apperrors.NewValidationError("invalid radius")
	}

	center := loc.Point()
	candidates, err := s.repo.Candidates(ctx, center, radiusMiles)
	if err != nil {
		return nil, err
	}

	unbounded := geo.IsUnbounded(radiusMiles)
	results := make([]*entities.Hospital, 0, len(candidates))
	for _, h := range candidates {
		d := geo.DistanceMiles(center, h.Location.Point())
		if !unbounded && d > radiusMiles {
			continue
		}
		results = append(results, h.WithDistance(d))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return *results[i].DistanceMiles < *results[j].DistanceMiles
	})
	return results, nil
}

// Nearest returns at most n hospitals within the default radius, nearest first
func (s *HospitalService) Nearest(ctx context.Context, loc entities.Location, n int) ([]*entities.Hospital, error) {
	results, err := s.Nearby(ctx, loc, s.opts.DefaultRadiusMiles)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(results) > n {
		results = results[:n]
	}
	return results, nil
}

// Search filters the nearest-N set by a case-insensitive substring of the
// name, address or any specialty. A blank query returns the set unfiltered.
// Backend hits only narrow the substring matches.
func (s *HospitalService) Search(ctx context.Context, loc entities.Location, query string) ([]*entities.Hospital, error) {
	nearest, err := s.Nearest(ctx, loc, s.opts.NearestLimit)
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nearest, nil
	}

	backendHits := s.backendSearch(ctx, loc, query)

	needle := strings.ToLower(query)
	results := make([]*entities.Hospital, 0, len(nearest))
	for _, h := range nearest {
		if !matches(h, needle) {
			continue
		}
		if backendHits == nil || backendHits[h.ID] {
			results = append(results, h)
		}
	}
	return results, nil
}

// GetByID retrieves a hospital by ID
func (s *HospitalService) GetByID(ctx context.Context, id string) (*entities.Hospital, error) {
	return s.repo.GetByID(ctx, id)
}

// Reindex pushes the whole directory to the search backend
func (s *HospitalService) Reindex(ctx context.Context) (int, error) {
	if s.searchRepo == nil {
		return 0, apperrors.NewUnavailableError("search backend is not configured", nil)
	}
	hospitals, err := s.repo.All(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.searchRepo.Index(ctx, hospitals); err != nil {
		return 0, apperrors.NewExternalError("failed to index hospitals", err)
	}
	return len(hospitals), nil
}

// backendSearch returns the IDs the search backend matched, or nil when
// there is no backend or it matched nothing. Backend failures degrade to
// substring matching only.
func (s *HospitalService) backendSearch(ctx context.Context, loc entities.Location, query string) map[string]bool {
	if s.searchRepo == nil {
		return nil
	}

	ids, err := s.searchRepo.Search(ctx, repositories.HospitalSearchParams{
		Query:       query,
		Center:      loc.Point(),
		RadiusMiles: s.opts.DefaultRadiusMiles,
		Limit:       s.opts.NearestLimit * 5,
	})
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("query", query).
			Msg("Search backend failed, using in-memory matching")
		return nil
	}
	if len(ids) == 0 {
		return nil
	}

	hits := make(map[string]bool, len(ids))
	for _, id := range ids {
		hits[id] = true
	}
	return hits
}

func matches(h *entities.Hospital, needle string) bool {
	if strings.Contains(strings.ToLower(h.Name), needle) || strings.Contains(strings.ToLower(h.Address), needle) {
		return true
	}
	for _, sp := range h.Specialties {
		if strings.Contains(strings.ToLower(sp), needle) {
			return true
		}
	}
	return false
}
