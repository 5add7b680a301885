package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"github.com/zatekoja/woundtrack/internal/domain/entities"
	"github.com/zatekoja/woundtrack/internal/domain/repositories"
	tsclient "github.com/zatekoja/woundtrack/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/woundtrack/pkg/geo"
)

const (
	collectionName = tsclient.HospitalsCollection
	queryBy        = "name,address,specialties"
	defaultLimit   = 50
)

// TypesenseAdapter implements hospital search using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements HospitalSearchRepository
var _ repositories.HospitalSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// Index upserts hospitals. position keeps directory order for ties.
func (a *TypesenseAdapter) Index(ctx context.Context, hospitals []*entities.Hospital) error {
	for i, h := range hospitals {
		if _, err := a.client.Client().Collection(collectionName).Documents().Upsert(ctx, hospitalDocument(h, i)); err != nil {
			return fmt.Errorf("failed to index hospital %s: %w", h.ID, err)
		}
	}
	return nil
}

// Search returns matching hospital IDs within the radius
func (a *TypesenseAdapter) Search(ctx context.Context, params repositories.HospitalSearchParams) ([]string, error) {
	q := strings.TrimSpace(params.Query)
	if q == "" {
		q = "*"
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	searchParams := &api.SearchCollectionParams{
		Q:       pointer.String(q),
		QueryBy: pointer.String(queryBy),
		PerPage: pointer.Int(limit),
	}
	if filter := geoFilter(params.Center, params.RadiusMiles); filter != "" {
		searchParams.FilterBy = pointer.String(filter)
	}

	result, err := a.client.Client().Collection(collectionName).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search hospitals: %w", err)
	}
	if result.Hits == nil {
		return []string{}, nil
	}

	ids := make([]string, 0, len(*result.Hits))
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		if id, ok := (*hit.Document)["id"].(string); ok && id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func hospitalDocument(h *entities.Hospital, position int) map[string]interface{} {
	specialties := h.Specialties
	if specialties == nil {
		specialties = []string{}
	}
	return map[string]interface{}{
		"id":          h.ID,
		"name":        h.Name,
		"address":     h.Address,
		"specialties": specialties,
		"location":    []float64{h.Location.Latitude, h.Location.Longitude},
		"position":    position,
	}
}

// geoFilter restricts results to the radius; unbounded radii are unfiltered.
func geoFilter(center geo.Point, radiusMiles float64) string {
	if radiusMiles <= 0 || geo.IsUnbounded(radiusMiles) {
		return ""
	}
	return fmt.Sprintf("location:(%f, %f, %.3f mi)", center.Latitude, center.Longitude, radiusMiles)
}
