package directory

import (
	"fmt"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/zatekoja/woundtrack/pkg/geo"
)

const (
	indexDimensions  = 2
	indexMinChildren = 4
	indexMaxChildren = 16
	// Points are stored as tiny boxes; rtreego rejects zero-length sides.
	pointTolerance = 1e-9
)

// indexedHospital is the rtree entry for one directory position.
type indexedHospital struct {
	pos  int
	rect *rtreego.Rect
}

func (h *indexedHospital) Bounds() *rtreego.Rect {
	return h.rect
}

// spatialIndex maps coordinates to directory positions. It is built once per
// directory snapshot and is not safe for concurrent mutation; the repository
// guards it.
type spatialIndex struct {
	tree *rtreego.Rtree
	size int
}

func newSpatialIndex(points []geo.Point) *spatialIndex {
	items := make([]rtreego.Spatial, 0, len(points))
	for i, p := range points {
		items = append(items, &indexedHospital{
			pos:  i,
			rect: rtreego.Point{p.Latitude, p.Longitude}.ToRect(pointTolerance),
		})
	}
	return &spatialIndex{
		tree: rtreego.NewTree(indexDimensions, indexMinChildren, indexMaxChildren, items...),
		size: len(points),
	}
}

// within returns the ascending directory positions whose coordinates may lie
// within radiusMiles of center. ok is false when the box cannot be expressed
// without wrapping; the caller must scan every record instead.
func (s *spatialIndex) within(center geo.Point, radiusMiles float64) (positions []int, ok bool, err error) {
	min, max, ok := geo.BoundingBox(center, radiusMiles)
	if !ok {
		return nil, false, nil
	}

	lengths := []float64{
		max.Latitude - min.Latitude + 2*pointTolerance,
		max.Longitude - min.Longitude + 2*pointTolerance,
	}
	box, err := rtreego.NewRect(rtreego.Point{min.Latitude - pointTolerance, min.Longitude - pointTolerance}, lengths)
	if err != nil {
		return nil, false, fmt.Errorf("invalid search box: %w", err)
	}

	results := s.tree.SearchIntersect(box)
	positions = make([]int, 0, len(results))
	for _, r := range results {
		if item, isHospital := r.(*indexedHospital); isHospital {
			positions = append(positions, item.pos)
		}
	}
	sort.Ints(positions)
	return positions, true, nil
}
