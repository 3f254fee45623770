package domain

import "fmt"

// Point is one labeled WGS-84 location in a point set.
type Point struct {
	FID string
	Lon float64
	Lat float64
}

// PointSet is an ordered, immutable collection of points with unique FIDs.
// It is built once per pipeline invocation by the loader and consumed by the
// extraction and download stages.
type PointSet struct {
	IDColumn string // source identity column, "FID" or "grid_id"

	points []Point
	byFID  map[string]Point
}

// NewPointSet builds a PointSet, rejecting duplicate FIDs.
func NewPointSet(idColumn string, points []Point) (*PointSet, error) {
	byFID := make(map[string]Point, len(points))
	for _, p := range points {
		if _, ok := byFID[p.FID]; ok {
			return nil, fmt.Errorf("duplicate point identity %q", p.FID)
		}
		byFID[p.FID] = p
	}
	return &PointSet{IDColumn: idColumn, points: points, byFID: byFID}, nil
}

// Len returns the number of points.
func (ps *PointSet) Len() int { return len(ps.points) }

// Points returns the points in load order. Callers must not mutate the slice.
func (ps *PointSet) Points() []Point { return ps.points }

// Lookup returns the point with the given FID.
func (ps *PointSet) Lookup(fid string) (Point, bool) {
	p, ok := ps.byFID[fid]
	return p, ok
}
