// Package polygons edits the polygon list embedded in a project document.
// All operations mutate an already-loaded, ownership-verified document in
// memory; the caller persists the whole document afterward.
package polygons

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/solarplan/rooftop-backend/internal/projects"
)

var (
	ErrInvalidCoordinates = errors.New("polygon must have at least 3 points")
	ErrNilCoordinates     = errors.New("coordinates cannot be null")
	ErrNotFound           = errors.New("polygon not found")
)

// newPolygonID namespaces polygon ids with "p-" to keep them distinct from
// edge ids.
func newPolygonID() string {
	return "p-" + uuid.New().String()
}

// Add validates the outline and appends a new polygon with a fresh id,
// default height data and no edges. Returns the created polygon.
func Add(doc *projects.Document, coords []projects.Coordinate, tiltAngle float64, bottomEdgeIndex *int) (*projects.Polygon, error) {
	if coords == nil {
		return nil, ErrNilCoordinates
	}
	if len(coords) < 3 {
		return nil, ErrInvalidCoordinates
	}

	p := projects.Polygon{
		ID:              newPolygonID(),
		Coordinates:     coords,
		TiltAngle:       tiltAngle,
		BottomEdgeIndex: bottomEdgeIndex,
		HeightData:      projects.DefaultHeightData(),
		Edges:           []projects.Edge{},
	}

	doc.Polygons = append(doc.Polygons, p)
	return &doc.Polygons[len(doc.Polygons)-1], nil
}

// Find returns the polygon with the given id.
func Find(doc *projects.Document, id string) (*projects.Polygon, error) {
	for i := range doc.Polygons {
		if doc.Polygons[i].ID == id {
			return &doc.Polygons[i], nil
		}
	}
	return nil, ErrNotFound
}

// Remove filters the polygon out by id. ErrNotFound when the list length is
// unchanged.
func Remove(doc *projects.Document, id string) error {
	kept := doc.Polygons[:0]
	for _, p := range doc.Polygons {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(doc.Polygons) {
		return ErrNotFound
	}
	doc.Polygons = kept
	return nil
}

// ReplaceHeightData swaps the polygon's height model wholesale.
func ReplaceHeightData(doc *projects.Document, id string, hd projects.HeightData) error {
	p, err := Find(doc, id)
	if err != nil {
		return err
	}
	p.HeightData = hd
	return nil
}

// MergeHeights applies per-polygon subfield merges in bulk. Ids are compared
// after trimming so clients that stringify them loosely still match. Unknown
// ids are skipped without error; the returned count says how many polygons
// were actually updated.
func MergeHeights(doc *projects.Document, updates map[string]projects.HeightPatch) int {
	matched := 0
	for id, patch := range updates {
		p, err := Find(doc, strings.TrimSpace(id))
		if err != nil {
			continue
		}
		p.HeightData = projects.MergeHeightData(p.HeightData, patch)
		matched++
	}
	return matched
}
