package projects

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func f(v float64) *float64 { return &v }

func TestDefaultDocument(t *testing.T) {
	doc := DefaultDocument()

	assert.Equal(t, 0.0, doc.Latitude)
	assert.Equal(t, 0.0, doc.Longitude)
	assert.Equal(t, 15.0, doc.Zoom)
	assert.NotNil(t, doc.Polygons)
	assert.Empty(t, doc.Polygons)
}

func TestMergeDocumentSuppliedKeysWin(t *testing.T) {
	doc := MergeDocument(DefaultDocument(), DocumentPatch{
		Latitude: f(54.687),
		Zoom:     f(18),
	})

	assert.Equal(t, 54.687, doc.Latitude)
	assert.Equal(t, 18.0, doc.Zoom)
	// absent keys keep their value
	assert.Equal(t, 0.0, doc.Longitude)
	assert.Empty(t, doc.Polygons)
}

func TestMergeDocumentReplacesPolygonsWholesale(t *testing.T) {
	existing := DefaultDocument()
	existing.Polygons = []Polygon{
		{ID: "p-old-1", HeightData: DefaultHeightData()},
		{ID: "p-old-2", HeightData: DefaultHeightData()},
	}

	replacement := []Polygon{{ID: "p-new", HeightData: DefaultHeightData()}}
	doc := MergeDocument(existing, DocumentPatch{Polygons: &replacement})

	assert.Len(t, doc.Polygons, 1)
	assert.Equal(t, "p-new", doc.Polygons[0].ID)
}

func TestMergeDocumentEmptyPatchIsNoop(t *testing.T) {
	existing := Document{Latitude: 1, Longitude: 2, Zoom: 3, Polygons: []Polygon{{ID: "p-1"}}}

	doc := MergeDocument(existing, DocumentPatch{})

	assert.Equal(t, existing, doc)
}

func TestMergeHeightDataSubfields(t *testing.T) {
	hd := HeightData{
		BaseHeight:          2.5,
		VertexHeights:       map[string]float64{"0": 1.0, "1": 1.5},
		StableVertexHeights: map[string]float64{"0": 1.0},
	}

	merged := MergeHeightData(hd, HeightPatch{
		VertexHeights: map[string]float64{"2": 3.0},
	})

	// only the supplied subfield changes
	assert.Equal(t, 2.5, merged.BaseHeight)
	assert.Equal(t, map[string]float64{"2": 3.0}, merged.VertexHeights)
	assert.Equal(t, map[string]float64{"0": 1.0}, merged.StableVertexHeights)
}

func TestMergeHeightDataBaseHeightZeroIsExplicit(t *testing.T) {
	hd := HeightData{BaseHeight: 4.0}

	merged := MergeHeightData(hd, HeightPatch{BaseHeight: f(0)})

	assert.Equal(t, 0.0, merged.BaseHeight)
}
