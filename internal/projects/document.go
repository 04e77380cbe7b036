package projects

// Document is the semi-structured payload embedded in a project row: the map
// viewport plus the drawn roof polygons. It is persisted as a single jsonb
// column and always written back whole.
type Document struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Zoom      float64   `json:"zoom"`
	Polygons  []Polygon `json:"polygons"`
}

// Coordinate is one vertex of a roof polygon.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Polygon is a roof outline embedded in a project document. IDs carry a "p-"
// prefix; edge IDs use "e-" so the two namespaces never mix.
type Polygon struct {
	ID              string       `json:"id"`
	Coordinates     []Coordinate `json:"coordinates"`
	TiltAngle       float64      `json:"tilt_angle"`
	BottomEdgeIndex *int         `json:"bottom_edge_index"`
	HeightData      HeightData   `json:"height_data"`
	Edges           []Edge       `json:"edges"`
}

// Edge is a legacy per-edge record kept for older documents; new polygons
// start with an empty list.
type Edge struct {
	ID         string  `json:"id"`
	StartIndex int     `json:"start_index"`
	EndIndex   int     `json:"end_index"`
	Height     float64 `json:"height"`
}

// HeightData holds the refinable height model of a polygon.
type HeightData struct {
	BaseHeight          float64            `json:"baseHeight"`
	VertexHeights       map[string]float64 `json:"vertexHeights"`
	StableVertexHeights map[string]float64 `json:"stableVertexHeights"`
}

// DefaultHeightData returns the height model a fresh polygon starts with.
func DefaultHeightData() HeightData {
	return HeightData{
		BaseHeight:          0,
		VertexHeights:       map[string]float64{},
		StableVertexHeights: map[string]float64{},
	}
}

// DefaultDocument returns the viewport a fresh project starts with.
func DefaultDocument() Document {
	return Document{
		Latitude:  0.0,
		Longitude: 0.0,
		Zoom:      15,
		Polygons:  []Polygon{},
	}
}

// DocumentPatch is a partial document: nil fields were absent from the
// request and leave the stored value untouched.
type DocumentPatch struct {
	Latitude  *float64   `json:"latitude"`
	Longitude *float64   `json:"longitude"`
	Zoom      *float64   `json:"zoom"`
	Polygons  *[]Polygon `json:"polygons"`
}

// MergeDocument applies a shallow top-level merge: supplied keys win, absent
// keys keep their value. Polygons are replaced wholesale when present, never
// deep-merged.
func MergeDocument(doc Document, patch DocumentPatch) Document {
	if patch.Latitude != nil {
		doc.Latitude = *patch.Latitude
	}
	if patch.Longitude != nil {
		doc.Longitude = *patch.Longitude
	}
	if patch.Zoom != nil {
		doc.Zoom = *patch.Zoom
	}
	if patch.Polygons != nil {
		doc.Polygons = *patch.Polygons
	}
	return doc
}

// HeightPatch is a partial height model: nil subfields stay untouched.
type HeightPatch struct {
	BaseHeight          *float64           `json:"baseHeight"`
	VertexHeights       map[string]float64 `json:"vertexHeights"`
	StableVertexHeights map[string]float64 `json:"stableVertexHeights"`
}

// MergeHeightData merges supplied subfields into an existing height model.
// Vertex maps are replaced per-subfield, not merged entry by entry.
func MergeHeightData(hd HeightData, patch HeightPatch) HeightData {
	if patch.BaseHeight != nil {
		hd.BaseHeight = *patch.BaseHeight
	}
	if patch.VertexHeights != nil {
		hd.VertexHeights = patch.VertexHeights
	}
	if patch.StableVertexHeights != nil {
		hd.StableVertexHeights = patch.StableVertexHeights
	}
	return hd
}
