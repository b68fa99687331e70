// Package geo extracts geographic points from nested query-result documents.
// Source data carries coordinates under several competing conventions; the
// extractor tries a fixed-priority list of typed strategies per entity and
// keeps the first match whose coordinates are in range. Entities without a
// recognizable, valid location are silently excluded.
package geo

// Latitude and longitude bounds for accepted coordinates.
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// Node is a geographically placed entity. IDs live in their own namespace,
// separate from graph node ids, so a map view and a graph view of the same
// result never collide.
type Node struct {
	ID    string         `json:"id"`
	Label string         `json:"label"`
	Lat   float64        `json:"lat"`
	Lng   float64        `json:"lng"`
	Type  string         `json:"type,omitempty"`
	Color string         `json:"color"`
	Raw   map[string]any `json:"raw,omitempty"`
}

// Edge is a relationship between two geo nodes. Both endpoints are always
// present in the accepted geo node set.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label"`
}

// Model is the extracted geographic view of a query result.
type Model struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// validCoords reports whether a (lat, lng) pair is inside range.
func validCoords(lat, lng float64) bool {
	return lat >= MinLatitude && lat <= MaxLatitude &&
		lng >= MinLongitude && lng <= MaxLongitude
}
