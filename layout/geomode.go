package layout

import "github.com/johnymontana/dgraph-client-app-sub001/geo"

// GeoPlacement is a validated geographic coordinate pair for one geo node.
// No screen-space projection happens here; that is the map view's job, and
// coincident points are deliberately not jittered.
type GeoPlacement struct {
	ID  string  `json:"id"`
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// GeoPlacements returns the coordinate pairs of a geo model, re-checked
// against range. The geo extractor already validates on the way in; the
// re-check keeps the invariant local so hand-built models cannot smuggle
// out-of-range points to the map view.
func GeoPlacements(m *geo.Model) []GeoPlacement {
	if m == nil {
		return []GeoPlacement{}
	}
	out := make([]GeoPlacement, 0, len(m.Nodes))
	for _, n := range m.Nodes {
		if n.Lat < geo.MinLatitude || n.Lat > geo.MaxLatitude ||
			n.Lng < geo.MinLongitude || n.Lng > geo.MaxLongitude {
			continue
		}
		out = append(out, GeoPlacement{ID: n.ID, Lat: n.Lat, Lng: n.Lng})
	}
	return out
}
