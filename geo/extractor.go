package geo

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/johnymontana/dgraph-client-app-sub001/graph"
)

// locationKeys are object keys a nested coordinate convention may hide under.
var locationKeys = []string{"location", "loc", "geo", "position"}

// coordinateKeys are object keys a [lng, lat] array may hide under.
var coordinateKeys = []string{"coordinates", "coords"}

// strategy is one typed coordinate-detection convention. Strategies are
// tried in fixed priority order and the first match wins, even when its
// coordinates then fail range validation.
type strategy struct {
	name    string
	extract func(obj map[string]any) (lat, lng float64, ok bool)
}

var strategies = []strategy{
	{"direct", extractDirect},
	{"nested", extractNested},
	{"coordinate_array", extractCoordinateArray},
	{"nested_coordinate_array", extractNestedCoordinateArray},
}

// matchPoint runs the strategy chain over an entity object.
func matchPoint(obj map[string]any) (lat, lng float64, ok bool) {
	for _, s := range strategies {
		if lat, lng, ok = s.extract(obj); ok {
			return lat, lng, true
		}
	}
	return 0, 0, false
}

// extractDirect matches lat/lng or latitude/longitude fields on the object.
func extractDirect(obj map[string]any) (float64, float64, bool) {
	pairs := [][2]string{{"lat", "lng"}, {"latitude", "longitude"}}
	for _, p := range pairs {
		lat, okLat := toFloat(obj[p[0]])
		lng, okLng := toFloat(obj[p[1]])
		if okLat && okLng {
			return lat, lng, true
		}
	}
	return 0, 0, false
}

// extractNested matches the direct convention one level down, under a
// location-like key.
func extractNested(obj map[string]any) (float64, float64, bool) {
	for _, key := range locationKeys {
		if inner, ok := obj[key].(map[string]any); ok {
			if lat, lng, ok := extractDirect(inner); ok {
				return lat, lng, true
			}
		}
	}
	return 0, 0, false
}

// extractCoordinateArray matches a GeoJSON-style [lng, lat] two-element
// array under a coordinates-like key.
func extractCoordinateArray(obj map[string]any) (float64, float64, bool) {
	for _, key := range coordinateKeys {
		if arr, ok := obj[key].([]any); ok && len(arr) == 2 {
			lng, okLng := toFloat(arr[0])
			lat, okLat := toFloat(arr[1])
			if okLat && okLng {
				return lat, lng, true
			}
		}
	}
	return 0, 0, false
}

// extractNestedCoordinateArray matches the coordinate-array convention one
// level down, under a location-like key.
func extractNestedCoordinateArray(obj map[string]any) (float64, float64, bool) {
	for _, key := range locationKeys {
		if inner, ok := obj[key].(map[string]any); ok {
			if lat, lng, ok := extractCoordinateArray(inner); ok {
				return lat, lng, true
			}
		}
	}
	return 0, 0, false
}

// toFloat coerces the numeric shapes a decoded result may carry.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// GeoID synthesizes a geo node id from an entity identifier. Geo ids form
// their own namespace so they never collide with graph node ids.
func GeoID(uid string) string {
	return "geo-" + uid
}

// Extractor builds a geographic Model from an untyped query-result value.
type Extractor struct {
	palette []string
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithPalette overrides the color palette used for type coloring.
func WithPalette(palette []string) ExtractorOption {
	return func(e *Extractor) {
		e.palette = palette
	}
}

// NewExtractor creates a geo extractor.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractModel walks a decoded query result and returns every entity with a
// recognizable, in-range location, plus the relationships between accepted
// entities. It never returns an error; results without geographic content
// yield an empty model.
func (e *Extractor) ExtractModel(result any) *Model {
	model := &Model{
		Nodes: []Node{},
		Edges: []Edge{},
	}
	colors := graph.NewColorAssignerWithPalette(e.palette)
	geoIDs := make(map[string]string)

	graph.VisitEntities(result, func(uid string, obj map[string]any) {
		lat, lng, ok := matchPoint(obj)
		if !ok || !validCoords(lat, lng) {
			return
		}
		id := GeoID(uid)
		geoIDs[uid] = id
		typeName := graph.EntityType(obj)
		model.Nodes = append(model.Nodes, Node{
			ID:    id,
			Label: graph.EntityLabel(obj, uid),
			Lat:   lat,
			Lng:   lng,
			Type:  typeName,
			Color: colors.Assign(typeName),
			Raw:   rawFields(obj),
		})
	})

	// Same parent/child discovery as the graph builder, restricted to
	// entities that made it into the geo node set.
	graph.VisitEntityPairs(result, func(parent, child, key string) {
		src, okSrc := geoIDs[parent]
		dst, okDst := geoIDs[child]
		if !okSrc || !okDst {
			return
		}
		model.Edges = append(model.Edges, Edge{
			ID:     graph.EdgeID(src, dst, key),
			Source: src,
			Target: dst,
			Label:  key,
		})
	})

	return model
}

// HasGeoData is the cheap presence check used to decide whether a map view
// is worth offering. It inspects only the first top-level array and only
// the four conventions at one nesting level; it deliberately does not
// recurse the way full extraction does.
func HasGeoData(result any) bool {
	for _, item := range firstTopLevelArray(result) {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if lat, lng, ok := matchPoint(obj); ok && validCoords(lat, lng) {
			return true
		}
	}
	return false
}

// firstTopLevelArray returns the result itself when it is an array, or the
// first array-valued member of a top-level object, scanning keys in sorted
// order for determinism.
func firstTopLevelArray(result any) []any {
	switch v := result.(type) {
	case []any:
		return v
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if arr, ok := v[k].([]any); ok {
				return arr
			}
		}
	}
	return nil
}

// rawFields copies the entity's scalar attributes for display.
func rawFields(obj map[string]any) map[string]any {
	raw := make(map[string]any)
	for k, v := range obj {
		switch v.(type) {
		case map[string]any, []any:
		default:
			raw[k] = v
		}
	}
	return raw
}
