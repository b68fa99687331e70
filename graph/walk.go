package graph

import (
	"encoding/json"
	"sort"
	"strconv"
)

// MaxTraversalDepth bounds recursion over result documents. Decoded JSON is
// acyclic, but the traversal also accepts hand-built values, so every walk
// carries a depth bound in addition to its visited-set guard.
const MaxTraversalDepth = 100

// labelKeys are checked in order when deriving a node label.
var labelKeys = []string{"name", "title"}

// labelTruncateLen is how much of the identifier survives as the fallback label.
const labelTruncateLen = 8

// entityUID extracts the reserved identifier field from an object, or ""
// when the object is not a graph entity.
func entityUID(obj map[string]any) string {
	switch v := obj[UIDKey].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// EntityType returns the entity's declared type: the first element when the
// type tag is array-valued, the value itself when it is a plain string.
func EntityType(obj map[string]any) string {
	switch v := obj[TypeKey].(type) {
	case string:
		return v
	case []any:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

// EntityLabel derives a display label: a name/title field when present,
// otherwise a truncated identifier.
func EntityLabel(obj map[string]any, uid string) string {
	for _, key := range labelKeys {
		if s, ok := obj[key].(string); ok && s != "" {
			return s
		}
	}
	if len(uid) > labelTruncateLen {
		return uid[:labelTruncateLen]
	}
	return uid
}

// sortedKeys returns the object's keys in sorted order so traversal, and
// therefore first-seen color assignment, is deterministic for a given input.
func sortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// VisitEntities walks a result document depth-first and calls visit exactly
// once per distinct identifier. Repeat occurrences of an identifier are still
// descended into, because a later occurrence may carry an expansion the first
// one lacked; only an identifier already on the current path stops the walk,
// which is what terminates cyclic input.
func VisitEntities(root any, visit func(uid string, obj map[string]any)) {
	seen := make(map[string]bool)
	onPath := make(map[string]bool)

	var walk func(v any, depth int)
	walk = func(v any, depth int) {
		if depth > MaxTraversalDepth {
			return
		}
		switch val := v.(type) {
		case []any:
			for _, item := range val {
				walk(item, depth+1)
			}
		case map[string]any:
			uid := entityUID(val)
			if uid != "" {
				if onPath[uid] {
					return
				}
				if !seen[uid] {
					seen[uid] = true
					visit(uid, val)
				}
				onPath[uid] = true
			}
			for _, k := range sortedKeys(val) {
				walk(val[k], depth+1)
			}
			if uid != "" {
				delete(onPath, uid)
			}
		}
	}
	walk(root, 0)
}

// VisitEntityPairs walks a result document and calls visit once for every
// distinct parent-to-child identifier pair nested under a key. Repeat
// occurrences of an entity, and repeat (parent, child, key) triples, are
// still descended into so that every expansion contributes its
// relationships. Self-references are skipped, an identifier already on the
// current path ends the walk there, and the depth bound backstops
// pathological shapes.
func VisitEntityPairs(root any, visit func(parent, child, key string)) {
	seen := make(map[string]bool)
	onPath := make(map[string]bool)

	var walk func(v any, parentUID, key string, depth int)
	walk = func(v any, parentUID, key string, depth int) {
		if depth > MaxTraversalDepth {
			return
		}
		switch val := v.(type) {
		case []any:
			for _, item := range val {
				walk(item, parentUID, key, depth+1)
			}
		case map[string]any:
			uid := entityUID(val)
			if uid != "" && parentUID != "" && key != "" && uid != parentUID {
				id := EdgeID(parentUID, uid, key)
				if !seen[id] {
					seen[id] = true
					visit(parentUID, uid, key)
				}
			}
			if uid != "" {
				if onPath[uid] {
					return
				}
				onPath[uid] = true
			}
			next := parentUID
			if uid != "" {
				next = uid
			}
			for _, k := range sortedKeys(val) {
				if k == UIDKey || k == TypeKey {
					continue
				}
				walk(val[k], next, k, depth+1)
			}
			if uid != "" {
				delete(onPath, uid)
			}
		}
	}
	walk(root, "", "", 0)
}
