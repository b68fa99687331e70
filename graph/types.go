// Package graph builds a typed node/edge model from the arbitrarily nested
// JSON documents a query endpoint returns. Entities are objects carrying the
// reserved "uid" field; they may nest under any key, as single objects or
// arrays, and may reference each other cyclically. The builder extracts a
// deduplicated graph from such documents without ever failing: malformed
// input simply yields an empty model.
package graph

import "fmt"

// Reserved keys that mark graph entities in a result document.
const (
	// UIDKey is the identifier field naming a graph entity.
	UIDKey = "uid"
	// TypeKey is the type tag naming an entity's declared type(s).
	TypeKey = "dgraph.type"
)

// Position is a 2D layout coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a single graph entity extracted from a result document.
type Node struct {
	ID       string         `json:"id"`
	Label    string         `json:"label"`
	Type     string         `json:"type,omitempty"`
	Color    string         `json:"color"`
	Position *Position      `json:"position,omitempty"`
	Raw      map[string]any `json:"raw,omitempty"`
}

// Edge is a directed relationship between two extracted nodes. Label is the
// result-document key the child was nested under.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label"`
}

// EdgeID builds the composite edge key for a (source, target, label) triple.
func EdgeID(source, target, label string) string {
	return fmt.Sprintf("%s-%s-%s", source, target, label)
}

// Model is the extracted graph. Nodes are keyed by entity identifier; every
// edge references node ids present in Nodes and composite edge keys are
// unique.
type Model struct {
	Nodes map[string]*Node `json:"nodes"`
	Edges []Edge           `json:"edges"`
}

// NewModel returns an empty graph model.
func NewModel() *Model {
	return &Model{
		Nodes: make(map[string]*Node),
		Edges: []Edge{},
	}
}

// NodeCount returns the number of extracted nodes.
func (m *Model) NodeCount() int {
	return len(m.Nodes)
}

// EdgeCount returns the number of extracted edges.
func (m *Model) EdgeCount() int {
	return len(m.Edges)
}
