// Package schema provides a tolerant parser for raw DQL schema text.
// The parser turns the schema endpoint's plain-text response into a typed
// model consumed by autocomplete and the schema diagram view. It never
// fails: fragments it cannot understand are skipped and the model holds
// whatever parsed cleanly.
package schema

// Model is the parsed representation of a schema text.
type Model struct {
	Types      []TypeDef      `json:"types"`
	Predicates []PredicateDef `json:"predicates"`
}

// TypeDef represents a single "type Name { ... }" block.
type TypeDef struct {
	Name   string     `json:"name"`
	Fields []FieldDef `json:"fields"`
}

// FieldDef represents one field line inside a type block. Type holds the
// type expression verbatim, including [Type] list notation. A field listed
// without a type keeps an empty Type.
type FieldDef struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Directives []string `json:"directives,omitempty"`
}

// PredicateDef represents a bare top-level predicate declaration,
// e.g. "name: string @index(exact) .".
type PredicateDef struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Directives []string `json:"directives,omitempty"`
}

// TypeNames returns the declared type names in declaration order.
func (m *Model) TypeNames() []string {
	names := make([]string, 0, len(m.Types))
	for _, t := range m.Types {
		names = append(names, t.Name)
	}
	return names
}

// FieldNames returns every field name across all types, in declaration
// order, without deduplication across types.
func (m *Model) FieldNames() []string {
	var names []string
	for _, t := range m.Types {
		for _, f := range t.Fields {
			names = append(names, f.Name)
		}
	}
	return names
}
