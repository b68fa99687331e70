package graph

// Builder extracts a graph Model from an untyped query-result value.
//
// The extraction runs two passes over the same structure. The first pass
// registers every object bearing the identifier field, keyed by identifier,
// so repeat and cyclic occurrences collapse to one node. The second pass
// re-walks the structure to find all parent/child identifier pairs, because
// a node's outgoing relationships can appear under occurrences the first
// pass already collapsed.
type Builder struct {
	palette []string
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithPalette overrides the color palette used for type coloring.
func WithPalette(palette []string) BuilderOption {
	return func(b *Builder) {
		b.palette = palette
	}
}

// NewBuilder creates a result graph builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildModel extracts a graph model from a decoded query result. The input
// may be an object or an array nested to any shape; anything else, including
// nil, produces an empty model. BuildModel never returns an error: documents
// with no identifiers anywhere simply yield an empty graph.
func (b *Builder) BuildModel(result any) *Model {
	model := NewModel()
	colors := NewColorAssignerWithPalette(b.palette)

	// Pass 1: node discovery.
	VisitEntities(result, func(uid string, obj map[string]any) {
		typeName := EntityType(obj)
		model.Nodes[uid] = &Node{
			ID:    uid,
			Label: EntityLabel(obj, uid),
			Type:  typeName,
			Color: colors.Assign(typeName),
			Raw:   scalarFields(obj),
		}
	})

	// Pass 2: edge discovery. Pairs arrive deduplicated and self-loop free;
	// endpoints are checked against the registered node set.
	VisitEntityPairs(result, func(parent, child, key string) {
		if model.Nodes[parent] == nil || model.Nodes[child] == nil {
			return
		}
		model.Edges = append(model.Edges, Edge{
			ID:     EdgeID(parent, child, key),
			Source: parent,
			Target: child,
			Label:  key,
		})
	})

	return model
}

// scalarFields copies an entity's scalar attributes for display. Nested
// objects and arrays are represented as nodes and edges, not raw payload,
// and keeping them here would re-embed the whole subtree per node.
func scalarFields(obj map[string]any) map[string]any {
	raw := make(map[string]any)
	for k, v := range obj {
		switch v.(type) {
		case map[string]any, []any:
			if k == TypeKey {
				raw[k] = v
			}
		default:
			raw[k] = v
		}
	}
	return raw
}
