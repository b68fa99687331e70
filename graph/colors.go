package graph

// DefaultNodeColor is the neutral color for entities with no type tag.
const DefaultNodeColor = "#718096"

// defaultPalette is the fixed ordered palette used for type coloring.
var defaultPalette = []string{
	"#1f77b4",
	"#ff7f0e",
	"#2ca02c",
	"#d62728",
	"#9467bd",
	"#8c564b",
	"#e377c2",
	"#7f7f7f",
	"#bcbd22",
	"#17becf",
}

// ColorAssigner maps type names to palette colors deterministically within
// one build pass. The first type seen takes the next unused palette slot;
// later encounters of the same type reuse it. An assigner is a per-build
// value, never shared: a type may receive a different color on a different
// query result, and that is intentional.
type ColorAssigner struct {
	palette  []string
	next     int
	assigned map[string]string
}

// NewColorAssigner creates an assigner over the default palette.
func NewColorAssigner() *ColorAssigner {
	return NewColorAssignerWithPalette(defaultPalette)
}

// NewColorAssignerWithPalette creates an assigner over a custom palette.
// An empty palette falls back to the default.
func NewColorAssignerWithPalette(palette []string) *ColorAssigner {
	if len(palette) == 0 {
		palette = defaultPalette
	}
	return &ColorAssigner{
		palette:  palette,
		assigned: make(map[string]string),
	}
}

// Assign returns the color for typeName, assigning the next palette slot on
// first encounter. An empty type name gets the neutral default.
func (a *ColorAssigner) Assign(typeName string) string {
	if typeName == "" {
		return DefaultNodeColor
	}
	if c, ok := a.assigned[typeName]; ok {
		return c
	}
	c := a.palette[a.next%len(a.palette)]
	a.next++
	a.assigned[typeName] = c
	return c
}

// Assignments returns a copy of the type-to-color map built so far.
func (a *ColorAssigner) Assignments() map[string]string {
	out := make(map[string]string, len(a.assigned))
	for k, v := range a.assigned {
		out[k] = v
	}
	return out
}
