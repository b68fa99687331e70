// Package autocomplete resolves editor suggestions for DQL query text.
// Given the text and a cursor offset, the resolver classifies the context
// immediately before the cursor with ordered pattern checks, then filters
// a context-specific suggestion source by the partial word being typed.
package autocomplete

import (
	"regexp"
	"sort"
	"strings"

	"github.com/johnymontana/dgraph-client-app-sub001/schema"
)

// Context classifies what the user is typing at the cursor.
type Context int

const (
	// ContextPredicate suggests keywords and schema field names.
	ContextPredicate Context = iota
	// ContextDirective suggests directives, after '@'.
	ContextDirective
	// ContextFunction suggests functions and values, after ':'.
	ContextFunction
	// ContextType suggests scalar types, after the "type" keyword.
	ContextType
)

// String returns the context name for logging.
func (c Context) String() string {
	switch c {
	case ContextDirective:
		return "directive"
	case ContextFunction:
		return "function"
	case ContextType:
		return "type"
	default:
		return "predicate"
	}
}

// Suggestion is one ranked completion candidate.
type Suggestion struct {
	Label string `json:"label"`
	Kind  string `json:"kind"`
}

// Ordered pattern checks over the text before the cursor; first match wins.
var (
	directiveRe = regexp.MustCompile(`@(\w*)$`)
	functionRe  = regexp.MustCompile(`:\s*(\w*)$`)
	typeDeclRe  = regexp.MustCompile(`type\s+(\w*)$`)
	wordRe      = regexp.MustCompile(`(\w*)$`)
)

// Resolver produces suggestion lists from query text and a schema model.
type Resolver struct{}

// NewResolver creates a suggestion resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Classify inspects the text immediately before the cursor and returns the
// detected context together with the partial word being completed.
func (r *Resolver) Classify(text string, cursor int) (Context, string) {
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(text) {
		cursor = len(text)
	}
	before := text[:cursor]

	if m := directiveRe.FindStringSubmatch(before); m != nil {
		return ContextDirective, m[1]
	}
	if m := functionRe.FindStringSubmatch(before); m != nil {
		return ContextFunction, m[1]
	}
	if m := typeDeclRe.FindStringSubmatch(before); m != nil {
		return ContextType, m[1]
	}
	if m := wordRe.FindStringSubmatch(before); m != nil {
		return ContextPredicate, m[1]
	}
	return ContextPredicate, ""
}

// Resolve returns the ranked suggestions for the cursor position. The
// schema model may be nil; predicate context then falls back to keywords
// alone.
func (r *Resolver) Resolve(text string, cursor int, model *schema.Model) []Suggestion {
	ctx, partial := r.Classify(text, cursor)

	var source []Suggestion
	switch ctx {
	case ContextDirective:
		source = labeled(directiveNames, "directive")
	case ContextFunction:
		source = labeled(functionNames, "function")
	case ContextType:
		source = labeled(scalarTypeNames, "type")
	default:
		source = labeled(keywordNames, "keyword")
		if model != nil {
			seen := make(map[string]bool)
			for _, s := range source {
				seen[s.Label] = true
			}
			for _, name := range model.FieldNames() {
				if !seen[name] {
					seen[name] = true
					source = append(source, Suggestion{Label: name, Kind: "predicate"})
				}
			}
		}
	}

	return filterAndRank(source, partial)
}

// labeled wraps a static table into suggestions.
func labeled(names []string, kind string) []Suggestion {
	out := make([]Suggestion, 0, len(names))
	for _, n := range names {
		out = append(out, Suggestion{Label: n, Kind: kind})
	}
	return out
}

// filterAndRank keeps case-insensitive substring matches of the partial
// word, prefix matches first, alphabetical within each band. An empty
// partial keeps the whole source.
func filterAndRank(source []Suggestion, partial string) []Suggestion {
	needle := strings.ToLower(strings.TrimPrefix(partial, "@"))

	matched := make([]Suggestion, 0, len(source))
	for _, s := range source {
		hay := strings.ToLower(strings.TrimPrefix(s.Label, "@"))
		if needle == "" || strings.Contains(hay, needle) {
			matched = append(matched, s)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a := strings.ToLower(strings.TrimPrefix(matched[i].Label, "@"))
		b := strings.ToLower(strings.TrimPrefix(matched[j].Label, "@"))
		aPfx := strings.HasPrefix(a, needle)
		bPfx := strings.HasPrefix(b, needle)
		if aPfx != bPfx {
			return aPfx
		}
		return a < b
	})
	return matched
}
