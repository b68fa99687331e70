package autocomplete

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnymontana/dgraph-client-app-sub001/schema"
)

func labels(suggestions []Suggestion) []string {
	out := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, s.Label)
	}
	return out
}

func personSchema(t *testing.T) *schema.Model {
	t.Helper()
	return schema.NewParser().Parse(`
type Person {
  name: string
  friend: [Person]
  age: int
}
type Film {
  title: string
  released: datetime
}
`)
}

func TestClassifyOrderedPatterns(t *testing.T) {
	r := NewResolver()

	tests := []struct {
		name        string
		text        string
		wantContext Context
		wantPartial string
	}{
		{"directive", "q(func: has(name)) @cas", ContextDirective, "cas"},
		{"directive empty", "q(func: has(name)) @", ContextDirective, ""},
		{"function after colon", "q(func: any", ContextFunction, "any"},
		{"function with space", "q(func:  eq", ContextFunction, "eq"},
		{"type declaration", "type Per", ContextType, "Per"},
		{"predicate fallback", "{ q { nam", ContextPredicate, "nam"},
		{"empty text", "", ContextPredicate, ""},
		// '@' earlier in the text does not trip the directive check when
		// the cursor-adjacent text no longer matches.
		{"directive not adjacent", "q @filter(eq(name, x)) { fri", ContextPredicate, "fri"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, partial := r.Classify(tt.text, len(tt.text))
			assert.Equal(t, tt.wantContext, ctx, "context")
			assert.Equal(t, tt.wantPartial, partial, "partial word")
		})
	}
}

func TestClassifyRespectsCursorOffset(t *testing.T) {
	r := NewResolver()
	text := "q(func: eq) @filter"

	// Cursor right after "eq": function context, not the later directive.
	ctx, partial := r.Classify(text, len("q(func: eq"))
	assert.Equal(t, ContextFunction, ctx)
	assert.Equal(t, "eq", partial)
}

func TestClassifyClampsCursor(t *testing.T) {
	r := NewResolver()

	ctx, _ := r.Classify("abc", 999)
	assert.Equal(t, ContextPredicate, ctx)

	ctx, partial := r.Classify("abc", -5)
	assert.Equal(t, ContextPredicate, ctx)
	assert.Empty(t, partial)
}

func TestResolveDirectiveSuggestions(t *testing.T) {
	r := NewResolver()

	got := labels(r.Resolve("q @fil", len("q @fil"), nil))

	require.NotEmpty(t, got)
	assert.Contains(t, got, "@filter")
	for _, l := range got {
		assert.True(t, strings.HasPrefix(l, "@"))
	}
}

func TestResolveFunctionSuggestions(t *testing.T) {
	r := NewResolver()

	got := labels(r.Resolve("q(func: ofterms", len("q(func: ofterms"), nil))

	// Substring, not prefix-only: "ofterms" matches both *ofterms functions.
	assert.Contains(t, got, "allofterms")
	assert.Contains(t, got, "anyofterms")
}

func TestResolveTypeSuggestions(t *testing.T) {
	r := NewResolver()

	got := labels(r.Resolve("type str", len("type str"), nil))

	assert.Contains(t, got, "string")
	assert.NotContains(t, got, "@filter")
}

func TestResolvePredicateUnionsSchemaFields(t *testing.T) {
	r := NewResolver()
	model := personSchema(t)

	got := labels(r.Resolve("{ q { ", len("{ q { "), model))

	// Keywords and every schema field name.
	assert.Contains(t, got, "filter")
	assert.Contains(t, got, "name")
	assert.Contains(t, got, "friend")
	assert.Contains(t, got, "title")
	assert.Contains(t, got, "released")
}

func TestResolvePredicateWithoutSchema(t *testing.T) {
	r := NewResolver()

	got := labels(r.Resolve("{ q { fir", len("{ q { fir"), nil))

	assert.Contains(t, got, "first")
	assert.NotContains(t, got, "name")
}

func TestResolveCaseInsensitiveSubstring(t *testing.T) {
	r := NewResolver()
	model := personSchema(t)

	got := labels(r.Resolve("{ q { RIEN", len("{ q { RIEN"), model))

	assert.Equal(t, []string{"friend"}, got)
}

func TestResolveRanksPrefixMatchesFirst(t *testing.T) {
	r := NewResolver()
	model := personSchema(t)

	got := labels(r.Resolve("{ q { re", len("{ q { re"), model))

	// "released" is a prefix match and must come before substring-only hits.
	require.NotEmpty(t, got)
	assert.Equal(t, "released", got[0])
}

func TestResolveNoMatches(t *testing.T) {
	r := NewResolver()

	got := r.Resolve("{ q { zzzzqqq", len("{ q { zzzzqqq"), nil)

	assert.Empty(t, got)
}

func TestContextString(t *testing.T) {
	assert.Equal(t, "directive", ContextDirective.String())
	assert.Equal(t, "function", ContextFunction.String())
	assert.Equal(t, "type", ContextType.String())
	assert.Equal(t, "predicate", ContextPredicate.String())
}
