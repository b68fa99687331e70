package graph

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestBuildModelSingleNode(t *testing.T) {
	b := NewBuilder()

	model := b.BuildModel(decode(t,
		`{"q":[{"uid":"0x1","name":"Alice","dgraph.type":["Person"]}]}`))

	require.Len(t, model.Nodes, 1)
	assert.Empty(t, model.Edges)

	node := model.Nodes["0x1"]
	require.NotNil(t, node)
	assert.Equal(t, "0x1", node.ID)
	assert.Equal(t, "Alice", node.Label)
	assert.Equal(t, "Person", node.Type)
	assert.NotEmpty(t, node.Color)
	assert.NotEqual(t, DefaultNodeColor, node.Color)
}

func TestBuildModelNestedChildEdge(t *testing.T) {
	b := NewBuilder()

	model := b.BuildModel(decode(t,
		`{"q":[{"uid":"0x1","name":"Alice","friend":{"uid":"0x2","name":"Bob"}}]}`))

	require.Len(t, model.Nodes, 2)
	require.Len(t, model.Edges, 1)

	edge := model.Edges[0]
	assert.Equal(t, "0x1", edge.Source)
	assert.Equal(t, "0x2", edge.Target)
	assert.Equal(t, "friend", edge.Label)
	assert.Equal(t, EdgeID("0x1", "0x2", "friend"), edge.ID)
}

func TestBuildModelMutualFriendshipTerminates(t *testing.T) {
	b := NewBuilder()

	// A.friend = B and B.friend = A.
	model := b.BuildModel(decode(t, `{
		"q": [
			{"uid":"0xa","name":"Alice","friend":{"uid":"0xb","name":"Bob","friend":{"uid":"0xa"}}},
			{"uid":"0xb","friend":{"uid":"0xa","friend":{"uid":"0xb"}}}
		]
	}`))

	assert.Len(t, model.Nodes, 2)
	require.Len(t, model.Edges, 2)

	ids := []string{model.Edges[0].ID, model.Edges[1].ID}
	assert.ElementsMatch(t, []string{
		EdgeID("0xa", "0xb", "friend"),
		EdgeID("0xb", "0xa", "friend"),
	}, ids)
}

func TestBuildModelCyclicInMemoryValueTerminates(t *testing.T) {
	// A genuinely self-referential value, which decoded JSON can never be.
	a := map[string]any{"uid": "0x1", "name": "ouroboros"}
	a["self"] = a

	model := NewBuilder().BuildModel(a)

	assert.Len(t, model.Nodes, 1)
	assert.Empty(t, model.Edges, "self-loops are skipped")
}

func TestBuildModelSkipsSelfLoops(t *testing.T) {
	model := NewBuilder().BuildModel(decode(t,
		`{"q":[{"uid":"0x1","knows":{"uid":"0x1"}}]}`))

	assert.Len(t, model.Nodes, 1)
	assert.Empty(t, model.Edges)
}

func TestBuildModelDeduplicatesNodesAndEdges(t *testing.T) {
	// Diamond: the same child under two parents, and the same edge twice.
	model := NewBuilder().BuildModel(decode(t, `{
		"q": [
			{"uid":"0x1","name":"A","friend":[{"uid":"0x3","name":"C"},{"uid":"0x3"}]},
			{"uid":"0x2","name":"B","friend":{"uid":"0x3"}}
		]
	}`))

	assert.Len(t, model.Nodes, 3)
	require.Len(t, model.Edges, 2)

	seen := map[string]bool{}
	for _, e := range model.Edges {
		assert.False(t, seen[e.ID], "duplicate composite edge key %s", e.ID)
		seen[e.ID] = true
		assert.NotNil(t, model.Nodes[e.Source])
		assert.NotNil(t, model.Nodes[e.Target])
	}
}

func TestBuildModelRepeatOccurrenceCarriesExpansion(t *testing.T) {
	// The shared child appears under two parents and only the second
	// occurrence expands its address. The repeat must still be walked so
	// the expansion's node and edge are not lost.
	model := NewBuilder().BuildModel(decode(t, `{
		"q": [
			{"uid":"0x1","name":"A","friend":{"uid":"0x3","name":"C"}},
			{"uid":"0x2","name":"B","friend":{"uid":"0x3","address":{"uid":"0x4","name":"Oslo"}}}
		]
	}`))

	require.Len(t, model.Nodes, 4)
	require.NotNil(t, model.Nodes["0x4"], "node reached only through a repeat occurrence")

	require.Len(t, model.Edges, 3)
	ids := make([]string, 0, len(model.Edges))
	for _, e := range model.Edges {
		ids = append(ids, e.ID)
	}
	assert.ElementsMatch(t, []string{
		EdgeID("0x1", "0x3", "friend"),
		EdgeID("0x2", "0x3", "friend"),
		EdgeID("0x3", "0x4", "address"),
	}, ids)
}

func TestBuildModelMalformedInput(t *testing.T) {
	b := NewBuilder()

	tests := []struct {
		name  string
		input any
	}{
		{"nil", nil},
		{"scalar", "just a string"},
		{"number", 42.0},
		{"object without identifiers", decode(t, `{"a":{"b":{"c":1}}}`)},
		{"array of scalars", decode(t, `[1,2,3]`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := b.BuildModel(tt.input)
			require.NotNil(t, model)
			assert.Empty(t, model.Nodes)
			assert.Empty(t, model.Edges)
		})
	}
}

func TestBuildModelLabelFallbacks(t *testing.T) {
	model := NewBuilder().BuildModel(decode(t, `{"q":[
		{"uid":"0x1","title":"The Matrix"},
		{"uid":"0x2"},
		{"uid":"0xabcdef0123456789"}
	]}`))

	assert.Equal(t, "The Matrix", model.Nodes["0x1"].Label)
	assert.Equal(t, "0x2", model.Nodes["0x2"].Label)
	assert.Equal(t, "0xabcdef", model.Nodes["0xabcdef0123456789"].Label)
}

func TestBuildModelTypeTagForms(t *testing.T) {
	model := NewBuilder().BuildModel(decode(t, `{"q":[
		{"uid":"0x1","dgraph.type":["Person","Employee"]},
		{"uid":"0x2","dgraph.type":"City"},
		{"uid":"0x3"}
	]}`))

	assert.Equal(t, "Person", model.Nodes["0x1"].Type)
	assert.Equal(t, "City", model.Nodes["0x2"].Type)
	assert.Empty(t, model.Nodes["0x3"].Type)
	assert.Equal(t, DefaultNodeColor, model.Nodes["0x3"].Color)
}

func TestBuildModelDeepNestingBounded(t *testing.T) {
	// Nest far past the traversal depth bound; the build must still return.
	inner := map[string]any{"uid": "0xdeep", "name": "bottom"}
	var root any = inner
	for i := 0; i < MaxTraversalDepth*2; i++ {
		root = map[string]any{"wrap": root}
	}

	model := NewBuilder().BuildModel(root)

	// The entity sits below the bound and is out of reach; no panic, no hang.
	assert.Empty(t, model.Nodes)
}

func TestBuildModelLinearScanLargeInput(t *testing.T) {
	entities := make([]any, 0, 2000)
	for i := 0; i < 2000; i++ {
		entities = append(entities, map[string]any{
			"uid":  fmt.Sprintf("0x%x", i),
			"name": fmt.Sprintf("n%d", i),
			"next": map[string]any{"uid": fmt.Sprintf("0x%x", (i+1)%2000)},
		})
	}

	model := NewBuilder().BuildModel(map[string]any{"q": entities})

	assert.Len(t, model.Nodes, 2000)
	assert.Len(t, model.Edges, 2000)
}

func TestBuildModelRawKeepsScalarsOnly(t *testing.T) {
	model := NewBuilder().BuildModel(decode(t,
		`{"q":[{"uid":"0x1","name":"Alice","age":30,"friend":{"uid":"0x2"}}]}`))

	raw := model.Nodes["0x1"].Raw
	assert.Equal(t, "Alice", raw["name"])
	assert.Equal(t, 30.0, raw["age"])
	assert.NotContains(t, raw, "friend")
}
