package graph

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorAssignerFirstSeenOrder(t *testing.T) {
	a := NewColorAssigner()

	first := a.Assign("Person")
	second := a.Assign("Company")

	assert.Equal(t, defaultPalette[0], first)
	assert.Equal(t, defaultPalette[1], second)
}

func TestColorAssignerStableWithinPass(t *testing.T) {
	a := NewColorAssigner()

	c1 := a.Assign("Person")
	a.Assign("Company")
	a.Assign("City")

	assert.Equal(t, c1, a.Assign("Person"))
}

func TestColorAssignerEmptyTypeGetsNeutral(t *testing.T) {
	a := NewColorAssigner()

	assert.Equal(t, DefaultNodeColor, a.Assign(""))
	// Neutral assignment does not consume a palette slot.
	assert.Equal(t, defaultPalette[0], a.Assign("Person"))
}

func TestColorAssignerWrapsPalette(t *testing.T) {
	a := NewColorAssignerWithPalette([]string{"red", "green"})

	assert.Equal(t, "red", a.Assign("A"))
	assert.Equal(t, "green", a.Assign("B"))
	assert.Equal(t, "red", a.Assign("C"))
	assert.Equal(t, "green", a.Assign("B"))
}

func TestColorAssignerIndependentPerBuild(t *testing.T) {
	// Separate assigners start from slot zero again; cross-build stability
	// is deliberately not promised.
	a1 := NewColorAssigner()
	a1.Assign("Person")
	personInFirst := a1.Assign("Company")

	a2 := NewColorAssigner()
	companyInSecond := a2.Assign("Company")

	assert.NotEqual(t, personInFirst, companyInSecond)
	assert.Equal(t, defaultPalette[0], companyInSecond)
}

func TestColorAssignerAssignmentsCopy(t *testing.T) {
	a := NewColorAssigner()
	a.Assign("Person")

	m := a.Assignments()
	require.Len(t, m, 1)
	m["Person"] = "mutated"

	assert.Equal(t, defaultPalette[0], a.Assign("Person"))
}

func TestBuildModelColorsDeterministicForInput(t *testing.T) {
	b := NewBuilder()
	doc := func() any {
		return decode(t, `{"q":[
			{"uid":"0x1","dgraph.type":["Person"]},
			{"uid":"0x2","dgraph.type":["Company"]},
			{"uid":"0x3","dgraph.type":["Person"]}
		]}`)
	}

	m1 := b.BuildModel(doc())
	m2 := b.BuildModel(doc())

	for id := range m1.Nodes {
		assert.Equal(t, m1.Nodes[id].Color, m2.Nodes[id].Color)
	}
	assert.Equal(t, m1.Nodes["0x1"].Color, m1.Nodes["0x3"].Color)
	assert.NotEqual(t, m1.Nodes["0x1"].Color, m1.Nodes["0x2"].Color)
}

func TestColorAssignerManyTypes(t *testing.T) {
	a := NewColorAssigner()
	seen := map[string]int{}
	for i := 0; i < 30; i++ {
		seen[a.Assign(fmt.Sprintf("T%d", i))]++
	}
	// 30 types over a 10-color palette: each color reused three times.
	for c, n := range seen {
		assert.Equal(t, 3, n, "color %s", c)
	}
}
