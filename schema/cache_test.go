package schema

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelCacheHitAndMiss(t *testing.T) {
	c := NewModelCache(4)

	_, ok := c.Get("type A { f }")
	require.False(t, ok)

	model := NewParser().Parse("type A { f }")
	c.Put("type A { f }", model)

	got, ok := c.Get("type A { f }")
	require.True(t, ok)
	assert.Same(t, model, got)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestModelCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewModelCache(2)

	c.Put("a", &Model{})
	c.Put("b", &Model{})

	// Touch "a" so "b" becomes the eviction candidate.
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Put("c", &Model{})
	assert.Equal(t, 2, c.Len())

	_, ok = c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
}

func TestModelCacheUpdateExisting(t *testing.T) {
	c := NewModelCache(2)

	first := &Model{}
	second := &Model{}
	c.Put("a", first)
	c.Put("a", second)

	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Equal(t, 1, c.Len())
}

func TestModelCacheDefaultSize(t *testing.T) {
	c := NewModelCache(0)
	for i := 0; i < DefaultCacheSize+10; i++ {
		c.Put(fmt.Sprintf("schema-%d", i), &Model{})
	}
	assert.Equal(t, DefaultCacheSize, c.Len())
}
