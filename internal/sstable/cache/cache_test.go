package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_PutGet(t *testing.T) {
	c := New(1024)
	c.Put(&Block{Offset: 0, Data: []byte("hello")})

	b, ok := c.Get(0)
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), b.Data)

	_, ok = c.Get(99)
	assert.False(t, ok)
}

func TestCache_HitRate(t *testing.T) {
	c := New(1024)
	c.Put(&Block{Offset: 0, Data: []byte("a")})
	c.Get(0)
	c.Get(0)
	c.Get(1)

	stats := c.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 2.0/3.0, stats.HitRate(), 1e-9)
}

func TestCache_EvictsUnderByteBudget(t *testing.T) {
	blockSize := 100
	budget := int64(250) // room for ~2 blocks plus per-entry overhead
	c := New(budget)

	for i := 0; i < 5; i++ {
		data := make([]byte, blockSize)
		c.Put(&Block{Offset: int64(i), Data: data})
	}

	assert.LessOrEqual(t, c.Len(), 3)
	_, ok := c.Get(0)
	assert.False(t, ok, "oldest block should have been evicted")
	_, ok = c.Get(4)
	assert.True(t, ok, "most recently inserted block should still be cached")
}

func TestCache_UpdatingExistingEntryDoesNotDoubleCountBytes(t *testing.T) {
	c := New(10_000)
	c.Put(&Block{Offset: 0, Data: make([]byte, 100)})
	c.Put(&Block{Offset: 0, Data: make([]byte, 100)})
	assert.Equal(t, 1, c.Len())
}
