package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func buildLargeIndex(n int) *PartitionIndex {
	idx := &PartitionIndex{}
	for i := 0; i < n; i++ {
		key := []byte{byte(i >> 8), byte(i)}
		idx.Entries = append(idx.Entries, Entry{PartitionKey: key, FileOffset: int64(i * 10), Width: 10})
	}
	return idx
}

func TestBuildSummary_Stride(t *testing.T) {
	idx := buildLargeIndex(300)
	s := BuildSummary(idx, 128)
	assert.Equal(t, 128, s.Stride)
	// entries at positions 0, 128, 256
	assert.Len(t, s.Entries, 3)
	assert.Equal(t, 0, s.Entries[0].IndexPos)
	assert.Equal(t, 128, s.Entries[1].IndexPos)
	assert.Equal(t, 256, s.Entries[2].IndexPos)
}

func TestBuildSummary_DefaultStride(t *testing.T) {
	idx := buildLargeIndex(10)
	s := BuildSummary(idx, 0)
	assert.Equal(t, DefaultStride, s.Stride)
}

func TestSummary_PageFor(t *testing.T) {
	idx := buildLargeIndex(300)
	s := BuildSummary(idx, 128)

	target := idx.Entries[200].PartitionKey
	start, end := s.PageFor(target, len(idx.Entries))
	assert.True(t, start <= 200 && 200 < end)
	assert.Equal(t, 128, start)
	assert.Equal(t, 256, end)
}

func TestSummary_PageFor_FirstPage(t *testing.T) {
	idx := buildLargeIndex(300)
	s := BuildSummary(idx, 128)

	start, end := s.PageFor(idx.Entries[5].PartitionKey, len(idx.Entries))
	assert.Equal(t, 0, start)
	assert.Equal(t, 128, end)
}
