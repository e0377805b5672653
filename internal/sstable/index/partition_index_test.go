package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleIndex() *PartitionIndex {
	return &PartitionIndex{Entries: []Entry{
		{PartitionKey: []byte("alice"), FileOffset: 0, Width: 100},
		{PartitionKey: []byte("bob"), FileOffset: 100, Width: 50},
		{PartitionKey: []byte("carol"), FileOffset: 150, Width: 200},
		{PartitionKey: []byte("dave"), FileOffset: 350, Width: 10},
	}}
}

func TestPartitionIndexRoundTrip(t *testing.T) {
	idx := sampleIndex()
	buf := Encode(idx)
	got, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, idx.Entries, got.Entries)
}

func TestPartitionIndex_Find(t *testing.T) {
	idx := sampleIndex()
	e, ok := idx.Find([]byte("bob"))
	require.True(t, ok)
	assert.Equal(t, int64(100), e.FileOffset)

	_, ok = idx.Find([]byte("zzz"))
	assert.False(t, ok)
}

func TestPartitionIndex_LowerBound(t *testing.T) {
	idx := sampleIndex()
	assert.Equal(t, 1, idx.LowerBound([]byte("azz")))
	assert.Equal(t, 0, idx.LowerBound([]byte("aaa")))
	assert.Equal(t, 4, idx.LowerBound([]byte("zzz")))
}

func TestPartitionIndex_DecodeTruncated(t *testing.T) {
	idx := sampleIndex()
	buf := Encode(idx)
	_, err := Decode(buf[:len(buf)-1])
	require.Error(t, err)
}
