package index

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBloomFilter_NoFalseNegatives(t *testing.T) {
	bf := NewBloomFilter(1000, 0.01)
	keys := make([][]byte, 1000)
	for i := range keys {
		keys[i] = []byte(fmt.Sprintf("partition-key-%d", i))
		bf.Add(keys[i])
	}
	for _, k := range keys {
		assert.True(t, bf.MightContain(k))
	}
}

func TestBloomFilter_LowFalsePositiveRate(t *testing.T) {
	bf := NewBloomFilter(1000, 0.01)
	for i := 0; i < 1000; i++ {
		bf.Add([]byte(fmt.Sprintf("present-%d", i)))
	}
	falsePositives := 0
	trials := 2000
	for i := 0; i < trials; i++ {
		if bf.MightContain([]byte(fmt.Sprintf("absent-%d", i))) {
			falsePositives++
		}
	}
	assert.Less(t, float64(falsePositives)/float64(trials), 0.05)
}

func TestBloomFilter_EncodeDecodeRoundTrip(t *testing.T) {
	bf := NewBloomFilter(100, 0.01)
	bf.Add([]byte("hello"))
	bf.Add([]byte("world"))

	buf := bf.Encode()
	got, err := DecodeBloomFilter(buf)
	require.NoError(t, err)
	assert.True(t, got.MightContain([]byte("hello")))
	assert.True(t, got.MightContain([]byte("world")))
	assert.Equal(t, bf.bitCount, got.bitCount)
	assert.Equal(t, bf.hashCount, got.hashCount)
}

func TestBloomFilter_DecodeTruncated(t *testing.T) {
	_, err := DecodeBloomFilter([]byte{1, 2, 3})
	require.Error(t, err)
}
