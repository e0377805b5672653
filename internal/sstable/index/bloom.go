package index

import (
	"encoding/binary"
	"math"

	"github.com/pmcfadin/cqlite-sub003/internal/sstable/errs"
	"github.com/twmb/murmur3"
)

// BloomFilter is a classical bit-array bloom filter with H independent hash
// functions, derived via the Kirsch-Mitzenmacher double-hashing technique
// from two murmur3 seeds so only one hash implementation is needed
// (spec.md §4.6).
type BloomFilter struct {
	bitCount  uint64
	hashCount uint32
	bits      []byte
}

// NewBloomFilter allocates a filter sized for n expected entries at the
// given false-positive rate p, using the standard optimal-size formulas.
func NewBloomFilter(n int, p float64) *BloomFilter {
	m := optimalBits(n, p)
	k := optimalHashCount(n, m)
	if k < 1 {
		k = 1
	}
	return &BloomFilter{
		bitCount:  m,
		hashCount: uint32(k),
		bits:      make([]byte, (m+7)/8),
	}
}

func optimalBits(n int, p float64) uint64 {
	if n <= 0 {
		n = 1
	}
	// m = -n*ln(p) / (ln(2)^2), the standard bloom filter sizing formula,
	// with ln(2)^2 precomputed as a constant.
	const ln2sq = 0.4804530139182014 // ln(2)^2
	m := -float64(n) * math.Log(p) / ln2sq
	if m < 8 {
		m = 8
	}
	return uint64(m)
}

func optimalHashCount(n int, m uint64) int {
	if n <= 0 {
		return 1
	}
	const ln2 = 0.6931471805599453
	k := float64(m) / float64(n) * ln2
	if k < 1 {
		return 1
	}
	return int(k + 0.5)
}

// Add inserts key into the filter.
func (b *BloomFilter) Add(key []byte) {
	h1, h2 := seeds(key)
	for i := uint32(0); i < b.hashCount; i++ {
		bit := (h1 + uint64(i)*h2) % b.bitCount
		b.bits[bit/8] |= 1 << (bit % 8)
	}
}

// MightContain returns false only if key is definitely absent.
func (b *BloomFilter) MightContain(key []byte) bool {
	h1, h2 := seeds(key)
	for i := uint32(0); i < b.hashCount; i++ {
		bit := (h1 + uint64(i)*h2) % b.bitCount
		if b.bits[bit/8]&(1<<(bit%8)) == 0 {
			return false
		}
	}
	return true
}

func seeds(key []byte) (uint64, uint64) {
	h1, h2 := murmur3.Sum128(key)
	if h2 == 0 {
		h2 = 1
	}
	return h1, h2
}

// Encode serializes the filter as `{bit_count: u64, hash_count: u32, bits}`.
func (b *BloomFilter) Encode() []byte {
	out := make([]byte, 8+4+len(b.bits))
	binary.BigEndian.PutUint64(out[0:8], b.bitCount)
	binary.BigEndian.PutUint32(out[8:12], b.hashCount)
	copy(out[12:], b.bits)
	return out
}

// DecodeBloomFilter parses the `-Filter.db` wire format.
func DecodeBloomFilter(buf []byte) (*BloomFilter, error) {
	if len(buf) < 12 {
		return nil, &errs.Truncated{Context: "bloom filter header", Need: 12, Have: len(buf)}
	}
	bitCount := binary.BigEndian.Uint64(buf[0:8])
	hashCount := binary.BigEndian.Uint32(buf[8:12])
	want := int((bitCount + 7) / 8)
	if len(buf)-12 < want {
		return nil, &errs.Truncated{Context: "bloom filter bits", Need: want, Have: len(buf) - 12}
	}
	bits := make([]byte, want)
	copy(bits, buf[12:12+want])
	return &BloomFilter{bitCount: bitCount, hashCount: hashCount, bits: bits}, nil
}
