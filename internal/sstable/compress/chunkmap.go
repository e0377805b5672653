package compress

import (
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/errs"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/varint"
)

// DefaultChunkLength is the default compression chunk size (spec.md §6).
const DefaultChunkLength = 64 * 1024

// Chunk maps one uncompressed offset to its compressed location.
type Chunk struct {
	UncompressedOffset int64
	CompressedOffset   int64
	CompressedLength   int64
}

// ChunkMap is the decoded `-CompressionInfo.db` table, sorted ascending by
// UncompressedOffset.
type ChunkMap struct {
	Algorithm   string
	ChunkLength int64
	Chunks      []Chunk
}

// Decode parses a `-CompressionInfo.db` byte stream: algorithm name
// (length-prefixed text), chunk length (varint), chunk count (varint), then
// that many `{uncompressed_offset, compressed_offset, compressed_length}`
// varint triples.
func Decode(buf []byte) (*ChunkMap, error) {
	off := 0
	nameLen, n, err := varint.Decode(buf[off:])
	if err != nil {
		return nil, err
	}
	off += n
	if nameLen < 0 || int(nameLen) > len(buf)-off {
		return nil, &errs.CorruptFormat{Offset: int64(off), Reason: "compression info algorithm name overruns buffer"}
	}
	name := string(buf[off : off+int(nameLen)])
	off += int(nameLen)

	chunkLen, n, err := varint.Decode(buf[off:])
	if err != nil {
		return nil, err
	}
	off += n

	count, n, err := varint.Decode(buf[off:])
	if err != nil {
		return nil, err
	}
	off += n

	chunks := make([]Chunk, 0, count)
	for i := int64(0); i < count; i++ {
		uOff, n, err := varint.Decode(buf[off:])
		if err != nil {
			return nil, err
		}
		off += n
		cOff, n, err := varint.Decode(buf[off:])
		if err != nil {
			return nil, err
		}
		off += n
		cLen, n, err := varint.Decode(buf[off:])
		if err != nil {
			return nil, err
		}
		off += n
		chunks = append(chunks, Chunk{UncompressedOffset: uOff, CompressedOffset: cOff, CompressedLength: cLen})
	}

	return &ChunkMap{Algorithm: name, ChunkLength: chunkLen, Chunks: chunks}, nil
}

// Encode is the inverse of Decode.
func Encode(m *ChunkMap) []byte {
	out := varint.Encode(int64(len(m.Algorithm)))
	out = append(out, m.Algorithm...)
	out = append(out, varint.Encode(m.ChunkLength)...)
	out = append(out, varint.Encode(int64(len(m.Chunks)))...)
	for _, c := range m.Chunks {
		out = append(out, varint.Encode(c.UncompressedOffset)...)
		out = append(out, varint.Encode(c.CompressedOffset)...)
		out = append(out, varint.Encode(c.CompressedLength)...)
	}
	return out
}

// Lookup returns the chunk covering the given uncompressed offset, via
// binary search over the (unique, sorted) UncompressedOffset values.
func (m *ChunkMap) Lookup(uncompressedOffset int64) (Chunk, bool) {
	lo, hi := 0, len(m.Chunks)-1
	best := -1
	for lo <= hi {
		mid := (lo + hi) / 2
		if m.Chunks[mid].UncompressedOffset <= uncompressedOffset {
			best = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	if best < 0 {
		return Chunk{}, false
	}
	return m.Chunks[best], true
}
