package stats

import (
	"encoding/binary"
	"hash/crc32"
	"math"

	"github.com/pmcfadin/cqlite-sub003/internal/sstable/varint"
)

type writer struct {
	buf []byte
}

func (w *writer) u8(v uint8)   { w.buf = append(w.buf, v) }
func (w *writer) u32(v uint32) { w.buf = binary.BigEndian.AppendUint32(w.buf, v) }
func (w *writer) u64(v uint64) { w.buf = binary.BigEndian.AppendUint64(w.buf, v) }
func (w *writer) i64(v int64)  { w.u64(uint64(v)) }
func (w *writer) f64(v float64) { w.u64(math.Float64bits(v)) }
func (w *writer) varint(v int64) { w.buf = append(w.buf, varint.Encode(v)...) }

func (w *writer) bytes(b []byte) {
	if b == nil {
		w.varint(-1)
		return
	}
	w.varint(int64(len(b)))
	w.buf = append(w.buf, b...)
}

func (w *writer) text(s string) { w.bytes([]byte(s)) }

func (w *writer) histogram(h []HistogramBucket) {
	w.u32(uint32(len(h)))
	for _, b := range h {
		w.varint(b.StartSize)
		w.varint(b.EndSize)
		w.varint(b.Count)
		w.f64(b.Percentage)
	}
}

// Encode serializes Statistics back to the current (non-legacy) on-disk
// layout. It is the inverse of Decode and exists chiefly to make the format
// round-trip testable without a live Cassandra-written fixture.
func Encode(s *Statistics) []byte {
	body := &writer{}

	rs := s.Row
	body.varint(rs.TotalRows)
	body.varint(rs.LiveRows)
	body.varint(rs.TombstoneCount)
	body.varint(rs.PartitionCount)
	body.f64(rs.AvgRowsPerPart)
	body.histogram(rs.RowSizeHistogram)

	ts := s.Timestamp
	body.i64(ts.MinTimestamp)
	body.i64(ts.MaxTimestamp)
	body.i64(ts.MinLocalDeletion)
	body.i64(ts.MaxLocalDeletion)
	if ts.HasTTL {
		body.u8(1)
		body.i64(ts.MinTTL)
		body.i64(ts.MaxTTL)
		body.varint(ts.RowsWithTTL)
	} else {
		body.u8(0)
	}

	body.u32(uint32(len(s.Columns)))
	for _, cs := range s.Columns {
		body.text(cs.Name)
		body.text(cs.TypeName)
		body.varint(cs.ValueCount)
		body.varint(cs.NullCount)
		if cs.HasMinMax {
			body.u8(1)
			body.bytes(cs.Min)
			body.bytes(cs.Max)
		} else {
			body.u8(0)
		}
		body.f64(cs.AvgSize)
		body.varint(cs.Cardinality)
		body.u32(uint32(len(cs.ValueFrequencies)))
		for _, vf := range cs.ValueFrequencies {
			body.bytes(vf.Value)
			body.varint(vf.Frequency)
			body.f64(vf.Percentage)
		}
		if cs.HasIndex {
			body.u8(1)
		} else {
			body.u8(0)
		}
	}

	tbl := s.Table
	body.u64(tbl.DiskSize)
	body.u64(tbl.UncompressedSize)
	body.f64(tbl.CompressionRatio)
	body.varint(tbl.BlockCount)
	body.f64(tbl.AvgBlockSize)
	body.u64(tbl.IndexSize)
	body.u64(tbl.BloomFilterSize)
	body.u32(tbl.LevelCount)

	ps := s.PartitionSize
	body.f64(ps.Average)
	body.u64(ps.Min)
	body.u64(ps.Max)
	body.f64(ps.LargePartitionPct)
	body.histogram(ps.Histogram)

	cmp := s.Compression
	body.text(cmp.Algorithm)
	body.u64(cmp.OriginalSize)
	body.u64(cmp.CompressedSize)
	body.f64(cmp.Ratio)
	body.f64(cmp.CompressionSpeed)
	body.f64(cmp.DecompressionSpeed)
	body.varint(cmp.CompressedBlockCount)

	body.u32(uint32(len(s.ExtraMetadata)))
	for k, v := range s.ExtraMetadata {
		body.text(k)
		body.text(v)
	}

	crc := crc32.ChecksumIEEE(body.buf)

	head := &writer{}
	head.u32(s.FormatVersion)
	head.u32(s.FormatKind)
	head.u32(uint32(len(body.buf)))
	head.u32(0)
	head.u32(0)
	head.u32(0)
	head.u32(crc)

	return append(head.buf, body.buf...)
}
