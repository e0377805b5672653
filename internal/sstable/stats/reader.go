// Package stats decodes the `-Statistics.db` sidecar file: eight fixed-order
// sections covering row, timestamp, column, table, partition-size, and
// compression statistics plus free-form extra metadata (spec.md §4.5).
package stats

import (
	"encoding/binary"
	"hash/crc32"
	"math"

	"github.com/pmcfadin/cqlite-sub003/internal/sstable/errs"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/varint"
)

// HistogramBucket is one row-size or partition-size histogram bucket.
type HistogramBucket struct {
	StartSize  int64
	EndSize    int64
	Count      int64
	Percentage float64
}

// ValueFrequency is one entry in a column's value-frequency histogram.
type ValueFrequency struct {
	Value      []byte
	Frequency  int64
	Percentage float64
}

// RowStats is section 2.
type RowStats struct {
	TotalRows        int64
	LiveRows         int64
	TombstoneCount   int64
	PartitionCount   int64
	AvgRowsPerPart   float64
	RowSizeHistogram []HistogramBucket
}

// TimestampStats is section 3.
type TimestampStats struct {
	MinTimestamp       int64
	MaxTimestamp       int64
	MinLocalDeletion   int64
	MaxLocalDeletion   int64
	HasTTL             bool
	MinTTL             int64
	MaxTTL             int64
	RowsWithTTL        int64
}

// ColumnStats is one entry of section 4.
type ColumnStats struct {
	Name             string
	TypeName         string
	ValueCount       int64
	NullCount        int64
	HasMinMax        bool
	Min              []byte
	Max              []byte
	AvgSize          float64
	Cardinality      int64
	ValueFrequencies []ValueFrequency
	HasIndex         bool
}

// TableStats is section 5.
type TableStats struct {
	DiskSize         uint64
	UncompressedSize uint64
	CompressionRatio float64
	BlockCount       int64
	AvgBlockSize     float64
	IndexSize        uint64
	BloomFilterSize  uint64
	LevelCount       uint32
}

// PartitionSizeStats is section 6.
type PartitionSizeStats struct {
	Average            float64
	Min                uint64
	Max                uint64
	LargePartitionPct  float64
	Histogram          []HistogramBucket
}

// CompressionStats is section 7.
type CompressionStats struct {
	Algorithm            string
	OriginalSize         uint64
	CompressedSize       uint64
	Ratio                float64
	CompressionSpeed     float64
	DecompressionSpeed   float64
	CompressedBlockCount int64
}

// Statistics is the fully decoded `-Statistics.db` file.
type Statistics struct {
	FormatVersion  uint32
	FormatKind     uint32
	Row            RowStats
	Timestamp      TimestampStats
	Columns        []ColumnStats
	Table          TableStats
	PartitionSize  PartitionSizeStats
	Compression    CompressionStats
	ExtraMetadata  map[string]string

	// LegacyLayout is set when the file was decoded via the pre-5.0
	// fallback layout rather than the current one (see Decode).
	LegacyLayout bool
}

// reader is a small cursor over a byte slice with the fixed-width and
// length-prefixed primitives the statistics format uses.
type reader struct {
	buf []byte
	off int
}

func (r *reader) remaining() []byte { return r.buf[r.off:] }

func (r *reader) need(n int, what string) error {
	if len(r.buf)-r.off < n {
		return &errs.Truncated{Context: what, Need: n, Have: len(r.buf) - r.off}
	}
	return nil
}

func (r *reader) u8() (uint8, error) {
	if err := r.need(1, "u8"); err != nil {
		return 0, err
	}
	v := r.buf[r.off]
	r.off++
	return v, nil
}

func (r *reader) u32() (uint32, error) {
	if err := r.need(4, "u32"); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v, nil
}

func (r *reader) u64() (uint64, error) {
	if err := r.need(8, "u64"); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return v, nil
}

func (r *reader) i64() (int64, error) {
	v, err := r.u64()
	return int64(v), err
}

func (r *reader) f64() (float64, error) {
	v, err := r.u64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

func (r *reader) varint() (int64, error) {
	v, n, err := varint.Decode(r.remaining())
	if err != nil {
		return 0, err
	}
	r.off += n
	return v, nil
}

func (r *reader) bytes() ([]byte, error) {
	n, err := r.varint()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, nil
	}
	if err := r.need(int(n), "length-prefixed bytes"); err != nil {
		return nil, err
	}
	v := r.buf[r.off : r.off+int(n)]
	r.off += int(n)
	return v, nil
}

func (r *reader) text() (string, error) {
	b, err := r.bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *reader) histogram() ([]HistogramBucket, error) {
	count, err := r.u32()
	if err != nil {
		return nil, err
	}
	out := make([]HistogramBucket, 0, count)
	for i := uint32(0); i < count; i++ {
		start, err := r.varint()
		if err != nil {
			return nil, err
		}
		end, err := r.varint()
		if err != nil {
			return nil, err
		}
		cnt, err := r.varint()
		if err != nil {
			return nil, err
		}
		pct, err := r.f64()
		if err != nil {
			return nil, err
		}
		out = append(out, HistogramBucket{StartSize: start, EndSize: end, Count: cnt, Percentage: pct})
	}
	return out, nil
}

// Decode parses a `-Statistics.db` byte stream. It first probes the current
// layout; if the CRC-32 stored in the header does not match the body it
// retries with the legacy (pre-5.0) layout, which omits the TTL fields from
// the timestamp section (see DESIGN.md, "Statistics header layout switch").
func Decode(buf []byte) (*Statistics, error) {
	s, err := decodeLayout(buf, false)
	if err == nil {
		return s, nil
	}
	var corrupt *errs.CorruptFormat
	if !asCorrupt(err, &corrupt) {
		return nil, err
	}
	return decodeLayout(buf, true)
}

func asCorrupt(err error, target **errs.CorruptFormat) bool {
	c, ok := err.(*errs.CorruptFormat)
	if ok {
		*target = c
	}
	return ok
}

func decodeLayout(buf []byte, legacy bool) (*Statistics, error) {
	r := &reader{buf: buf}

	formatVersion, err := r.u32()
	if err != nil {
		return nil, err
	}
	formatKind, err := r.u32()
	if err != nil {
		return nil, err
	}
	dataLength, err := r.u32()
	if err != nil {
		return nil, err
	}
	if _, err := r.u32(); err != nil { // reserved
		return nil, err
	}
	if _, err := r.u32(); err != nil { // reserved
		return nil, err
	}
	if _, err := r.u32(); err != nil { // reserved
		return nil, err
	}
	headerCRC, err := r.u32()
	if err != nil {
		return nil, err
	}

	rest := r.remaining()
	if crc32.ChecksumIEEE(rest) != headerCRC {
		return nil, &errs.CorruptFormat{Offset: int64(r.off), Reason: "statistics CRC-32 mismatch"}
	}
	_ = dataLength

	out := &Statistics{FormatVersion: formatVersion, FormatKind: formatKind, LegacyLayout: legacy}

	if err := decodeRowStats(r, &out.Row); err != nil {
		return nil, err
	}
	if err := decodeTimestampStats(r, &out.Timestamp, legacy); err != nil {
		return nil, err
	}
	columnCount, err := r.u32()
	if err != nil {
		return nil, err
	}
	out.Columns = make([]ColumnStats, 0, columnCount)
	for i := uint32(0); i < columnCount; i++ {
		cs, err := decodeColumnStats(r)
		if err != nil {
			return nil, err
		}
		out.Columns = append(out.Columns, cs)
	}
	if err := decodeTableStats(r, &out.Table); err != nil {
		return nil, err
	}
	if err := decodePartitionSizeStats(r, &out.PartitionSize); err != nil {
		return nil, err
	}
	if err := decodeCompressionStats(r, &out.Compression); err != nil {
		return nil, err
	}
	extraCount, err := r.u32()
	if err != nil {
		return nil, err
	}
	out.ExtraMetadata = make(map[string]string, extraCount)
	for i := uint32(0); i < extraCount; i++ {
		k, err := r.text()
		if err != nil {
			return nil, err
		}
		v, err := r.text()
		if err != nil {
			return nil, err
		}
		out.ExtraMetadata[k] = v
	}
	return out, nil
}

func decodeRowStats(r *reader, rs *RowStats) error {
	var err error
	if rs.TotalRows, err = r.varint(); err != nil {
		return err
	}
	if rs.LiveRows, err = r.varint(); err != nil {
		return err
	}
	if rs.TombstoneCount, err = r.varint(); err != nil {
		return err
	}
	if rs.PartitionCount, err = r.varint(); err != nil {
		return err
	}
	if rs.AvgRowsPerPart, err = r.f64(); err != nil {
		return err
	}
	rs.RowSizeHistogram, err = r.histogram()
	return err
}

func decodeTimestampStats(r *reader, ts *TimestampStats, legacy bool) error {
	var err error
	if ts.MinTimestamp, err = r.i64(); err != nil {
		return err
	}
	if ts.MaxTimestamp, err = r.i64(); err != nil {
		return err
	}
	if ts.MinLocalDeletion, err = r.i64(); err != nil {
		return err
	}
	if ts.MaxLocalDeletion, err = r.i64(); err != nil {
		return err
	}
	flag, err := r.u8()
	if err != nil {
		return err
	}
	ts.HasTTL = flag != 0
	if legacy || !ts.HasTTL {
		return nil
	}
	if ts.MinTTL, err = r.i64(); err != nil {
		return err
	}
	if ts.MaxTTL, err = r.i64(); err != nil {
		return err
	}
	ts.RowsWithTTL, err = r.varint()
	return err
}

func decodeColumnStats(r *reader) (ColumnStats, error) {
	var cs ColumnStats
	var err error
	if cs.Name, err = r.text(); err != nil {
		return cs, err
	}
	if cs.TypeName, err = r.text(); err != nil {
		return cs, err
	}
	if cs.ValueCount, err = r.varint(); err != nil {
		return cs, err
	}
	if cs.NullCount, err = r.varint(); err != nil {
		return cs, err
	}
	flag, err := r.u8()
	if err != nil {
		return cs, err
	}
	cs.HasMinMax = flag != 0
	if cs.HasMinMax {
		if cs.Min, err = r.bytes(); err != nil {
			return cs, err
		}
		if cs.Max, err = r.bytes(); err != nil {
			return cs, err
		}
	}
	if cs.AvgSize, err = r.f64(); err != nil {
		return cs, err
	}
	if cs.Cardinality, err = r.varint(); err != nil {
		return cs, err
	}
	freqCount, err := r.u32()
	if err != nil {
		return cs, err
	}
	cs.ValueFrequencies = make([]ValueFrequency, 0, freqCount)
	for i := uint32(0); i < freqCount; i++ {
		val, err := r.bytes()
		if err != nil {
			return cs, err
		}
		freq, err := r.varint()
		if err != nil {
			return cs, err
		}
		pct, err := r.f64()
		if err != nil {
			return cs, err
		}
		cs.ValueFrequencies = append(cs.ValueFrequencies, ValueFrequency{Value: val, Frequency: freq, Percentage: pct})
	}
	idxFlag, err := r.u8()
	if err != nil {
		return cs, err
	}
	cs.HasIndex = idxFlag != 0
	return cs, nil
}

func decodeTableStats(r *reader, ts *TableStats) error {
	var err error
	if ts.DiskSize, err = r.u64(); err != nil {
		return err
	}
	if ts.UncompressedSize, err = r.u64(); err != nil {
		return err
	}
	if ts.CompressionRatio, err = r.f64(); err != nil {
		return err
	}
	if ts.BlockCount, err = r.varint(); err != nil {
		return err
	}
	if ts.AvgBlockSize, err = r.f64(); err != nil {
		return err
	}
	if ts.IndexSize, err = r.u64(); err != nil {
		return err
	}
	if ts.BloomFilterSize, err = r.u64(); err != nil {
		return err
	}
	ts.LevelCount, err = r.u32()
	return err
}

func decodePartitionSizeStats(r *reader, ps *PartitionSizeStats) error {
	var err error
	if ps.Average, err = r.f64(); err != nil {
		return err
	}
	if ps.Min, err = r.u64(); err != nil {
		return err
	}
	if ps.Max, err = r.u64(); err != nil {
		return err
	}
	if ps.LargePartitionPct, err = r.f64(); err != nil {
		return err
	}
	ps.Histogram, err = r.histogram()
	return err
}

func decodeCompressionStats(r *reader, cs *CompressionStats) error {
	var err error
	if cs.Algorithm, err = r.text(); err != nil {
		return err
	}
	if cs.OriginalSize, err = r.u64(); err != nil {
		return err
	}
	if cs.CompressedSize, err = r.u64(); err != nil {
		return err
	}
	if cs.Ratio, err = r.f64(); err != nil {
		return err
	}
	if cs.CompressionSpeed, err = r.f64(); err != nil {
		return err
	}
	if cs.DecompressionSpeed, err = r.f64(); err != nil {
		return err
	}
	cs.CompressedBlockCount, err = r.varint()
	return err
}
