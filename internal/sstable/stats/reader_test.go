package stats

import (
	"testing"

	"github.com/pmcfadin/cqlite-sub003/internal/sstable/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStats() *Statistics {
	return &Statistics{
		FormatVersion: 1,
		FormatKind:    2,
		Row: RowStats{
			TotalRows: 100, LiveRows: 90, TombstoneCount: 10, PartitionCount: 5,
			AvgRowsPerPart: 20.0,
			RowSizeHistogram: []HistogramBucket{
				{StartSize: 0, EndSize: 128, Count: 50, Percentage: 50.0},
			},
		},
		Timestamp: TimestampStats{
			MinTimestamp: 1000, MaxTimestamp: 2000,
			MinLocalDeletion: 0, MaxLocalDeletion: 0,
			HasTTL: true, MinTTL: 60, MaxTTL: 3600, RowsWithTTL: 3,
		},
		Columns: []ColumnStats{
			{
				Name: "id", TypeName: "uuid", ValueCount: 100, NullCount: 0,
				HasMinMax: false, AvgSize: 16, Cardinality: 100, HasIndex: true,
			},
			{
				Name: "name", TypeName: "text", ValueCount: 100, NullCount: 2,
				HasMinMax: true, Min: []byte("alice"), Max: []byte("zed"),
				AvgSize: 8.5, Cardinality: 90,
				ValueFrequencies: []ValueFrequency{{Value: []byte("bob"), Frequency: 4, Percentage: 4.0}},
				HasIndex:         false,
			},
		},
		Table: TableStats{
			DiskSize: 4096, UncompressedSize: 8192, CompressionRatio: 0.5,
			BlockCount: 4, AvgBlockSize: 1024, IndexSize: 256, BloomFilterSize: 64,
			LevelCount: 1,
		},
		PartitionSize: PartitionSizeStats{
			Average: 800, Min: 10, Max: 4096, LargePartitionPct: 1.5,
			Histogram: []HistogramBucket{{StartSize: 0, EndSize: 4096, Count: 5, Percentage: 100.0}},
		},
		Compression: CompressionStats{
			Algorithm: "LZ4", OriginalSize: 8192, CompressedSize: 4096, Ratio: 0.5,
			CompressionSpeed: 100.0, DecompressionSpeed: 200.0, CompressedBlockCount: 4,
		},
		ExtraMetadata: map[string]string{"repaired_at": "0"},
	}
}

func TestStatisticsRoundTrip(t *testing.T) {
	s := sampleStats()
	buf := Encode(s)

	got, err := Decode(buf)
	require.NoError(t, err)
	assert.False(t, got.LegacyLayout)
	assert.Equal(t, s.Row, got.Row)
	assert.Equal(t, s.Timestamp, got.Timestamp)
	require.Len(t, got.Columns, 2)
	assert.Equal(t, s.Columns[0].Name, got.Columns[0].Name)
	assert.Equal(t, s.Columns[1].Min, got.Columns[1].Min)
	assert.Equal(t, s.Table, got.Table)
	assert.Equal(t, s.PartitionSize, got.PartitionSize)
	assert.Equal(t, s.Compression, got.Compression)
	assert.Equal(t, s.ExtraMetadata, got.ExtraMetadata)
}

func TestStatisticsRoundTrip_NoTTL(t *testing.T) {
	s := sampleStats()
	s.Timestamp.HasTTL = false
	s.Timestamp.MinTTL, s.Timestamp.MaxTTL, s.Timestamp.RowsWithTTL = 0, 0, 0
	buf := Encode(s)

	got, err := Decode(buf)
	require.NoError(t, err)
	assert.False(t, got.Timestamp.HasTTL)
}

func TestStatisticsCorruptCRC(t *testing.T) {
	s := sampleStats()
	buf := Encode(s)
	buf[len(buf)-1] ^= 0xFF // corrupt a byte in the body after header

	_, err := Decode(buf)
	require.Error(t, err)
	var corrupt *errs.CorruptFormat
	require.ErrorAs(t, err, &corrupt)
}

func TestStatisticsTruncated(t *testing.T) {
	s := sampleStats()
	buf := Encode(s)
	_, err := Decode(buf[:10])
	require.Error(t, err)
}
