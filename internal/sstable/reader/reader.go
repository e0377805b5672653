package reader

import (
	"fmt"
	"sort"

	"github.com/pmcfadin/cqlite-sub003/internal/query/token"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/cache"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/compress"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/errs"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/index"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/mmap"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/schema"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/stats"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/value"
)

// Options configures the tunables spec.md §4.7 and §4.6 expose as
// configuration inputs rather than fixed constants.
type Options struct {
	ByteBudget     int64
	MMapThreshold  int64
	PrefetchWindow int64
	SummaryStride  int
}

// DefaultOptions returns the spec's documented defaults.
func DefaultOptions() Options {
	return Options{
		ByteBudget:     cache.DefaultByteBudget,
		MMapThreshold:  mmap.DefaultThreshold,
		PrefetchWindow: cache.DefaultWindowSize,
		SummaryStride:  index.DefaultStride,
	}
}

// Validate rejects tunables that can never produce a working reader,
// surfacing a usage error at CLI flag-parsing time rather than a confusing
// failure partway through opening a file.
func (o Options) Validate() error {
	if o.ByteBudget <= 0 {
		return &errs.Unsupported{Feature: "cache byte budget must be positive"}
	}
	if o.MMapThreshold < 0 {
		return &errs.Unsupported{Feature: "mmap threshold must not be negative"}
	}
	if o.PrefetchWindow < 0 {
		return &errs.Unsupported{Feature: "prefetch window must not be negative"}
	}
	if o.SummaryStride <= 0 {
		return &errs.Unsupported{Feature: "summary stride must be positive"}
	}
	return nil
}

// Files names the five (or six, with CompressionInfo) components of one
// SSTable generation (spec.md §6).
type Files struct {
	Data             string
	Index            string
	Summary          string
	Filter           string
	Statistics       string
	CompressionInfo  string // empty when the table is uncompressed
}

// SSTableReader serves point lookups, range scans, and single-partition
// iteration over one SSTable generation (spec.md §4.8).
type SSTableReader struct {
	schema   *schema.TableSchema
	header   *Header
	partIdx  *index.PartitionIndex
	summary  *index.Summary
	bloom    *index.BloomFilter
	statsRec *stats.Statistics
	chunks   *compress.ChunkMap
	codec    compress.Codec

	data  *mmap.File
	cache *cache.Cache
	dec   *value.Decoder
}

// Open loads all sidecar files and prepares the reader. tableSchema must
// already be validated (schema.TableSchema.Validate).
func Open(files Files, tableSchema *schema.TableSchema, opts Options) (*SSTableReader, error) {
	data, err := mmap.Open(files.Data, opts.MMapThreshold)
	if err != nil {
		return nil, fmt.Errorf("reader: open data file: %w", err)
	}

	header, _, err := decodeHeader(data.Bytes())
	if err != nil {
		data.Close()
		return nil, fmt.Errorf("reader: decode header: %w", err)
	}
	header.Schema = tableSchema

	idxFile, err := mmap.Open(files.Index, opts.MMapThreshold)
	if err != nil {
		data.Close()
		return nil, fmt.Errorf("reader: open index file: %w", err)
	}
	partIdx, err := index.Decode(idxFile.Bytes())
	idxFile.Close()
	if err != nil {
		data.Close()
		return nil, fmt.Errorf("reader: decode partition index: %w", err)
	}

	// A precomputed `-Summary.db` is a cache of BuildSummary's output; this
	// reader always (re)derives it from the partition index so the stride
	// stays configurable at open time regardless of what was on disk.
	summary := index.BuildSummary(partIdx, opts.SummaryStride)

	var bloom *index.BloomFilter
	if files.Filter != "" {
		bf, err := mmap.Open(files.Filter, opts.MMapThreshold)
		if err != nil {
			data.Close()
			return nil, fmt.Errorf("reader: open filter file: %w", err)
		}
		bloom, err = index.DecodeBloomFilter(bf.Bytes())
		bf.Close()
		if err != nil {
			data.Close()
			return nil, fmt.Errorf("reader: decode bloom filter: %w", err)
		}
	}

	sf, err := mmap.Open(files.Statistics, opts.MMapThreshold)
	if err != nil {
		data.Close()
		return nil, fmt.Errorf("reader: open statistics file: %w", err)
	}
	statsRec, err := stats.Decode(sf.Bytes())
	sf.Close()
	if err != nil {
		data.Close()
		return nil, fmt.Errorf("reader: decode statistics: %w", err)
	}

	codec, err := compress.ForAlgorithm(header.Compression)
	if err != nil {
		data.Close()
		return nil, fmt.Errorf("reader: %w", err)
	}

	var chunks *compress.ChunkMap
	if codec.Name() != compress.None && files.CompressionInfo != "" {
		cf, err := mmap.Open(files.CompressionInfo, opts.MMapThreshold)
		if err != nil {
			data.Close()
			return nil, fmt.Errorf("reader: open compression info: %w", err)
		}
		chunks, err = compress.Decode(cf.Bytes())
		cf.Close()
		if err != nil {
			data.Close()
			return nil, fmt.Errorf("reader: decode compression info: %w", err)
		}
	}

	return &SSTableReader{
		schema:   tableSchema,
		header:   header,
		partIdx:  partIdx,
		summary:  summary,
		bloom:    bloom,
		statsRec: statsRec,
		chunks:   chunks,
		codec:    codec,
		data:     data,
		cache:    cache.New(opts.ByteBudget),
		dec:      value.NewDecoder(),
	}, nil
}

// Close releases the memory-mapped data file.
func (r *SSTableReader) Close() error { return r.data.Close() }

// Statistics returns the table's decoded sidecar statistics.
func (r *SSTableReader) Statistics() *stats.Statistics { return r.statsRec }

// CacheStats returns the block cache's hit/miss counters.
func (r *SSTableReader) CacheStats() cache.Stats { return r.cache.Stats() }

// uncompressedRange returns the logical (post-decompression) byte range
// [offset, offset+length), transparently assembling it from one or more
// compressed chunks when the table is compressed.
func (r *SSTableReader) uncompressedRange(offset, length int64) ([]byte, error) {
	if r.codec.Name() == compress.None || r.chunks == nil {
		raw := r.data.Bytes()
		if offset < 0 || offset+length > int64(len(raw)) {
			return nil, &errs.CorruptFormat{Offset: offset, Reason: "range exceeds data file length"}
		}
		return raw[offset : offset+length], nil
	}

	out := make([]byte, 0, length)
	pos := offset
	for int64(len(out)) < length {
		chunk, ok := r.chunks.Lookup(pos)
		if !ok {
			return nil, &errs.CorruptFormat{Offset: pos, Reason: "no compression chunk covers offset"}
		}
		block, err := r.decompressChunk(chunk)
		if err != nil {
			return nil, err
		}
		within := pos - chunk.UncompressedOffset
		if within < 0 || within > int64(len(block)) {
			return nil, &errs.CorruptFormat{Offset: pos, Reason: "offset outside decompressed chunk bounds"}
		}
		take := int64(len(block)) - within
		remaining := length - int64(len(out))
		if take > remaining {
			take = remaining
		}
		out = append(out, block[within:within+take]...)
		pos += take
	}
	return out, nil
}

func (r *SSTableReader) decompressChunk(chunk compress.Chunk) ([]byte, error) {
	if blk, ok := r.cache.Get(chunk.CompressedOffset); ok {
		return blk.Data, nil
	}
	raw := r.data.Bytes()
	if chunk.CompressedOffset < 0 || chunk.CompressedOffset+chunk.CompressedLength > int64(len(raw)) {
		return nil, &errs.CorruptFormat{Offset: chunk.CompressedOffset, Reason: "compressed chunk exceeds data file length"}
	}
	compressed := raw[chunk.CompressedOffset : chunk.CompressedOffset+chunk.CompressedLength]
	uncompressedLen := int(r.chunks.ChunkLength)
	decoded, err := r.codec.Decompress(compressed, uncompressedLen)
	if err != nil {
		return nil, fmt.Errorf("reader: decompress chunk at %d: %w", chunk.CompressedOffset, err)
	}
	r.cache.Put(&cache.Block{Offset: chunk.CompressedOffset, Data: decoded})
	return decoded, nil
}

// findViaSummary narrows the partition index to a single summary page
// before binary-searching within it, per spec.md §4.8.
func (r *SSTableReader) findViaSummary(partitionKey []byte) (index.Entry, bool) {
	start, end := r.summary.PageFor(partitionKey, len(r.partIdx.Entries))
	page := &index.PartitionIndex{Entries: r.partIdx.Entries[start:end]}
	return page.Find(partitionKey)
}

// Get implements spec.md §4.8's point lookup: bloom filter probe,
// summary-narrowed binary search, single block read and decode.
func (r *SSTableReader) Get(partitionKey []byte) (*Partition, bool, error) {
	if r.bloom != nil && !r.bloom.MightContain(partitionKey) {
		return nil, false, nil
	}
	entry, ok := r.findViaSummary(partitionKey)
	if !ok {
		return nil, false, nil
	}
	buf, err := r.uncompressedRange(entry.FileOffset, entry.Width)
	if err != nil {
		return nil, false, err
	}
	p, err := decodePartition(buf, r.schema, r.dec)
	if err != nil {
		return nil, false, err
	}
	return p, true, nil
}

// IteratePartition returns the single named partition's rows, or an empty,
// non-error result if the partition does not exist (spec.md §4.8: NotFound
// is not an error).
func (r *SSTableReader) IteratePartition(partitionKey []byte) ([]Row, error) {
	p, ok, err := r.Get(partitionKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return p.Rows, nil
}

// RangeScan locates the first partition >= lower via the summary and index,
// then decodes partitions until upper is exceeded or limit rows have been
// emitted across all partitions combined. A nil upper means unbounded; a
// limit <= 0 means unbounded. The partition index is organized by raw key
// bytes for binary search, which has no relation to Murmur3 partitioner
// token order; before returning, the collected partitions are sorted
// ascending by token to satisfy spec.md §4.11's range-scan ordering
// guarantee ("ascending by partition token").
func (r *SSTableReader) RangeScan(lower, upper []byte, limit int) ([]*Partition, error) {
	pageStart, pageEnd := r.summary.PageFor(lower, len(r.partIdx.Entries))
	page := &index.PartitionIndex{Entries: r.partIdx.Entries[pageStart:pageEnd]}
	start := pageStart + page.LowerBound(lower)
	var out []*Partition
	emitted := 0
	for i := start; i < len(r.partIdx.Entries); i++ {
		e := r.partIdx.Entries[i]
		if upper != nil && compareKeys(e.PartitionKey, upper) > 0 {
			break
		}
		buf, err := r.uncompressedRange(e.FileOffset, e.Width)
		if err != nil {
			return nil, err
		}
		p, err := decodePartition(buf, r.schema, r.dec)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
		emitted += len(p.Rows)
		if limit > 0 && emitted >= limit {
			break
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return token.Less(token.ForKey(out[i].Key), token.ForKey(out[j].Key))
	})
	return out, nil
}

func compareKeys(a, b []byte) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
