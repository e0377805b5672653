// Package index implements the partition index, index summary, and bloom
// filter that together let an SSTable reader locate a partition's on-disk
// offset without scanning the data file (spec.md §4.6).
package index

import (
	"bytes"
	"sort"

	"github.com/pmcfadin/cqlite-sub003/internal/sstable/errs"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/varint"
)

// Entry is one partition index record: the partition key, its byte offset
// in the data file, and the partition's on-disk width.
type Entry struct {
	PartitionKey []byte
	FileOffset   int64
	Width        int64
}

// PartitionIndex is the full sorted sequence of Entry records decoded from
// `-Index.db`.
type PartitionIndex struct {
	Entries []Entry
}

// Decode parses a `-Index.db` byte stream: a flat sequence of
// `{partition_key, file_offset, width_in_bytes}` records with no outer
// count, terminated by end of buffer.
func Decode(buf []byte) (*PartitionIndex, error) {
	var entries []Entry
	off := 0
	for off < len(buf) {
		keyLen, n, err := varint.Decode(buf[off:])
		if err != nil {
			return nil, err
		}
		off += n
		if keyLen < 0 || int(keyLen) > len(buf)-off {
			return nil, &errs.CorruptFormat{Offset: int64(off), Reason: "partition index key length overruns buffer"}
		}
		key := buf[off : off+int(keyLen)]
		off += int(keyLen)

		fileOffset, n, err := varint.Decode(buf[off:])
		if err != nil {
			return nil, err
		}
		off += n

		width, n, err := varint.Decode(buf[off:])
		if err != nil {
			return nil, err
		}
		off += n

		entries = append(entries, Entry{PartitionKey: key, FileOffset: fileOffset, Width: width})
	}
	return &PartitionIndex{Entries: entries}, nil
}

// Encode is the inverse of Decode.
func Encode(idx *PartitionIndex) []byte {
	var out []byte
	for _, e := range idx.Entries {
		out = append(out, varint.Encode(int64(len(e.PartitionKey)))...)
		out = append(out, e.PartitionKey...)
		out = append(out, varint.Encode(e.FileOffset)...)
		out = append(out, varint.Encode(e.Width)...)
	}
	return out
}

// Find performs an exact-match binary search for key, returning the
// matching entry and true, or the zero Entry and false.
func (idx *PartitionIndex) Find(key []byte) (Entry, bool) {
	i := sort.Search(len(idx.Entries), func(i int) bool {
		return bytes.Compare(idx.Entries[i].PartitionKey, key) >= 0
	})
	if i < len(idx.Entries) && bytes.Equal(idx.Entries[i].PartitionKey, key) {
		return idx.Entries[i], true
	}
	return Entry{}, false
}

// LowerBound returns the index of the first entry with key >= lower, or
// len(Entries) if none qualifies. Used by range scans (spec.md §4.8).
func (idx *PartitionIndex) LowerBound(lower []byte) int {
	return sort.Search(len(idx.Entries), func(i int) bool {
		return bytes.Compare(idx.Entries[i].PartitionKey, lower) >= 0
	})
}
