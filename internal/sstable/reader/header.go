// Package reader ties the schema, statistics, index, compression, cache,
// and value-codec packages together into the SSTable reader operations
// spec.md §4.8 defines: get, range_scan, and iterate_partition.
package reader

import (
	"encoding/binary"

	"github.com/pmcfadin/cqlite-sub003/internal/sstable/errs"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/schema"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/stats"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/varint"
)

// AcceptedMagics enumerates the Cassandra "big format" magic numbers this
// reader recognizes. Unknown magics are CorruptFormat, not an open-ended
// wildcard (spec.md §9).
var AcceptedMagics = map[uint32]string{
	0x6461_6200: "oa",  // "big" format, "oa" generation marker
	0xA007_0000: "bti", // trie-indexed ("bti") format generation marker
}

// Header is the parsed preamble of a `-Data.db` file.
type Header struct {
	Magic       uint32
	Version     uint16
	TableID     string
	Keyspace    string
	Table       string
	Schema      *schema.TableSchema
	Compression string
	Stats       *stats.Statistics
}

type byteReader struct {
	buf []byte
	off int
}

func (r *byteReader) need(n int, what string) error {
	if len(r.buf)-r.off < n {
		return &errs.Truncated{Context: what, Need: n, Have: len(r.buf) - r.off}
	}
	return nil
}

func (r *byteReader) u32() (uint32, error) {
	if err := r.need(4, "u32"); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v, nil
}

func (r *byteReader) u16() (uint16, error) {
	if err := r.need(2, "u16"); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return v, nil
}

func (r *byteReader) text() (string, error) {
	n, consumed, err := varint.Decode(r.buf[r.off:])
	if err != nil {
		return "", err
	}
	r.off += consumed
	if n < 0 || int(n) > len(r.buf)-r.off {
		return "", &errs.CorruptFormat{Offset: int64(r.off), Reason: "length-prefixed text overruns buffer"}
	}
	s := string(r.buf[r.off : r.off+int(n)])
	r.off += int(n)
	return s, nil
}

// decodeHeader parses the magic, version, and length-prefixed header block
// at the start of a `-Data.db` file. Inside the block it reads the keyspace,
// table, and compression algorithm names, each as length-prefixed text, and
// returns the offset just past the block; any further bytes in the block are
// skipped. Column names and types are not read from the header: the caller
// supplies them in the TableSchema passed to Open.
func decodeHeader(buf []byte) (*Header, int, error) {
	r := &byteReader{buf: buf}
	magic, err := r.u32()
	if err != nil {
		return nil, 0, err
	}
	if _, ok := AcceptedMagics[magic]; !ok {
		return nil, 0, &errs.CorruptFormat{Offset: 0, Reason: "unrecognized SSTable magic number"}
	}
	version, err := r.u16()
	if err != nil {
		return nil, 0, err
	}

	blockLen, consumed, err := varint.Decode(r.buf[r.off:])
	if err != nil {
		return nil, 0, err
	}
	r.off += consumed
	if blockLen < 0 || int(blockLen) > len(buf)-r.off {
		return nil, 0, &errs.CorruptFormat{Offset: int64(r.off), Reason: "header block length overruns buffer"}
	}
	blockEnd := r.off + int(blockLen)

	keyspace, err := r.text()
	if err != nil {
		return nil, 0, err
	}
	table, err := r.text()
	if err != nil {
		return nil, 0, err
	}
	compression, err := r.text()
	if err != nil {
		return nil, 0, err
	}

	h := &Header{
		Magic:       magic,
		Version:     version,
		Keyspace:    keyspace,
		Table:       table,
		Compression: compression,
	}
	return h, blockEnd, nil
}
