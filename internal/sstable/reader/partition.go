package reader

import (
	"encoding/binary"

	"github.com/pmcfadin/cqlite-sub003/internal/sstable/errs"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/schema"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/value"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/varint"
)

// DeletionInfo is a partition's 12-byte deletion marker: a 4-byte local
// deletion time and an 8-byte marked-for-delete-at timestamp (spec.md §6).
// A LocalDeletionTime of 0 means "not deleted".
type DeletionInfo struct {
	LocalDeletionTime int32
	MarkedForDeleteAt int64
}

func (d DeletionInfo) Live() bool { return d.LocalDeletionTime == 0 }

// RowFlags are the bits of a row's flags byte.
type RowFlags uint8

const (
	FlagHasDeletion RowFlags = 1 << iota
	FlagStatic
)

// Row is one decoded clustering row: its clustering key prefix and the
// regular-column cells present on it. Cells are sparse: a column with no
// entry in Cells was not written to this row (spec.md §6 leaves per-row
// column presence unspecified beyond "cells"; this reader treats a row as a
// presence-bit followed by a framed value per schema.Regular column, the
// natural reading of Cassandra's storage-engine sparsity -- see
// DESIGN.md).
type Row struct {
	ClusteringPrefix []byte
	Flags            RowFlags
	Cells            map[string]value.Value
}

// Partition is one decoded partition: its key, deletion marker, and rows in
// on-disk (clustering) order.
type Partition struct {
	Key      []byte
	Deletion DeletionInfo
	Rows     []Row
}

// decodePartition decodes one partition occupying exactly buf (its width,
// per the partition index entry that located it).
func decodePartition(buf []byte, s *schema.TableSchema, dec *value.Decoder) (*Partition, error) {
	off := 0
	keyLen, n, err := varint.Decode(buf[off:])
	if err != nil {
		return nil, err
	}
	off += n
	if keyLen < 0 || int(keyLen) > len(buf)-off {
		return nil, &errs.CorruptFormat{Offset: int64(off), Reason: "partition key length overruns buffer"}
	}
	key := buf[off : off+int(keyLen)]
	off += int(keyLen)

	if len(buf)-off < 12 {
		return nil, &errs.Truncated{Context: "partition deletion info", Need: 12, Have: len(buf) - off}
	}
	del := DeletionInfo{
		LocalDeletionTime: int32(binary.BigEndian.Uint32(buf[off:])),
		MarkedForDeleteAt: int64(binary.BigEndian.Uint64(buf[off+4:])),
	}
	off += 12

	p := &Partition{Key: key, Deletion: del}
	for off < len(buf) {
		row, n, err := decodeRow(buf[off:], s, dec, key)
		if err != nil {
			return nil, err
		}
		off += n
		p.Rows = append(p.Rows, row)
	}
	return p, nil
}

func decodeRow(buf []byte, s *schema.TableSchema, dec *value.Decoder, partitionKey []byte) (Row, int, error) {
	off := 0
	prefixLen, n, err := varint.Decode(buf[off:])
	if err != nil {
		return Row{}, 0, err
	}
	off += n
	if prefixLen < 0 || int(prefixLen) > len(buf)-off {
		return Row{}, 0, &errs.CorruptFormat{Offset: int64(off), Reason: "clustering prefix length overruns buffer"}
	}
	prefix := buf[off : off+int(prefixLen)]
	off += int(prefixLen)

	if len(buf)-off < 1 {
		return Row{}, 0, &errs.Truncated{Context: "row flags", Need: 1, Have: len(buf) - off}
	}
	flags := RowFlags(buf[off])
	off++

	cells := make(map[string]value.Value, len(s.Regular))
	for _, col := range s.Regular {
		if len(buf)-off < 1 {
			return Row{}, 0, &errs.Truncated{Context: "cell presence", Need: 1, Have: len(buf) - off}
		}
		present := buf[off]
		off++
		if present == 0 {
			continue
		}
		cellLen, n, err := varint.Decode(buf[off:])
		if err != nil {
			return Row{}, 0, err
		}
		off += n
		if cellLen < 0 || int(cellLen) > len(buf)-off {
			return Row{}, 0, &errs.CorruptFormat{Offset: int64(off), Reason: "cell length overruns buffer"}
		}
		v, _, err := dec.DecodeCell(col.Type.Kind, col.Type.Frozen, buf[off:off+int(cellLen)])
		if err != nil {
			return Row{}, 0, &errs.RowDecode{PartitionKey: partitionKey, ClusteringPrefix: prefix, Err: err}
		}
		off += int(cellLen)
		cells[col.Name] = v
	}

	return Row{ClusteringPrefix: prefix, Flags: flags, Cells: cells}, off, nil
}

// EncodePartition is the inverse of decodePartition, used by tests to
// build synthetic data blocks without a live Cassandra-written fixture.
func EncodePartition(p *Partition, s *schema.TableSchema) []byte {
	out := varint.Encode(int64(len(p.Key)))
	out = append(out, p.Key...)

	var del [12]byte
	binary.BigEndian.PutUint32(del[0:4], uint32(p.Deletion.LocalDeletionTime))
	binary.BigEndian.PutUint64(del[4:12], uint64(p.Deletion.MarkedForDeleteAt))
	out = append(out, del[:]...)

	for _, row := range p.Rows {
		out = append(out, varint.Encode(int64(len(row.ClusteringPrefix)))...)
		out = append(out, row.ClusteringPrefix...)
		out = append(out, byte(row.Flags))
		for _, col := range s.Regular {
			v, ok := row.Cells[col.Name]
			if !ok {
				out = append(out, 0)
				continue
			}
			out = append(out, 1)
			payload := value.EncodePrimitiveOrComplex(col.Type.Kind, v)
			out = append(out, varint.Encode(int64(len(payload)))...)
			out = append(out, payload...)
		}
	}
	return out
}
