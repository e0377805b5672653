package reader

import (
	"encoding/binary"

	"github.com/pmcfadin/cqlite-sub003/internal/sstable/errs"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/value"
)

// EncodeKeyTuple packs a partition or clustering key's component values
// into the opaque byte string the data/index files carry for that key
// (spec.md §6 treats both as "length-prefixed bytes" without further
// constraint on internal structure). Each component is framed as a u16
// big-endian length followed by its primitive/complex encoding, so a
// multi-column key round-trips losslessly through DecodeKeyTuple; this is
// a simplification of Cassandra's on-wire CompositeType (which adds an
// end-of-component marker byte used for slice-boundary semantics this
// engine does not need).
func EncodeKeyTuple(values []value.Value) []byte {
	var out []byte
	for _, v := range values {
		payload := value.EncodePrimitiveOrComplex(v.Kind, v)
		var lenBuf [2]byte
		binary.BigEndian.PutUint16(lenBuf[:], uint16(len(payload)))
		out = append(out, lenBuf[:]...)
		out = append(out, payload...)
	}
	return out
}

// DecodeKeyTuple is the inverse of EncodeKeyTuple, decoding each component
// against its declared Kind in order.
func DecodeKeyTuple(buf []byte, kinds []value.Kind) ([]value.Value, error) {
	out := make([]value.Value, 0, len(kinds))
	off := 0
	for _, k := range kinds {
		if len(buf)-off < 2 {
			return nil, &errs.Truncated{Context: "key component length", Need: 2, Have: len(buf) - off}
		}
		n := int(binary.BigEndian.Uint16(buf[off:]))
		off += 2
		if n < 0 || n > len(buf)-off {
			return nil, &errs.CorruptFormat{Offset: int64(off), Reason: "key component overruns buffer"}
		}
		v, _, err := value.DecodePrimitive(k, buf[off:off+n])
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		off += n
	}
	return out, nil
}
