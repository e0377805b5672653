package value

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/pmcfadin/cqlite-sub003/internal/sstable/errs"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/varint"
)

// DecodePrimitive decodes a single non-collection value of the given kind
// from the front of buf, per spec.md §4.2, and returns the number of bytes
// consumed. It does not handle KindList/KindSet/KindMap/KindTuple/KindUDT;
// use the complex decoder (complex.go) for those.
func DecodePrimitive(k Kind, buf []byte) (Value, int, error) {
	switch k {
	case KindBool:
		return decodeBool(buf)
	case KindTinyInt:
		return decodeFixedInt(buf, 1, k)
	case KindSmallInt:
		return decodeFixedInt(buf, 2, k)
	case KindInt:
		return decodeFixedInt(buf, 4, k)
	case KindBigInt, KindCounter:
		return decodeFixedInt(buf, 8, k)
	case KindFloat:
		return decodeFloat32(buf)
	case KindDouble:
		return decodeFloat64(buf)
	case KindAscii:
		return decodeText(buf, KindAscii, false)
	case KindText:
		return decodeText(buf, KindText, true)
	case KindBlob:
		return decodeBlob(buf)
	case KindUUID:
		return decodeUUID(buf, KindUUID)
	case KindTimeUUID:
		return decodeUUID(buf, KindTimeUUID)
	case KindTimestamp:
		return decodeTimestamp(buf)
	case KindDate:
		return decodeDate(buf)
	case KindTime:
		return decodeTime(buf)
	case KindVarint:
		return decodeVarintValue(buf)
	case KindDecimal:
		return decodeDecimal(buf)
	case KindDuration:
		return decodeDuration(buf)
	case KindInet:
		return decodeInet(buf)
	default:
		return Value{}, 0, &errs.CorruptFormat{Reason: "not a primitive kind: " + k.String()}
	}
}

func need(buf []byte, n int, context string) error {
	if len(buf) < n {
		return &errs.Truncated{Context: context, Need: n, Have: len(buf)}
	}
	return nil
}

func decodeBool(buf []byte) (Value, int, error) {
	if err := need(buf, 1, "boolean"); err != nil {
		return Value{}, 0, err
	}
	return Value{Kind: KindBool, Bool: buf[0] != 0}, 1, nil
}

func EncodeBool(b bool) []byte {
	if b {
		return []byte{1}
	}
	return []byte{0}
}

func decodeFixedInt(buf []byte, width int, k Kind) (Value, int, error) {
	if err := need(buf, width, k.String()); err != nil {
		return Value{}, 0, err
	}
	var v int64
	switch width {
	case 1:
		v = int64(int8(buf[0]))
	case 2:
		v = int64(int16(binary.BigEndian.Uint16(buf)))
	case 4:
		v = int64(int32(binary.BigEndian.Uint32(buf)))
	case 8:
		v = int64(binary.BigEndian.Uint64(buf))
	}
	return Value{Kind: k, Int64: v}, width, nil
}

// EncodeFixedInt encodes v as a two's-complement big-endian integer of the
// width appropriate to k (1/2/4/8 bytes for tinyint/smallint/int/bigint).
func EncodeFixedInt(k Kind, v int64) []byte {
	switch k {
	case KindTinyInt:
		return []byte{byte(int8(v))}
	case KindSmallInt:
		out := make([]byte, 2)
		binary.BigEndian.PutUint16(out, uint16(int16(v)))
		return out
	case KindInt:
		out := make([]byte, 4)
		binary.BigEndian.PutUint32(out, uint32(int32(v)))
		return out
	default: // bigint, counter
		out := make([]byte, 8)
		binary.BigEndian.PutUint64(out, uint64(v))
		return out
	}
}

func decodeFloat32(buf []byte) (Value, int, error) {
	if err := need(buf, 4, "float"); err != nil {
		return Value{}, 0, err
	}
	bits := binary.BigEndian.Uint32(buf)
	return Value{Kind: KindFloat, Float32: math.Float32frombits(bits)}, 4, nil
}

func EncodeFloat32(f float32) []byte {
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, math.Float32bits(f))
	return out
}

func decodeFloat64(buf []byte) (Value, int, error) {
	if err := need(buf, 8, "double"); err != nil {
		return Value{}, 0, err
	}
	bits := binary.BigEndian.Uint64(buf)
	return Value{Kind: KindDouble, Float64: math.Float64frombits(bits)}, 8, nil
}

func EncodeFloat64(f float64) []byte {
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, math.Float64bits(f))
	return out
}

// decodeLength reads the C1 varint length prefix used by text/blob/ascii
// and inet. A length of -1 signals null.
func decodeLength(buf []byte) (int64, int, error) {
	n, consumed, err := varint.Decode(buf)
	if err != nil {
		return 0, 0, err
	}
	return n, consumed, nil
}

func decodeText(buf []byte, k Kind, validateUTF8 bool) (Value, int, error) {
	n, consumed, err := decodeLength(buf)
	if err != nil {
		return Value{}, 0, err
	}
	if n == -1 {
		return NullValue(k), consumed, nil
	}
	if n < 0 {
		return Value{}, 0, &errs.CorruptFormat{Reason: "negative text length"}
	}
	total := consumed + int(n)
	if err := need(buf, total, k.String()); err != nil {
		return Value{}, 0, err
	}
	s := string(buf[consumed:total])
	if validateUTF8 && !utf8.ValidString(s) {
		return Value{}, 0, &errs.CorruptFormat{Reason: "invalid UTF-8 in " + k.String()}
	}
	return Value{Kind: k, Text: s}, total, nil
}

// EncodeText encodes an ascii/text value, including its varint length
// prefix.
func EncodeText(k Kind, s string) []byte {
	lp := varint.Encode(int64(len(s)))
	out := make([]byte, 0, len(lp)+len(s))
	out = append(out, lp...)
	out = append(out, s...)
	return out
}

func decodeBlob(buf []byte) (Value, int, error) {
	n, consumed, err := decodeLength(buf)
	if err != nil {
		return Value{}, 0, err
	}
	if n == -1 {
		return NullValue(KindBlob), consumed, nil
	}
	if n < 0 {
		return Value{}, 0, &errs.CorruptFormat{Reason: "negative blob length"}
	}
	total := consumed + int(n)
	if err := need(buf, total, "blob"); err != nil {
		return Value{}, 0, err
	}
	b := make([]byte, n)
	copy(b, buf[consumed:total])
	return Value{Kind: KindBlob, Blob: b}, total, nil
}

func EncodeBlob(b []byte) []byte {
	lp := varint.Encode(int64(len(b)))
	out := make([]byte, 0, len(lp)+len(b))
	out = append(out, lp...)
	out = append(out, b...)
	return out
}

func decodeUUID(buf []byte, k Kind) (Value, int, error) {
	if err := need(buf, 16, k.String()); err != nil {
		return Value{}, 0, err
	}
	var u [16]byte
	copy(u[:], buf[:16])
	return Value{Kind: k, UUID: u}, 16, nil
}

func EncodeUUID(u [16]byte) []byte {
	out := make([]byte, 16)
	copy(out, u[:])
	return out
}

func decodeTimestamp(buf []byte) (Value, int, error) {
	if err := need(buf, 8, "timestamp"); err != nil {
		return Value{}, 0, err
	}
	millis := int64(binary.BigEndian.Uint64(buf))
	return Value{Kind: KindTimestamp, Micros: millis * 1000}, 8, nil
}

// EncodeTimestamp encodes a Value.Micros (internal representation) back to
// the wire's millisecond form.
func EncodeTimestamp(micros int64) []byte {
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, uint64(micros/1000))
	return out
}

func decodeDate(buf []byte) (Value, int, error) {
	if err := need(buf, 4, "date"); err != nil {
		return Value{}, 0, err
	}
	days := binary.BigEndian.Uint32(buf)
	micros := int64(days) * 86400 * 1_000_000
	return Value{Kind: KindDate, Micros: micros}, 4, nil
}

func EncodeDate(micros int64) []byte {
	days := uint32(micros / (86400 * 1_000_000))
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, days)
	return out
}

func decodeTime(buf []byte) (Value, int, error) {
	if err := need(buf, 8, "time"); err != nil {
		return Value{}, 0, err
	}
	nanos := int64(binary.BigEndian.Uint64(buf))
	return Value{Kind: KindTime, Micros: nanos / 1000}, 8, nil
}

func EncodeTime(micros int64) []byte {
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, uint64(micros*1000))
	return out
}

func decodeVarintValue(buf []byte) (Value, int, error) {
	v, n, err := varint.Decode(buf)
	if err != nil {
		return Value{}, 0, err
	}
	return Value{Kind: KindVarint, Int64: v}, n, nil
}

func EncodeVarintValue(v int64) []byte { return varint.Encode(v) }

func decodeDecimal(buf []byte) (Value, int, error) {
	if err := need(buf, 4, "decimal scale"); err != nil {
		return Value{}, 0, err
	}
	scale := int32(binary.BigEndian.Uint32(buf))
	unscaled, n, err := varint.Decode(buf[4:])
	if err != nil {
		return Value{}, 0, err
	}
	return Value{Kind: KindDecimal, Decimal: DecimalValue{Scale: scale, Unscaled: unscaled}}, 4 + n, nil
}

func EncodeDecimal(d DecimalValue) []byte {
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, uint32(d.Scale))
	return append(out, varint.Encode(d.Unscaled)...)
}

func decodeDuration(buf []byte) (Value, int, error) {
	months, n1, err := varint.Decode(buf)
	if err != nil {
		return Value{}, 0, err
	}
	days, n2, err := varint.Decode(buf[n1:])
	if err != nil {
		return Value{}, 0, err
	}
	nanos, n3, err := varint.Decode(buf[n1+n2:])
	if err != nil {
		return Value{}, 0, err
	}
	return Value{Kind: KindDuration, Duration: DurationValue{
		Months: int32(months),
		Days:   int32(days),
		Nanos:  nanos,
	}}, n1 + n2 + n3, nil
}

func EncodeDuration(d DurationValue) []byte {
	out := varint.Encode(int64(d.Months))
	out = append(out, varint.Encode(int64(d.Days))...)
	out = append(out, varint.Encode(d.Nanos)...)
	return out
}

func decodeInet(buf []byte) (Value, int, error) {
	n, consumed, err := decodeLength(buf)
	if err != nil {
		return Value{}, 0, err
	}
	if n == -1 {
		return NullValue(KindInet), consumed, nil
	}
	if n != 4 && n != 16 {
		return Value{}, 0, &errs.CorruptFormat{Reason: "inet length must be 4 or 16"}
	}
	total := consumed + int(n)
	if err := need(buf, total, "inet"); err != nil {
		return Value{}, 0, err
	}
	b := make([]byte, n)
	copy(b, buf[consumed:total])
	return Value{Kind: KindInet, Blob: b}, total, nil
}

func EncodeInet(addr []byte) []byte {
	lp := varint.Encode(int64(len(addr)))
	out := make([]byte, 0, len(lp)+len(addr))
	out = append(out, lp...)
	out = append(out, addr...)
	return out
}
