package value

import (
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/errs"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/varint"
)

func (d *Decoder) readCount(buf []byte) (int, int, error) {
	n, consumed, err := varint.Decode(buf)
	if err != nil {
		return 0, 0, err
	}
	if n < 0 || n > int64(d.MaxCount) {
		return 0, 0, &errs.CountLimit{Limit: d.MaxCount, Got: int(n)}
	}
	return int(n), consumed, nil
}

func readTypeID(buf []byte) (Kind, int, error) {
	if err := need(buf, 1, "type id"); err != nil {
		return 0, 0, err
	}
	k, err := KindFor(TypeID(buf[0]))
	if err != nil {
		return 0, 0, err
	}
	return k, 1, nil
}

// decodeListOrSet decodes `[count][elem_type_id][elements...]`. List and set
// share this wire layout; set preserves insertion order on decode, with
// de-duplication assumed already performed server-side (spec.md §3).
func (d *Decoder) decodeListOrSet(k Kind, buf []byte, depth int) (Value, int, error) {
	off := 0
	count, n, err := d.readCount(buf[off:])
	if err != nil {
		return Value{}, 0, err
	}
	off += n

	elemKind, n, err := readTypeID(buf[off:])
	if err != nil {
		return Value{}, 0, err
	}
	off += n

	elems := make([]Value, 0, count)
	for i := 0; i < count; i++ {
		v, n, err := d.decodeElement(elemKind, buf[off:], depth)
		if err != nil {
			return Value{}, 0, err
		}
		off += n
		elems = append(elems, v)
	}
	return Value{Kind: k, List: elems}, off, nil
}

// EncodeListOrSet is the inverse of decodeListOrSet.
func EncodeListOrSet(elemKind Kind, elems []Value) []byte {
	out := varint.Encode(int64(len(elems)))
	out = append(out, byte(TypeIDFor(elemKind)))
	for _, v := range elems {
		out = append(out, EncodeElement(elemKind, v)...)
	}
	return out
}

// decodeMap decodes `[count][key_type_id][val_type_id][(key,val)...]`,
// erroring on duplicate keys when StrictMapKeys is set (the spec default),
// otherwise dropping later duplicates.
func (d *Decoder) decodeMap(buf []byte, depth int) (Value, int, error) {
	off := 0
	count, n, err := d.readCount(buf[off:])
	if err != nil {
		return Value{}, 0, err
	}
	off += n

	keyKind, n, err := readTypeID(buf[off:])
	if err != nil {
		return Value{}, 0, err
	}
	off += n
	valKind, n, err := readTypeID(buf[off:])
	if err != nil {
		return Value{}, 0, err
	}
	off += n

	entries := make([]MapEntry, 0, count)
	seen := make(map[string]struct{}, count)
	for i := 0; i < count; i++ {
		kv, n, err := d.decodeElement(keyKind, buf[off:], depth)
		if err != nil {
			return Value{}, 0, err
		}
		off += n
		vv, n, err := d.decodeElement(valKind, buf[off:], depth)
		if err != nil {
			return Value{}, 0, err
		}
		off += n

		sig := mapKeySignature(kv)
		if _, dup := seen[sig]; dup {
			if d.StrictMapKeys {
				return Value{}, 0, &errs.CorruptFormat{Reason: "duplicate map key"}
			}
			continue
		}
		seen[sig] = struct{}{}
		entries = append(entries, MapEntry{Key: kv, Val: vv})
	}
	return Value{Kind: KindMap, Map: entries}, off, nil
}

// EncodeMap is the inverse of decodeMap.
func EncodeMap(keyKind, valKind Kind, entries []MapEntry) []byte {
	out := varint.Encode(int64(len(entries)))
	out = append(out, byte(TypeIDFor(keyKind)), byte(TypeIDFor(valKind)))
	for _, e := range entries {
		out = append(out, EncodeElement(keyKind, e.Key)...)
		out = append(out, EncodeElement(valKind, e.Val)...)
	}
	return out
}

// decodeTuple decodes `[count=n][n type ids][n elements]`.
func (d *Decoder) decodeTuple(buf []byte, depth int) (Value, int, error) {
	off := 0
	n, consumed, err := d.readCount(buf[off:])
	if err != nil {
		return Value{}, 0, err
	}
	off += consumed

	kinds := make([]Kind, n)
	for i := 0; i < n; i++ {
		k, consumed, err := readTypeID(buf[off:])
		if err != nil {
			return Value{}, 0, err
		}
		off += consumed
		kinds[i] = k
	}

	elems := make([]Value, n)
	for i := 0; i < n; i++ {
		v, consumed, err := d.decodeElement(kinds[i], buf[off:], depth)
		if err != nil {
			return Value{}, 0, err
		}
		off += consumed
		elems[i] = v
	}
	return Value{Kind: KindTuple, Tuple: elems}, off, nil
}

// EncodeTuple is the inverse of decodeTuple.
func EncodeTuple(kinds []Kind, elems []Value) []byte {
	out := varint.Encode(int64(len(elems)))
	for _, k := range kinds {
		out = append(out, byte(TypeIDFor(k)))
	}
	for i, v := range elems {
		out = append(out, EncodeElement(kinds[i], v)...)
	}
	return out
}

// decodeUDT decodes a self-describing user-defined type: its own name,
// field names and types, then the field values with i32-length framing, per
// spec.md §4.3.
func (d *Decoder) decodeUDT(buf []byte, depth int) (Value, int, error) {
	off := 0
	nameVal, n, err := decodeText(buf[off:], KindText, true)
	if err != nil {
		return Value{}, 0, err
	}
	off += n

	fieldCount, n, err := d.readCount(buf[off:])
	if err != nil {
		return Value{}, 0, err
	}
	off += n

	names := make([]string, fieldCount)
	kinds := make([]Kind, fieldCount)
	for i := 0; i < fieldCount; i++ {
		nv, n, err := decodeText(buf[off:], KindText, true)
		if err != nil {
			return Value{}, 0, err
		}
		off += n
		names[i] = nv.Text
		k, n, err := readTypeID(buf[off:])
		if err != nil {
			return Value{}, 0, err
		}
		off += n
		kinds[i] = k
	}

	fields := make([]UDTField, fieldCount)
	for i := 0; i < fieldCount; i++ {
		if err := need(buf[off:], 4, "udt field length"); err != nil {
			return Value{}, 0, err
		}
		length := int32(be32(buf[off:]))
		off += 4
		if length == -1 {
			fields[i] = UDTField{Name: names[i], Value: NullValue(kinds[i])}
			continue
		}
		if length < 0 {
			return Value{}, 0, &errs.CorruptFormat{Reason: "negative udt field length"}
		}
		if err := need(buf[off:], int(length), "udt field payload"); err != nil {
			return Value{}, 0, err
		}
		fv, _, err := d.decodeFramed(kinds[i], buf[off:off+int(length)], depth+1)
		if err != nil {
			return Value{}, 0, err
		}
		off += int(length)
		fields[i] = UDTField{Name: names[i], Value: fv}
	}

	return Value{Kind: KindUDT, UDT: &UDTValue{
		TypeName: nameVal.Text,
		Fields:   fields,
	}}, off, nil
}

// EncodeUDT is the inverse of decodeUDT. fieldKinds must align with
// u.Fields by index.
func EncodeUDT(u *UDTValue, fieldKinds []Kind) []byte {
	out := EncodeText(KindText, u.TypeName)
	out = append(out, varint.Encode(int64(len(u.Fields)))...)
	for i, f := range u.Fields {
		out = append(out, EncodeText(KindText, f.Name)...)
		out = append(out, byte(TypeIDFor(fieldKinds[i])))
	}
	for i, f := range u.Fields {
		if f.Value.Null {
			out = append(out, 0xFF, 0xFF, 0xFF, 0xFF) // -1 as i32 BE
			continue
		}
		payload := EncodePrimitiveOrComplex(fieldKinds[i], f.Value)
		lb := make([]byte, 4)
		putBE32(lb, int32(len(payload)))
		out = append(out, lb...)
		out = append(out, payload...)
	}
	return out
}

func be32(buf []byte) uint32 {
	return uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3])
}

func putBE32(out []byte, v int32) {
	u := uint32(v)
	out[0] = byte(u >> 24)
	out[1] = byte(u >> 16)
	out[2] = byte(u >> 8)
	out[3] = byte(u)
}

// mapKeySignature produces a comparable signature for duplicate-key
// detection. It is a best-effort byte signature, not a canonical encoding.
func mapKeySignature(v Value) string {
	return string(EncodeElement(v.Kind, v))
}

// EncodeElement encodes one length-prefixed collection/tuple member: a
// varint length followed by the payload, or a -1 length for null.
func EncodeElement(k Kind, v Value) []byte {
	if v.Null {
		return varint.Encode(-1)
	}
	payload := EncodePrimitiveOrComplex(k, v)
	out := varint.Encode(int64(len(payload)))
	return append(out, payload...)
}

// EncodePrimitiveOrComplex encodes v's payload only (no outer length
// framing), dispatching to the primitive or complex encoder by kind.
func EncodePrimitiveOrComplex(k Kind, v Value) []byte {
	switch k {
	case KindBool:
		return EncodeBool(v.Bool)
	case KindTinyInt, KindSmallInt, KindInt, KindBigInt, KindCounter:
		return EncodeFixedInt(k, v.Int64)
	case KindFloat:
		return EncodeFloat32(v.Float32)
	case KindDouble:
		return EncodeFloat64(v.Float64)
	case KindAscii, KindText:
		return []byte(v.Text) // length framing supplied by caller (EncodeElement) or EncodeText for standalone use
	case KindBlob:
		return v.Blob
	case KindUUID, KindTimeUUID:
		return EncodeUUID(v.UUID)
	case KindTimestamp:
		return EncodeTimestamp(v.Micros)
	case KindDate:
		return EncodeDate(v.Micros)
	case KindTime:
		return EncodeTime(v.Micros)
	case KindVarint:
		return EncodeVarintValue(v.Int64)
	case KindDecimal:
		return EncodeDecimal(v.Decimal)
	case KindDuration:
		return EncodeDuration(v.Duration)
	case KindInet:
		return v.Blob
	case KindList, KindSet:
		elemKind := KindText
		if len(v.List) > 0 {
			elemKind = v.List[0].Kind
		}
		return encodeListOrSetPayload(elemKind, v.List)
	case KindMap:
		keyKind, valKind := KindText, KindText
		if len(v.Map) > 0 {
			keyKind, valKind = v.Map[0].Key.Kind, v.Map[0].Val.Kind
		}
		return EncodeMap(keyKind, valKind, v.Map)
	case KindTuple:
		kinds := make([]Kind, len(v.Tuple))
		for i, e := range v.Tuple {
			kinds[i] = e.Kind
		}
		return EncodeTuple(kinds, v.Tuple)
	case KindUDT:
		kinds := make([]Kind, len(v.UDT.Fields))
		for i, f := range v.UDT.Fields {
			kinds[i] = f.Value.Kind
		}
		return EncodeUDT(v.UDT, kinds)
	default:
		return nil
	}
}

func encodeListOrSetPayload(elemKind Kind, elems []Value) []byte {
	out := varint.Encode(int64(len(elems)))
	out = append(out, byte(TypeIDFor(elemKind)))
	for _, v := range elems {
		out = append(out, EncodeElement(elemKind, v)...)
	}
	return out
}
