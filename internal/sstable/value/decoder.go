package value

import (
	"unicode/utf8"

	"github.com/pmcfadin/cqlite-sub003/internal/sstable/errs"
)

// DefaultMaxCount and DefaultMaxDepth are the decode safety ceilings
// mandated by spec.md §3's invariants.
const (
	DefaultMaxCount = 1_048_576
	DefaultMaxDepth = 10
)

// Decoder decodes Values with configurable safety ceilings and strictness,
// replacing the global mutable parser configuration the redesign note in
// spec.md §9 flags; every reader/executor constructs its own Decoder.
type Decoder struct {
	MaxCount int
	MaxDepth int
	// StrictMapKeys, when true (the spec default), makes a duplicate map
	// key a decode error; when false, later duplicates are dropped.
	StrictMapKeys bool
}

// NewDecoder returns a Decoder configured with the spec's default ceilings
// and strict duplicate-key handling.
func NewDecoder() *Decoder {
	return &Decoder{
		MaxCount:      DefaultMaxCount,
		MaxDepth:      DefaultMaxDepth,
		StrictMapKeys: true,
	}
}

// DecodeCell decodes one column cell of declared kind k from buf. The caller
// has already stripped the cell's own varint length prefix (the row layout's
// per-cell framing), so buf is the bare payload and decoding goes through
// decodeFramed rather than the top-level decode path: a framed text/blob/
// ascii/inet value carries no length prefix of its own. frozen marks that
// the schema declared this column frozen<k>; the decoded value is identical
// to an unfrozen k except the Frozen flag is set, per spec.md §3 ("frozen<T>
// decodes identically to T").
func (d *Decoder) DecodeCell(k Kind, frozen bool, buf []byte) (Value, int, error) {
	v, n, err := d.decodeFramed(k, buf, 0)
	if err != nil {
		return Value{}, 0, err
	}
	v.Frozen = frozen
	return v, n, nil
}

// decodeElement decodes one length-prefixed collection/tuple member: a C1
// varint length (-1 meaning null) followed by that many payload bytes
// carrying a value of kind elemKind, per spec.md §4.3.
func (d *Decoder) decodeElement(elemKind Kind, buf []byte, depth int) (Value, int, error) {
	n, consumed, err := decodeLength(buf)
	if err != nil {
		return Value{}, 0, err
	}
	if n == -1 {
		return NullValue(elemKind), consumed, nil
	}
	if n < 0 {
		return Value{}, 0, &errs.CorruptFormat{Reason: "negative element length"}
	}
	total := consumed + int(n)
	if err := need(buf, total, "collection element"); err != nil {
		return Value{}, 0, err
	}
	inner, _, err := d.decodeFramed(elemKind, buf[consumed:total], depth+1)
	if err != nil {
		return Value{}, 0, err
	}
	return inner, total, nil
}

// decodeFramed decodes a value whose byte length is already fixed by an
// enclosing frame (a cell's own length prefix, a collection/tuple element's
// length prefix, or a UDT field's i32 length). A framed text/blob/ascii/inet
// value carries no additional length prefix of its own — the frame already
// supplies it — so the entire slice is the payload. Fixed-width primitives,
// varint-shaped types, and self-framing nested collections need no framing
// information and simply delegate.
func (d *Decoder) decodeFramed(k Kind, buf []byte, depth int) (Value, int, error) {
	if depth > d.MaxDepth {
		return Value{}, 0, &errs.DepthLimit{Limit: d.MaxDepth}
	}
	switch k {
	case KindAscii, KindText:
		s := string(buf)
		if k == KindText && !utf8.ValidString(s) {
			return Value{}, 0, &errs.CorruptFormat{Reason: "invalid UTF-8 in " + k.String()}
		}
		return Value{Kind: k, Text: s}, len(buf), nil
	case KindBlob, KindInet:
		b := make([]byte, len(buf))
		copy(b, buf)
		return Value{Kind: k, Blob: b}, len(buf), nil
	case KindList, KindSet:
		return d.decodeListOrSet(k, buf, depth)
	case KindMap:
		return d.decodeMap(buf, depth)
	case KindTuple:
		return d.decodeTuple(buf, depth)
	case KindUDT:
		return d.decodeUDT(buf, depth)
	default:
		return DecodePrimitive(k, buf)
	}
}
