package value

import (
	"testing"

	"github.com/pmcfadin/cqlite-sub003/internal/sstable/errs"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/varint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int32BE(v int32) []byte {
	b := make([]byte, 4)
	putBE32(b, v)
	return b
}

// TestListOfInts_SpecExample is spec.md §8 scenario 4: List([1,2,3]).
func TestListOfInts_SpecExample(t *testing.T) {
	var buf []byte
	buf = append(buf, varint.Encode(3)...)
	buf = append(buf, byte(TypeIDInt))
	for _, n := range []int32{1, 2, 3} {
		buf = append(buf, varint.Encode(4)...)
		ib := make([]byte, 4)
		putBE32(ib, n)
		buf = append(buf, ib...)
	}

	d := NewDecoder()
	v, n, err := d.DecodeCell(KindList, false, buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	require.Len(t, v.List, 3)
	assert.Equal(t, int64(1), v.List[0].Int64)
	assert.Equal(t, int64(2), v.List[1].Int64)
	assert.Equal(t, int64(3), v.List[2].Int64)

	roundTrip := EncodeListOrSet(KindInt, v.List)
	assert.Equal(t, buf, roundTrip)
}

// TestMapWithNullValue_SpecExample is spec.md §8 scenario 5.
func TestMapWithNullValue_SpecExample(t *testing.T) {
	var buf []byte
	buf = append(buf, varint.Encode(3)...)
	buf = append(buf, byte(TypeIDVarchar), byte(TypeIDInt))

	appendEntry := func(key string, val *int32) {
		buf = append(buf, varint.Encode(int64(len(key)))...)
		buf = append(buf, key...)
		if val == nil {
			buf = append(buf, varint.Encode(-1)...)
			return
		}
		buf = append(buf, varint.Encode(4)...)
		ib := make([]byte, 4)
		putBE32(ib, *val)
		buf = append(buf, ib...)
	}
	one, three := int32(1), int32(3)
	appendEntry("key1", &one)
	appendEntry("key2", nil)
	appendEntry("key3", &three)

	d := NewDecoder()
	v, n, err := d.DecodeCell(KindMap, false, buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	require.Len(t, v.Map, 3)
	assert.Equal(t, "key1", v.Map[0].Key.Text)
	assert.Equal(t, int64(1), v.Map[0].Val.Int64)
	assert.Equal(t, "key2", v.Map[1].Key.Text)
	assert.True(t, v.Map[1].Val.Null)
	assert.Equal(t, "key3", v.Map[2].Key.Text)
	assert.Equal(t, int64(3), v.Map[2].Val.Int64)
}

func TestMap_DuplicateKeyStrictIsError(t *testing.T) {
	var buf []byte
	buf = append(buf, varint.Encode(2)...)
	buf = append(buf, byte(TypeIDVarchar), byte(TypeIDInt))
	appendEntry := func(key string, val int32) {
		buf = append(buf, varint.Encode(int64(len(key)))...)
		buf = append(buf, key...)
		buf = append(buf, varint.Encode(4)...)
		ib := make([]byte, 4)
		putBE32(ib, val)
		buf = append(buf, ib...)
	}
	appendEntry("k", 1)
	appendEntry("k", 2)

	d := NewDecoder()
	_, _, err := d.DecodeCell(KindMap, false, buf)
	require.Error(t, err)

	d.StrictMapKeys = false
	v, _, err := d.DecodeCell(KindMap, false, buf)
	require.NoError(t, err)
	assert.Len(t, v.Map, 1)
}

func TestTupleRoundTrip(t *testing.T) {
	kinds := []Kind{KindInt, KindText, KindBool}
	elems := []Value{
		{Kind: KindInt, Int64: 42},
		{Kind: KindText, Text: "hi"},
		{Kind: KindBool, Bool: true},
	}
	buf := EncodeTuple(kinds, elems)

	d := NewDecoder()
	v, n, err := d.DecodeCell(KindTuple, false, buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	require.Len(t, v.Tuple, 3)
	assert.True(t, Equal(elems[0], v.Tuple[0]))
	assert.True(t, Equal(elems[1], v.Tuple[1]))
	assert.True(t, Equal(elems[2], v.Tuple[2]))
}

func TestTuple_NullSlotAllowed(t *testing.T) {
	kinds := []Kind{KindInt, KindText}
	elems := []Value{
		{Kind: KindInt, Int64: 7},
		NullValue(KindText),
	}
	buf := EncodeTuple(kinds, elems)
	d := NewDecoder()
	v, _, err := d.DecodeCell(KindTuple, false, buf)
	require.NoError(t, err)
	assert.True(t, v.Tuple[1].Null)
}

func TestUDTRoundTrip(t *testing.T) {
	udt := &UDTValue{
		TypeName: "address",
		Fields: []UDTField{
			{Name: "street", Value: Value{Kind: KindText, Text: "Main St"}},
			{Name: "zip", Value: Value{Kind: KindInt, Int64: 12345}},
			{Name: "unit", Value: NullValue(KindText)},
		},
	}
	kinds := []Kind{KindText, KindInt, KindText}
	buf := EncodeUDT(udt, kinds)

	d := NewDecoder()
	v, n, err := d.DecodeCell(KindUDT, false, buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	require.NotNil(t, v.UDT)
	assert.Equal(t, "address", v.UDT.TypeName)
	require.Len(t, v.UDT.Fields, 3)
	assert.Equal(t, "Main St", v.UDT.Fields[0].Value.Text)
	assert.Equal(t, int64(12345), v.UDT.Fields[1].Value.Int64)
	assert.True(t, v.UDT.Fields[2].Value.Null)
}

func TestUDTFieldLength_ZeroMeansEmptyValue(t *testing.T) {
	udt := &UDTValue{
		TypeName: "t",
		Fields: []UDTField{
			{Name: "s", Value: Value{Kind: KindText, Text: ""}},
		},
	}
	buf := EncodeUDT(udt, []Kind{KindText})
	d := NewDecoder()
	v, _, err := d.DecodeCell(KindUDT, false, buf)
	require.NoError(t, err)
	assert.False(t, v.UDT.Fields[0].Value.Null)
	assert.Equal(t, "", v.UDT.Fields[0].Value.Text)
}

func TestFrozen_DecodesIdenticallyAndIsTransparentToEquality(t *testing.T) {
	buf := EncodeTuple([]Kind{KindInt}, []Value{{Kind: KindInt, Int64: 9}})
	d := NewDecoder()
	plain, _, err := d.DecodeCell(KindTuple, false, buf)
	require.NoError(t, err)
	frozen, _, err := d.DecodeCell(KindTuple, true, buf)
	require.NoError(t, err)
	assert.False(t, plain.Frozen)
	assert.True(t, frozen.Frozen)
	assert.True(t, Equal(plain, frozen))
}

func TestNestedDepth_ListOfFrozenMap(t *testing.T) {
	// list<frozen<map<text,int>>> containing one map with one entry, to
	// exercise a supplemented depth-3 nested collection scenario
	// (SPEC_FULL.md §4: complex-type round-trip coverage beyond the seed
	// scenarios in spec.md §8).
	outer := EncodeListOrSet(KindMap, []Value{{Kind: KindMap, Map: []MapEntry{
		{Key: Value{Kind: KindText, Text: "a"}, Val: Value{Kind: KindInt, Int64: 1}},
	}}})

	d := NewDecoder()
	v, _, err := d.DecodeCell(KindList, false, outer)
	require.NoError(t, err)
	require.Len(t, v.List, 1)
	require.Len(t, v.List[0].Map, 1)
	assert.Equal(t, "a", v.List[0].Map[0].Key.Text)
	assert.Equal(t, int64(1), v.List[0].Map[0].Val.Int64)
}

func TestDepthLimit_Exceeded(t *testing.T) {
	d := NewDecoder()
	d.MaxDepth = 2
	// list<list<list<int>>> -- 3 levels of nesting exceeds a depth limit of 2.
	level1 := Value{Kind: KindList, List: []Value{{Kind: KindInt, Int64: 1}}}
	level2 := Value{Kind: KindList, List: []Value{level1}}
	level3 := EncodeListOrSet(KindList, []Value{level2})

	_, _, err := d.DecodeCell(KindList, false, level3)
	require.Error(t, err)
	var depthErr *errs.DepthLimit
	require.ErrorAs(t, err, &depthErr)
}

func TestCountLimit_Exceeded(t *testing.T) {
	d := NewDecoder()
	d.MaxCount = 2
	buf := append(varint.Encode(3), byte(TypeIDInt))
	_, _, err := d.DecodeCell(KindList, false, buf)
	require.Error(t, err)
	var countErr *errs.CountLimit
	require.ErrorAs(t, err, &countErr)
}
