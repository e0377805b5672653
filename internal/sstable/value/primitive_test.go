package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeText_LengthPrefixedLiteral(t *testing.T) {
	buf := EncodeText(KindText, "hello")
	v, n, err := decodeText(buf, KindText, true)
	require.NoError(t, err)
	assert.Equal(t, "hello", v.Text)
	assert.Equal(t, len(buf), n)
}

func TestDecodeText_InvalidUTF8(t *testing.T) {
	buf := EncodeText(KindText, "ok")
	buf[len(buf)-1] = 0xFF // corrupt last byte into an invalid UTF-8 continuation
	_, _, err := decodeText(buf, KindText, true)
	require.Error(t, err)
}

func TestDecodeText_Null(t *testing.T) {
	buf := append([]byte{}, encodeNegativeOneVarint()...)
	v, _, err := decodeText(buf, KindText, true)
	require.NoError(t, err)
	assert.True(t, v.Null)
}

func encodeNegativeOneVarint() []byte {
	// zig-zag(-1) = 1, single byte header 0b0000_0001
	return []byte{0x01}
}

func TestPrimitiveRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		k    Kind
		enc  []byte
		v    Value
	}{
		{"bool_true", KindBool, EncodeBool(true), Value{Kind: KindBool, Bool: true}},
		{"tinyint", KindTinyInt, EncodeFixedInt(KindTinyInt, -5), Value{Kind: KindTinyInt, Int64: -5}},
		{"smallint", KindSmallInt, EncodeFixedInt(KindSmallInt, 1000), Value{Kind: KindSmallInt, Int64: 1000}},
		{"int", KindInt, EncodeFixedInt(KindInt, -70000), Value{Kind: KindInt, Int64: -70000}},
		{"bigint", KindBigInt, EncodeFixedInt(KindBigInt, 1 << 40), Value{Kind: KindBigInt, Int64: 1 << 40}},
		{"float", KindFloat, EncodeFloat32(3.5), Value{Kind: KindFloat, Float32: 3.5}},
		{"double", KindDouble, EncodeFloat64(2.718281828), Value{Kind: KindDouble, Float64: 2.718281828}},
		{"varint", KindVarint, EncodeVarintValue(123456789), Value{Kind: KindVarint, Int64: 123456789}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, n, err := DecodePrimitive(tc.k, tc.enc)
			require.NoError(t, err)
			assert.Equal(t, len(tc.enc), n)
			assert.True(t, Equal(tc.v, got))
		})
	}
}

func TestTimestampMillisCoercedToMicros(t *testing.T) {
	enc := EncodeTimestamp(5_000_000) // 5s in micros -> 5000ms on wire
	v, n, err := decodeTimestamp(enc)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, int64(5_000_000), v.Micros)
}

func TestDateCoercedToMicros(t *testing.T) {
	enc := EncodeDate(2 * 86400 * 1_000_000)
	v, _, err := decodeDate(enc)
	require.NoError(t, err)
	assert.Equal(t, int64(2*86400*1_000_000), v.Micros)
}

func TestTimeCoercedToMicros(t *testing.T) {
	enc := EncodeTime(1_500_000) // 1.5s in micros -> 1_500_000_000 ns on wire
	v, _, err := decodeTime(enc)
	require.NoError(t, err)
	assert.Equal(t, int64(1_500_000), v.Micros)
}

func TestDecimalRoundTrip(t *testing.T) {
	d := DecimalValue{Scale: 2, Unscaled: 12345}
	enc := EncodeDecimal(d)
	v, n, err := decodeDecimal(enc)
	require.NoError(t, err)
	assert.Equal(t, len(enc), n)
	assert.Equal(t, d, v.Decimal)
}

func TestDurationRoundTrip(t *testing.T) {
	d := DurationValue{Months: 1, Days: 2, Nanos: 3_000_000_000}
	enc := EncodeDuration(d)
	v, n, err := decodeDuration(enc)
	require.NoError(t, err)
	assert.Equal(t, len(enc), n)
	assert.Equal(t, d, v.Duration)
	want := int64(1)*approxMonthMicros + int64(2)*approxDayMicros + 3_000_000
	assert.Equal(t, want, v.Duration.TotalMicros())
}

func TestInetRoundTrip(t *testing.T) {
	v4 := []byte{192, 168, 0, 1}
	enc := EncodeInet(v4)
	v, n, err := decodeInet(enc)
	require.NoError(t, err)
	assert.Equal(t, len(enc), n)
	assert.Equal(t, v4, v.Blob)

	v6 := make([]byte, 16)
	for i := range v6 {
		v6[i] = byte(i)
	}
	enc6 := EncodeInet(v6)
	v, _, err = decodeInet(enc6)
	require.NoError(t, err)
	assert.Equal(t, v6, v.Blob)
}

func TestUUIDRoundTrip(t *testing.T) {
	var u [16]byte
	for i := range u {
		u[i] = byte(i + 1)
	}
	enc := EncodeUUID(u)
	v, n, err := decodeUUID(enc, KindUUID)
	require.NoError(t, err)
	assert.Equal(t, 16, n)
	assert.Equal(t, u, v.UUID)
}

func TestDecodePrimitive_Truncated(t *testing.T) {
	_, _, err := DecodePrimitive(KindBigInt, []byte{1, 2, 3})
	require.Error(t, err)
}
