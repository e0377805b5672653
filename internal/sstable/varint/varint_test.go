package varint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_SingleByteLiterals(t *testing.T) {
	tests := []struct {
		name    string
		in      []byte
		want    int64
		consume int
	}{
		{"zero", []byte{0x00}, 0, 1},
		{"minus_one", []byte{0x01}, -1, 1},
		{"plus_one", []byte{0x02}, 1, 1},
		{"max_single_byte", []byte{0x7E}, 63, 1},
		{"min_single_byte", []byte{0x7F}, -64, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, n, err := Decode(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.consume, n)
		})
	}
}

func TestDecode_TwoByteLiteral(t *testing.T) {
	got, n, err := Decode([]byte{0x80, 0x80})
	require.NoError(t, err)
	assert.Equal(t, int64(64), got)
	assert.Equal(t, 2, n)
}

func TestEncode_MinusSixtyFive_IsTwoBytes(t *testing.T) {
	out := Encode(-65)
	assert.Len(t, out, 2)
	got, n, err := Decode(out)
	require.NoError(t, err)
	assert.Equal(t, int64(-65), got)
	assert.Equal(t, 2, n)
}

func TestEncode_SingleByteRangeIsExactlyOneByte(t *testing.T) {
	for v := int64(-64); v <= 63; v++ {
		out := Encode(v)
		assert.Lenf(t, out, 1, "value %d should encode to one byte", v)
	}
	for _, v := range []int64{-65, 64, -8192, 8191, -8193, 8192} {
		out := Encode(v)
		assert.Greaterf(t, len(out), 1, "value %d should encode to more than one byte", v)
	}
}

func TestRoundTrip_Exhaustive16Bit(t *testing.T) {
	for v := int32(-32768); v <= 32767; v++ {
		enc := Encode(int64(v))
		got, n, err := Decode(enc)
		require.NoError(t, err)
		assert.Equal(t, int64(v), got)
		assert.Equal(t, len(enc), n)
	}
}

func TestRoundTrip_SampledInt64(t *testing.T) {
	samples := []int64{
		0, 1, -1, 63, -64, 64, -65, 8191, -8192, 8192, -8193,
		1<<20 - 1, -(1 << 20), 1 << 32, -(1 << 32),
		1<<62 - 1, -(1 << 62), 9223372036854775807, -9223372036854775808,
	}
	for _, v := range samples {
		enc := Encode(v)
		got, n, err := Decode(enc)
		require.NoError(t, err)
		assert.Equal(t, v, got)
		assert.Equal(t, len(enc), n)
	}
}

func TestDecode_TruncatedHeader(t *testing.T) {
	_, _, err := Decode(nil)
	require.Error(t, err)
	var trunc *Truncated
	require.ErrorAs(t, err, &trunc)
}

func TestDecode_TruncatedPayload(t *testing.T) {
	// header claims 2 extra bytes, only 1 supplied
	_, _, err := Decode([]byte{0xC0, 0x01})
	require.Error(t, err)
	var trunc *Truncated
	require.ErrorAs(t, err, &trunc)
}

func TestDecode_NineByteForm(t *testing.T) {
	enc := Encode(9223372036854775807)
	require.Len(t, enc, 9)
	assert.Equal(t, byte(0xFF), enc[0])
	got, n, err := Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, int64(9223372036854775807), got)
	assert.Equal(t, 9, n)
}

func TestDecode_ConsumesOnlyItsOwnBytes(t *testing.T) {
	buf := append(Encode(42), 0xAA, 0xBB)
	got, n, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got)
	assert.Equal(t, len(buf)-2, n)
}
