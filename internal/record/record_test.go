package record

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	cases := []Row{
		{"1", "Alice"},
		{"", "", ""},
		{"single"},
		{"with,comma", "with'quote", "with\ttab", "with\nnewline"},
		{string([]byte{0x00, 0xff, 0x7f})},
	}

	for _, values := range cases {
		data, err := Encode(values)
		require.NoError(t, err)

		got, err := Decode(data)
		require.NoError(t, err)
		assert.Equal(t, values, got)
	}
}

func TestEncode_Layout(t *testing.T) {
	data, err := Encode(Row{"1", "Alice"})
	require.NoError(t, err)

	// (len=1 LE)"1" (len=5 LE)"Alice"
	want := []byte{0x01, 0x00, '1', 0x05, 0x00, 'A', 'l', 'i', 'c', 'e'}
	assert.Equal(t, want, data)
}

func TestEncode_ValueTooLong(t *testing.T) {
	_, err := Encode(Row{strings.Repeat("x", 65536)})
	require.ErrorIs(t, err, ErrValueTooLong)

	// exactly u16 max is fine
	data, err := Encode(Row{strings.Repeat("x", 65535)})
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Len(t, got[0], 65535)
}

func TestDecode_Truncated(t *testing.T) {
	// length prefix says 5 bytes but only 3 follow
	_, err := Decode([]byte{0x05, 0x00, 'a', 'b', 'c'})
	require.ErrorIs(t, err, ErrTruncated)

	// dangling single byte where a length prefix should start
	_, err = Decode([]byte{0x01, 0x00, 'a', 0x02})
	require.ErrorIs(t, err, ErrTruncated)
}

func TestDecode_Empty(t *testing.T) {
	got, err := Decode(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
