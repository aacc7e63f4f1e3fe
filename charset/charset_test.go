package charset_test

import (
	"testing"

	"github.com/retrocompute/fat8d88/charset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPC98RoundTripsAllBytes(t *testing.T) {
	for b := 0; b < 256; b++ {
		decoded, err := charset.PC98.Decode([]byte{byte(b)}, charset.NoControls)
		require.NoError(t, err)
		encoded, err := charset.PC98.Encode(decoded, true)
		require.NoError(t, err)
		assert.Equal(t, []byte{byte(b)}, encoded)
	}
}

func TestPC98PreservesControlBytesOnRequest(t *testing.T) {
	decoded, err := charset.PC98.Decode([]byte{0x00, 0x1A}, charset.MinimalControls)
	require.NoError(t, err)
	assert.Equal(t, "\x00\x1a", decoded)
}

func TestPC6001AltPageRoundTrips(t *testing.T) {
	// 0x14 0x31 selects alt-page entry 0x31-0x30 = 1 ('月').
	decoded, err := charset.PC6001.Decode([]byte{0x14, 0x31}, charset.NoControls)
	require.NoError(t, err)
	assert.Equal(t, "月", decoded)

	encoded, err := charset.PC6001.Encode(decoded, true)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x14, 0x31}, encoded)
}

func TestPC98EncodeFoldsFullwidthUnderNonStrict(t *testing.T) {
	encoded, err := charset.PC98.Encode("ｱﾀﾂ", false) // already halfwidth, sanity check
	require.NoError(t, err)
	assert.Equal(t, []byte{0xB1, 0xC0, 0xC2}, encoded)

	// Fullwidth katakana has no direct table entry; non-strict Encode
	// should fold it to the halfwidth form the table does hold instead
	// of emitting the private-use filler byte.
	folded, err := charset.PC98.Encode("アタツ", false)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xB1, 0xC0, 0xC2}, folded)

	// Fullwidth ASCII and the ideographic space fold too.
	folded, err = charset.PC98.Encode("Ａ　Ｂ", false) // "A B" (fullwidth A, space, B)
	require.NoError(t, err)
	assert.Equal(t, []byte("A B"), folded)
}

func TestPC98EncodeStrictRejectsFullwidthKatakana(t *testing.T) {
	_, err := charset.PC98.Encode("アタツ", true)
	assert.Error(t, err)
}

func TestPC6001RoundTripsAllBytes(t *testing.T) {
	for b := 0; b < 256; b++ {
		if b == 0x14 {
			continue // lead-in byte, tested separately above
		}
		decoded, err := charset.PC6001.Decode([]byte{byte(b)}, charset.NoControls)
		require.NoError(t, err)
		encoded, err := charset.PC6001.Encode(decoded, true)
		require.NoError(t, err)
		assert.Equal(t, []byte{byte(b)}, encoded)
	}
}
