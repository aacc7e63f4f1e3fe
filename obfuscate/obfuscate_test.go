package obfuscate_test

import (
	"encoding/hex"
	"testing"

	"github.com/retrocompute/fat8d88/obfuscate"
	"github.com/stretchr/testify/assert"
)

func TestPC98RoundTripsEveryByteAtEveryOffset(t *testing.T) {
	for offset := 0; offset < 256; offset++ {
		for b := 0; b < 256; b++ {
			obf := obfuscate.PC98.Obfuscate(offset, byte(b))
			assert.EqualValues(t, byte(b), obfuscate.PC98.Deobfuscate(offset, obf))
		}
	}
}

func TestPC98KnownConversions(t *testing.T) {
	cases := map[byte]byte{0x00: 0x00, 0xFF: 0xFF, 0x55: 0xAA, 0xAA: 0x55, 0x40: 0x80}
	for offset := 0; offset < 8; offset++ {
		for cipher, plain := range cases {
			assert.EqualValues(t, plain, obfuscate.PC98.Deobfuscate(offset, cipher))
		}
	}
}

func TestPC88RoundTripsEveryByteAtEveryOffset(t *testing.T) {
	for offset := 0; offset < 286; offset++ {
		for b := 0; b < 256; b++ {
			obf := obfuscate.PC88.Obfuscate(offset, byte(b))
			assert.EqualValues(t, byte(b), obfuscate.PC88.Deobfuscate(offset, obf))
		}
	}
}

func TestPC88CombinedKeyRecoveryFromKnownPlaintext(t *testing.T) {
	// The 13 block-element characters ▊..▂, encoded to PC-98 8-bit
	// bytes and repeated 11 times, reproduce the BASIC key-recovery
	// program's known-plaintext buffer: 128+13-i for i in 0..12.
	plaintext := make([]byte, 11*13)
	for block := 0; block < 11; block++ {
		for i := 0; i < 13; i++ {
			plaintext[block*13+i] = byte(128 + 13 - i)
		}
	}

	ciphertext := make([]byte, len(plaintext))
	for i, b := range plaintext {
		ciphertext[i] = obfuscate.PC88.Obfuscate(i, b)
	}
	assert.NotEqual(t, plaintext, ciphertext)

	// Undoing both position shifts on each known (plaintext, ciphertext)
	// pair leaves the combined key byte for that position.
	recovered := make([]byte, len(ciphertext))
	for i, c := range ciphertext {
		unshiftedCipher := byte((int(c) + 0x100 - (11 - i%11)) % 0x100)
		unshiftedPlain := byte((int(plaintext[i]) + 0x100 - (13 - i%13)) % 0x100)
		recovered[i] = unshiftedCipher ^ unshiftedPlain
	}
	wantKey, err := hex.DecodeString("C0CFCC8562810C42C304E5E6CD1175B690E49735EDB2FC6E3777" +
		"6B603086DD384415392DD44D62ED760929ACC0CFC48357C1CB74D4D978D1271175BE96D1D7F2DB" +
		"A521F3009D6B603880E87883232EF0497A88ED76012F998008F2948A5CFC9ED4D970D71251B288" +
		"810C4AC531A521FB06A82BA70E9735E5B4C92EF0417CBDADB13738441D3F18948A54FAAB941E46")
	assert.NoError(t, err)
	assert.Equal(t, wantKey, recovered)

	decoded := make([]byte, len(ciphertext))
	for i, b := range ciphertext {
		decoded[i] = obfuscate.PC88.Deobfuscate(i, b)
	}
	assert.Equal(t, plaintext, decoded)
}
