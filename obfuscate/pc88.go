package obfuscate

import "encoding/hex"

// combinedKeyHex is the 143-byte (11*13) XOR key recovered from a
// PC-88 N88-BASIC ROM by saving a known plaintext string and comparing
// it against the obfuscated file it produced.
const combinedKeyHex = "C0CFCC8562810C42C304E5E6CD" +
	"1175B690E49735EDB2FC6E3777" +
	"6B603086DD384415392DD44D62" +
	"ED760929ACC0CFC48357C1CB74" +
	"D4D978D1271175BE96D1D7F2DB" +
	"A521F3009D6B603880E8788323" +
	"2EF0497A88ED76012F998008F2" +
	"948A5CFC9ED4D970D71251B288" +
	"810C4AC531A521FB06A82BA70E" +
	"9735E5B4C92EF0417CBDADB137" +
	"38441D3F18948A54FAAB941E46"

var combinedKey = func() [143]byte {
	raw, err := hex.DecodeString(combinedKeyHex)
	if err != nil || len(raw) != 143 {
		panic("obfuscate: malformed PC-88 combined key")
	}
	var key [143]byte
	copy(key[:], raw)
	return key
}()

type pc88XOR struct{}

// PC88 is N88-BASIC's file obfuscation: each byte is XOR'ed with a
// byte from an 11-period and a 13-period key stream (folded here into
// the 143-byte combined key recovered in combinedKeyHex), then shifted
// by a small position-dependent offset.
var PC88 Scheme = pc88XOR{}

func (pc88XOR) Name() string { return "pc88-xor" }

// period11 and period13 reproduce the BASIC program's "range(N, 0, -1)[i % N]"
// indexing: the Nth key byte counts down from N to 1 as the offset advances.
func period11(i int) int { return 11 - (i % 11) }
func period13(i int) int { return 13 - (i % 13) }

func (pc88XOR) Deobfuscate(i int, b byte) byte {
	shifted := (int(b) + 0x100 - period11(i)) % 0x100
	xored := byte(shifted) ^ combinedKey[i%143]
	return byte((period13(i) + int(xored)) % 0x100)
}

func (pc88XOR) Obfuscate(i int, b byte) byte {
	shifted := (int(b) + 0x100 - period13(i)) % 0x100
	xored := byte(shifted) ^ combinedKey[i%143]
	return byte((period11(i) + int(xored)) % 0x100)
}
