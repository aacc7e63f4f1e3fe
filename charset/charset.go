// Package charset implements the 8-bit character encodings used by
// FAT8 filenames and file contents on NEC's PC-98 and PC-6001 series.
// Each table is a direct byte<->rune mapping; unmapped code points
// fall into the private use area so every table stays injective and
// every Decode result round-trips back through Encode.
package charset

import (
	"fmt"

	dskerrors "github.com/retrocompute/fat8d88/errors"
)

// PreserveSet selects which control bytes decode to their literal
// rune instead of the table's printable glyph for that slot, mirroring
// the MINIMAL_CONTROLS/NO_CONTROLS distinction used when hex-dumping
// versus reconstructing file contents.
type PreserveSet uint8

const (
	PreserveNUL PreserveSet = 1 << iota
	PreserveLF
	PreserveCR
	PreserveSUB
	PreserveDEL
	PreserveAllControls
)

// MinimalControls preserves the handful of bytes that matter when
// displaying file contents: NUL, CR, LF, SUB (text EOF marker), DEL.
const MinimalControls = PreserveNUL | PreserveCR | PreserveLF | PreserveSUB | PreserveDEL

// NoControls preserves nothing; every byte maps through the table.
const NoControls PreserveSet = 0

func (p PreserveSet) has(byt byte) bool {
	switch byt {
	case 0x00:
		return p&PreserveNUL != 0 || p&PreserveAllControls != 0
	case 0x0A:
		return p&PreserveLF != 0 || p&PreserveAllControls != 0
	case 0x0D:
		return p&PreserveCR != 0 || p&PreserveAllControls != 0
	case 0x1A:
		return p&PreserveSUB != 0 || p&PreserveAllControls != 0
	case 0x7F:
		return p&PreserveDEL != 0 || p&PreserveAllControls != 0
	default:
		return byt < 0x20 && p&PreserveAllControls != 0
	}
}

// Charset converts between host Unicode strings and the raw 8-bit
// bytes stored on disk.
type Charset interface {
	Encode(text string, strict bool) ([]byte, error)
	Decode(b []byte, preserve PreserveSet) (string, error)
}

type table struct {
	name    string
	forward [256]rune
	byRune  map[rune]byte
	// alt, when not all zero, is a 32-entry page reached by a lead-in byte
	// (PC-6001's 0x14 prefix). altLeadIn is that prefix byte.
	alt       [32]rune
	altLeadIn byte
	byAltRune map[rune]byte
}

func newTable(name string, runes [256]rune, alt [32]rune, altLeadIn byte) *table {
	t := &table{name: name, forward: runes, alt: alt, altLeadIn: altLeadIn}
	t.byRune = make(map[rune]byte, 256)
	for i, r := range runes {
		if _, exists := t.byRune[r]; !exists {
			t.byRune[r] = byte(i)
		}
	}
	if alt != ([32]rune{}) {
		t.byAltRune = make(map[rune]byte, 32)
		for i, r := range alt {
			if _, exists := t.byAltRune[r]; !exists {
				t.byAltRune[r] = byte(i)
			}
		}
	}
	return t
}

func (t *table) Encode(text string, strict bool) ([]byte, error) {
	out := make([]byte, 0, len(text))
	for i, ch := range text {
		if b, ok := t.byAltRune[ch]; ok {
			out = append(out, t.altLeadIn, b+0x30)
			continue
		}
		if b, ok := t.byRune[ch]; ok {
			out = append(out, b)
			continue
		}
		if ch <= 0x7F {
			out = append(out, byte(ch))
			continue
		}
		if !strict {
			if folded, ok := compatFold(ch); ok {
				if b, ok := t.byAltRune[folded]; ok {
					out = append(out, t.altLeadIn, b+0x30)
					continue
				}
				if b, ok := t.byRune[folded]; ok {
					out = append(out, b)
					continue
				}
				if folded <= 0x7F {
					out = append(out, byte(folded))
					continue
				}
			}
		}
		if strict {
			return nil, dskerrors.ErrCharsetRoundTripFailure.WithMessage(
				fmt.Sprintf("%s: no mapping for rune U+%04X at byte offset %d", t.name, ch, i))
		}
		// Best-effort fallback: emit the table's private-use filler so
		// the byte stream stays the right length even for characters
		// this table cannot represent, even after a compatibility fold.
		out = append(out, fillerByte)
	}
	return out, nil
}

const fillerByte = 0xF0

func (t *table) Decode(b []byte, preserve PreserveSet) (string, error) {
	runes := make([]rune, 0, len(b))
	for i := 0; i < len(b); i++ {
		byt := b[i]
		if t.altLeadIn != 0 && byt == t.altLeadIn && i+1 < len(b) &&
			b[i+1] >= 0x30 && b[i+1] < 0x30+byte(len(t.alt)) {
			runes = append(runes, t.alt[b[i+1]-0x30])
			i++
			continue
		}
		if preserve.has(byt) {
			runes = append(runes, rune(byt))
			continue
		}
		runes = append(runes, t.forward[byt])
	}
	decoded := string(runes)
	roundTrip, err := t.Encode(decoded, false)
	if err != nil {
		return "", err
	}
	if !bytesEqual(roundTrip, b) {
		return "", dskerrors.ErrCharsetRoundTripFailure.WithMessage(
			fmt.Sprintf("%s: decoded text does not re-encode to the original bytes", t.name))
	}
	return decoded, nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
