// Package hostname turns FAT8 directory entry names into filenames
// safe to write on a modern host filesystem: escaping characters the
// host can't carry or that collide with reserved device names, and
// disambiguating entries that would otherwise collide case-insensitively.
package hostname

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Attribute and pseudo-attribute names, shared between the FAT8
// directory parser (which decodes them from an entry's attribute byte)
// and ToHostFSName (which turns them into a filename suffix).
const (
	AttrBinary         = "Binary"
	Attr1Reserved      = "Reserved#1"
	Attr2Reserved      = "Reserved#2"
	Attr3Reserved      = "Reserved#3"
	AttrReadOnly       = "Read-Only"
	AttrObfuscated     = "Obfuscated"
	AttrReadAfterWrite = "Read-after-Write"
	AttrNonASCII       = "Non-ASCII"
	PseudoAttrUnused   = "Unused(FF)"
	PseudoAttrDeleted  = "Deleted(00)"
)

// Attrs is the set of attribute names decoded from one directory entry.
type Attrs map[string]bool

func NewAttrs(names ...string) Attrs {
	a := make(Attrs, len(names))
	for _, n := range names {
		a[n] = true
	}
	return a
}

func (a Attrs) Has(name string) bool { return a[name] }

// Without returns a copy of a with name removed, used to generate the
// "as if not obfuscated" filename variant.
func (a Attrs) Without(name string) Attrs {
	out := make(Attrs, len(a))
	for k := range a {
		if k != name {
			out[k] = true
		}
	}
	return out
}

var unsafeChars = buildUnsafeChars()

func buildUnsafeChars() map[rune]bool {
	m := map[rune]bool{}
	for _, ch := range "\"*+,/:;<=>?[\\]|¥¦" {
		m[ch] = true
	}
	for i := 0; i < 0x20; i++ {
		m[rune(i)] = true
	}
	m[0x7f] = true
	return m
}

var unsafeNamesUpper = buildUnsafeNames()

func buildUnsafeNames() map[string]bool {
	m := map[string]bool{"CLOCK$": true, "CON": true, "PRN": true, "AUX": true, "NUL": true}
	for n := 1; n <= 9; n++ {
		m[fmt.Sprintf("COM%d", n)] = true
		m[fmt.Sprintf("LPT%d", n)] = true
	}
	return m
}

func isPrivateUse(ch rune) bool {
	return ch >= 0xE000 && ch <= 0xF8FF
}

// Encoder turns a single decoded character back into the raw bytes an
// FAT8 charset would store for it, used to %-escape unsafe characters.
type Encoder func(ch rune) []byte

// ToHostFSName builds a host-safe filename for one directory entry: it
// escapes characters the host can't carry and appends the
// attribute-derived suffix. Disambiguation against names already used
// by other entries is the caller's job, via NextDisambiguator/ExtendName.
func ToHostFSName(name, ext string, attrs Attrs, encode Encoder) string {
	trimmedName := strings.TrimRight(name, " ")
	trimmedExt := strings.TrimRight(ext, " ")
	dot := ""
	if trimmedExt != "" {
		dot = "."
	}
	filename := trimmedName + dot + trimmedExt
	chars := []rune(filename)
	nameRuneLen := len([]rune(trimmedName))
	tokens := make([]string, len(chars))

	for i, ch := range chars {
		unsafe := unsafeChars[ch]
		if unsafeNamesUpper[strings.ToUpper(filename)] || (isAllDots(filename) && i == 0) {
			unsafe = true
		}
		if ch == '.' && i != nameRuneLen {
			unsafe = true
		}
		if i == 0 && ch == ' ' {
			unsafe = true
		}
		if i == len(chars)-1 && (ch == ' ' || ch == '.') {
			unsafe = true
		}
		if isPrivateUse(ch) {
			unsafe = true
		}
		if unsafe || ch == '%' {
			var b strings.Builder
			for _, byt := range encode(ch) {
				fmt.Fprintf(&b, "%%%02X", byt)
			}
			tokens[i] = b.String()
		} else {
			tokens[i] = string(ch)
		}
	}
	hostFSName := strings.Join(tokens, "")
	if hostFSName == "" || strings.HasPrefix(hostFSName, ".") {
		hostFSName = "(empty)" + hostFSName
	}

	parts := strings.SplitN(hostFSName, ".", 2)
	naturalSuffix := ""
	if len(parts) > 1 {
		naturalSuffix = strings.ToLower(strings.ReplaceAll(parts[1], ".", ""))
	}

	var suffixParts []string
	if attrs.Has(PseudoAttrUnused) {
		suffixParts = append(suffixParts, "---")
	}
	if attrs.Has(AttrNonASCII) && naturalSuffix != "bas" && naturalSuffix != "n88" && naturalSuffix != "nip" && naturalSuffix != "hd" {
		suffixParts = append(suffixParts, "bas")
	}
	if attrs.Has(AttrBinary) && naturalSuffix != "bin" && naturalSuffix != "cod" {
		suffixParts = append(suffixParts, "bin")
	}
	if attrs.Has(PseudoAttrDeleted) {
		suffixParts = append(suffixParts, "era")
	}
	if attrs.Has(Attr1Reserved) {
		suffixParts = append(suffixParts, "r-1")
	}
	if attrs.Has(Attr2Reserved) {
		suffixParts = append(suffixParts, "r-2")
	}
	if attrs.Has(Attr3Reserved) {
		suffixParts = append(suffixParts, "r-3")
	}
	if attrs.Has(AttrReadOnly) {
		suffixParts = append(suffixParts, "r-o")
	}
	if attrs.Has(AttrObfuscated) {
		suffixParts = append(suffixParts, "obf")
	}
	if !attrs.Has(AttrNonASCII) && !attrs.Has(AttrBinary) && naturalSuffix != "asc" && naturalSuffix != "txt" {
		suffixParts = append(suffixParts, "asc")
	}
	if attrs.Has(AttrReadAfterWrite) {
		suffixParts = append(suffixParts, "vfy")
	}
	sort.Strings(suffixParts)

	hostFSSuffix := ""
	if len(suffixParts) > 0 {
		hostFSSuffix = ".." + strings.Join(suffixParts, ".")
	}
	if strings.Contains(hostFSName, ".") && len(hostFSSuffix) > 0 {
		hostFSSuffix = hostFSSuffix[len("."):]
	}
	return hostFSName + hostFSSuffix
}

func isAllDots(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		if ch != '.' {
			return false
		}
	}
	return true
}

// ExtendName inserts tail just before the first dot of base (or at the
// end if base has none), used both to build a disambiguated filename
// and to test whether one is already taken.
func ExtendName(baseFilename, tail string) string {
	parts := strings.SplitN(baseFilename, ".", 2)
	parts[0] += tail
	return strings.Join(parts, ".")
}

// NextDisambiguator scans usedLower for the first disambiguator suffix
// (""  , " (1)", " (2)", ...) under which
// ExtendName(hostFSNameLower, suffix) is not already taken.
func NextDisambiguator(hostFSNameLower string, usedLower map[string]bool) string {
	disambig := ""
	for usedLower[ExtendName(hostFSNameLower, disambig)] {
		n := 0
		trimmed := strings.Trim(disambig, " ()")
		if trimmed != "" {
			n, _ = strconv.Atoi(trimmed)
		}
		disambig = fmt.Sprintf(" (%d)", n+1)
	}
	return disambig
}
