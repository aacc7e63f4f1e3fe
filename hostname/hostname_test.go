package hostname_test

import (
	"strings"
	"testing"

	"github.com/retrocompute/fat8d88/hostname"
	"github.com/stretchr/testify/require"
)

func asciiEncode(ch rune) []byte { return []byte{byte(ch)} }

func TestToHostFSNamePlainFile(t *testing.T) {
	name := hostname.ToHostFSName("HELLO ", "BAS", hostname.NewAttrs(hostname.AttrNonASCII), asciiEncode)
	require.Equal(t, "HELLO.BAS", name)
}

func TestToHostFSNameEscapesUnsafeChars(t *testing.T) {
	name := hostname.ToHostFSName("A*B ", "C", hostname.Attrs{}, asciiEncode)
	require.True(t, strings.Contains(name, "%2A"))
}

func TestToHostFSNameEmptyGetsPlaceholder(t *testing.T) {
	name := hostname.ToHostFSName("      ", "   ", hostname.Attrs{}, asciiEncode)
	require.True(t, strings.HasPrefix(name, "(empty)"))
}

func TestToHostFSNameReservedDeviceName(t *testing.T) {
	name := hostname.ToHostFSName("CON   ", "   ", hostname.Attrs{}, asciiEncode)
	require.True(t, strings.HasPrefix(name, "%43%4F%4E"))
}

func TestToHostFSNameSuffixForObfuscatedBinary(t *testing.T) {
	name := hostname.ToHostFSName("GAME  ", "BIN", hostname.NewAttrs(hostname.AttrObfuscated, hostname.AttrBinary), asciiEncode)
	require.Equal(t, "GAME.BIN.obf", name)
}

func TestNextDisambiguatorAndExtendName(t *testing.T) {
	used := map[string]bool{"foo.bas": true, "foo (1).bas": true}
	d := hostname.NextDisambiguator("foo.bas", used)
	require.Equal(t, " (2)", d)
	require.Equal(t, "foo (2).bas", hostname.ExtendName("foo.bas", d))
}
