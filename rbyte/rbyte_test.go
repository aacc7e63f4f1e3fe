package rbyte_test

import (
	"image"
	"image/color"
	"testing"

	"github.com/retrocompute/fat8d88/rbyte"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

// buildSolidImage makes a single solid-color RGBA image of w x h pixels.
func buildSolidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestDecode_HeaderTooShort(t *testing.T) {
	_, err := rbyte.Decode([]byte{1, 2, 3}, nil, nil)
	require.Error(t, err)
}

func TestDecode_WidthExceedsScreen(t *testing.T) {
	data := []byte{81, 0, 1, 0}
	_, err := rbyte.Decode(data, nil, nil)
	require.Error(t, err)
}

func TestDecode_HeightExceedsScreen(t *testing.T) {
	data := []byte{1, 0, 201, 0}
	_, err := rbyte.Decode(data, nil, nil)
	require.Error(t, err)
}

// TestDecode_CopyPreviousLineZeroDeflection exercises the exact error
// string a zero-deflection 0x80 command must produce.
func TestDecode_CopyPreviousLineZeroDeflection(t *testing.T) {
	data := []byte{
		1, 0, 2, 0, // width=1 byte, height=2 lines
		0x00, 0xAA, // row 0: literal
		0x80, // row 1: copy-previous-line, deflection=0
	}
	_, err := rbyte.Decode(data, nil, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "CMD_COPY_PREVIOUS_LINE with zero deflection")
}

func TestDecode_LiteralSingleRow(t *testing.T) {
	data := []byte{
		1, 0, 1, 0, // one plane row per channel
		0x00, 0xFF, // blue plane, literal 0xFF
		0x00, 0x00, // red plane, literal 0x00
		0x00, 0x00, // green plane, literal 0x00
	}
	img, err := rbyte.Decode(data, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 8, img.Bounds().Dx())
	require.Equal(t, 2, img.Bounds().Dy())

	px := img.RGBAAt(7, 0)
	require.Equal(t, color.RGBA{R: 0, G: 0, B: 255, A: 255}, px)
}

func TestDecode_RepeatUntilFF(t *testing.T) {
	data := []byte{
		2, 0, 1, 0,
		0x40, 0x11, 0xFF, // blue: fill with 0x11 until end of row
		0x40, 0x22, 0xFF,
		0x40, 0x33, 0xFF,
	}
	img, err := rbyte.Decode(data, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 16, img.Bounds().Dx())
}

func TestDecode_RepeatUntilFF_ZeroRepeatIsError(t *testing.T) {
	data := []byte{
		1, 0, 1, 0,
		0x40, 0x11, 0x00,
	}
	_, err := rbyte.Decode(data, nil, nil)
	require.Error(t, err)
}

func TestDecode_CopyPreviousLine(t *testing.T) {
	data := []byte{
		1, 0, 2, 0,
		0x00, 0xAB, 0x81, // blue: row0 literal, row1 copies row0 (deflection 1)
		0x00, 0x00, 0x81,
		0x00, 0x00, 0x81,
	}
	img, err := rbyte.Decode(data, nil, nil)
	require.NoError(t, err)
	row0 := img.RGBAAt(7, 0)
	row1 := img.RGBAAt(7, 2)
	require.Equal(t, row0, row1)
}

func TestDecode_OffsetPlacement(t *testing.T) {
	data := []byte{
		1, 0, 1, 0,
		0x00, 0xFF,
		0x00, 0x00,
		0x00, 0x00,
	}
	img, err := rbyte.Decode(data, intPtr(2), intPtr(3))
	require.NoError(t, err)
	require.Equal(t, 640, img.Bounds().Dx())
	require.Equal(t, 400, img.Bounds().Dy())
}

func TestDecode_OffsetPastRightEdge(t *testing.T) {
	data := []byte{
		1, 0, 1, 0,
		0x00, 0xFF,
		0x00, 0x00,
		0x00, 0x00,
	}
	_, err := rbyte.Decode(data, intPtr(80), nil)
	require.Error(t, err)
}

func TestUnwrapBLOAD_RoundTrip(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5}
	wrapped := rbyte.WrapBLOAD(0x1E0, payload)

	got, err := rbyte.UnwrapBLOAD(wrapped)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestUnwrapBLOAD_RejectsLowLoadAddress(t *testing.T) {
	wrapped := rbyte.WrapBLOAD(0x100, []byte{1, 2, 3})
	_, err := rbyte.UnwrapBLOAD(wrapped)
	require.Error(t, err)
}

func TestUnwrapBLOAD_RejectsBadTrailer(t *testing.T) {
	wrapped := rbyte.WrapBLOAD(0x1E0, []byte{1, 2, 3})
	wrapped = append(wrapped, 0x00) // not Ctrl-Z
	_, err := rbyte.UnwrapBLOAD(wrapped)
	require.Error(t, err)
}

func TestUnwrapBLOAD_AllowsCtrlZTrailer(t *testing.T) {
	wrapped := rbyte.WrapBLOAD(0x1E0, []byte{1, 2, 3})
	wrapped = append(wrapped, 0x1A, 0x00, 0x00)
	payload, err := rbyte.UnwrapBLOAD(wrapped)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, payload)
}

func TestEncodeRBYTE_RoundTripsSolidColor(t *testing.T) {
	img := buildSolidImage(16, 8, color.RGBA{R: 255, G: 0, B: 0, A: 255})
	encoded := rbyte.EncodeRBYTE(img, 4)

	decoded, err := rbyte.Decode(encoded, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 16, decoded.Bounds().Dx())
	require.Equal(t, 8, decoded.Bounds().Dy())

	px := decoded.RGBAAt(0, 0)
	require.Equal(t, byte(255), px.R)
	require.Equal(t, byte(0), px.G)
	require.Equal(t, byte(0), px.B)
}

func TestEncodeRBYTE_OptLevelZeroProducesLiteralRows(t *testing.T) {
	img := buildSolidImage(8, 4, color.RGBA{R: 0, G: 255, B: 0, A: 255})
	encoded := rbyte.EncodeRBYTE(img, 0)

	_, err := rbyte.Decode(encoded, nil, nil)
	require.NoError(t, err)
}

func TestEncodeRBYTE_ShrinksOversizedImage(t *testing.T) {
	img := buildSolidImage(1280, 800, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	encoded := rbyte.EncodeRBYTE(img, 4)

	decoded, err := rbyte.Decode(encoded, nil, nil)
	require.NoError(t, err)
	require.LessOrEqual(t, decoded.Bounds().Dx(), 640)
	require.LessOrEqual(t, decoded.Bounds().Dy(), 400)
}
