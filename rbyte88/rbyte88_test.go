package rbyte88_test

import (
	"image"
	"image/color"
	"testing"

	"github.com/retrocompute/fat8d88/rbyte88"
	"github.com/stretchr/testify/require"
)

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
	_, err := rbyte88.Decode([]byte{1}, nil, nil)
	require.Error(t, err)
}

func TestDecode_WidthExceedsScreen(t *testing.T) {
	data := []byte{81, 1}
	_, err := rbyte88.Decode(data, nil, nil)
	require.Error(t, err)
}

func TestDecode_RowMajorLiteral(t *testing.T) {
	// width=1 byte, height=1 line, row-major (vertical flag clear):
	// one byte per plane, no repeats.
	data := []byte{
		1, 1,
		0xFF, // blue plane
		0x00, // red plane
		0x00, // green plane
	}
	img, err := rbyte88.Decode(data, nil, nil)
	require.NoError(t, err)
	px := img.RGBAAt(7, 0)
	require.Equal(t, color.RGBA{R: 0, G: 0, B: 255, A: 255}, px)
}

func TestDecode_RepeatSequence(t *testing.T) {
	// width=2 bytes, height=1 line: blue plane is two identical bytes
	// compressed as (data, data, repeat).
	data := []byte{
		2, 1,
		0xAA, 0xAA, 0x01, // blue: run of exactly two 0xAA bytes
		0x00, 0x00, 0x01, // red: run of two zero bytes
		0x00, 0x00, 0x01, // green: run of two zero bytes
	}
	img, err := rbyte88.Decode(data, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 16, img.Bounds().Dx())
}

func TestDecode_RepeatCountZeroIsError(t *testing.T) {
	data := []byte{
		2, 1,
		0xAA, 0xAA, 0x00,
		0x00, 0x00, 0x01,
		0x00, 0x00, 0x01,
	}
	_, err := rbyte88.Decode(data, nil, nil)
	require.Error(t, err)
}

func TestDecode_VerticalTraversal(t *testing.T) {
	// width=1, height=2: vertical flag set, a single column of 2 rows.
	data := []byte{
		0x81, 2,
		0x11, 0x22, // blue: distinct bytes, one per row
		0x00, 0x00, 0x01,
		0x00, 0x00, 0x01,
	}
	img, err := rbyte88.Decode(data, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 8, img.Bounds().Dx())
	require.Equal(t, 4, img.Bounds().Dy())
}

func TestEncodeRBYTE88_RoundTripsSolidColor(t *testing.T) {
	img := buildSolidImage(16, 8, color.RGBA{R: 0, G: 255, B: 0, A: 255})
	encoded := rbyte88.EncodeRBYTE88(img)

	decoded, err := rbyte88.Decode(encoded, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 16, decoded.Bounds().Dx())
	require.Equal(t, 8, decoded.Bounds().Dy())

	px := decoded.RGBAAt(0, 0)
	require.Equal(t, byte(0), px.R)
	require.Equal(t, byte(255), px.G)
	require.Equal(t, byte(0), px.B)
}

func TestEncodeRBYTE88_ShrinksOversizedImage(t *testing.T) {
	img := buildSolidImage(1280, 800, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	encoded := rbyte88.EncodeRBYTE88(img)

	decoded, err := rbyte88.Decode(encoded, nil, nil)
	require.NoError(t, err)
	require.LessOrEqual(t, decoded.Bounds().Dx(), 640)
	require.LessOrEqual(t, decoded.Bounds().Dy(), 400)
}
