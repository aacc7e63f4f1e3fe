package pngutil_test

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/retrocompute/fat8d88/pngutil"
	"github.com/stretchr/testify/require"
)

func TestEncodeWithGamma_InsertsGammaChunkAfterIHDR(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	require.NoError(t, pngutil.EncodeWithGamma(&buf, img))

	data := buf.Bytes()
	require.True(t, bytes.HasPrefix(data, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}))

	ihdrLen := int(data[8])<<24 | int(data[9])<<16 | int(data[10])<<8 | int(data[11])
	gammaChunkStart := 8 + 12 + ihdrLen
	require.Equal(t, "gAMA", string(data[gammaChunkStart+4:gammaChunkStart+8]))

	gammaValue := int(data[gammaChunkStart+8])<<24 | int(data[gammaChunkStart+9])<<16 |
		int(data[gammaChunkStart+10])<<8 | int(data[gammaChunkStart+11])
	require.Equal(t, 45455, gammaValue)
}
