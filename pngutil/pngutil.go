// Package pngutil wraps the standard library's PNG encoder to add a
// gAMA chunk, which image/png has no direct support for writing. Both
// RBYTE decoders emit images through this package rather than a
// generic PNG encoder: the reference tool always stamps the same
// gamma value on its output so viewers don't apply a second,
// double-correcting gamma curve to an image that's already linear.
package pngutil

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/png"
	"io"

	dskerrors "github.com/retrocompute/fat8d88/errors"
)

// gammaValue is gAMA's encoding of 1/2.2 in PNG's fixed-point, 100000ths
// convention: int(0.45455 * 1e5).
const gammaValue = 45455

var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// EncodeWithGamma writes img as a PNG to w with a gAMA chunk inserted
// immediately after IHDR, the position PNG readers expect ancillary
// chunks that affect color interpretation to appear in.
func EncodeWithGamma(w io.Writer, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	data := buf.Bytes()
	if len(data) < len(pngSignature)+8 || !bytes.Equal(data[:len(pngSignature)], pngSignature) {
		return dskerrors.ErrImageMalformed.WithMessage("standard library did not produce a valid PNG stream")
	}

	ihdrLen := binary.BigEndian.Uint32(data[8:12])
	ihdrEnd := 8 + 12 + int(ihdrLen) // length(4) + type+data(4+len) + crc(4)

	if _, err := w.Write(data[:ihdrEnd]); err != nil {
		return err
	}
	if _, err := w.Write(gammaChunk()); err != nil {
		return err
	}
	_, err := w.Write(data[ihdrEnd:])
	return err
}

func gammaChunk() []byte {
	chunkType := []byte("gAMA")
	chunkData := make([]byte, 4)
	binary.BigEndian.PutUint32(chunkData, gammaValue)

	out := make([]byte, 0, 4+4+4+4)
	lengthField := make([]byte, 4)
	binary.BigEndian.PutUint32(lengthField, uint32(len(chunkData)))
	out = append(out, lengthField...)
	out = append(out, chunkType...)
	out = append(out, chunkData...)

	crc := crc32.NewIEEE()
	crc.Write(chunkType)
	crc.Write(chunkData)
	crcField := make([]byte, 4)
	binary.BigEndian.PutUint32(crcField, crc.Sum32())
	out = append(out, crcField...)
	return out
}
