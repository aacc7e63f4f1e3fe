// Package rbyte88 decodes and encodes the PC-88 variant of the RBYTE
// run-length planar image format: a 2-byte header (traversal
// direction, width, height) followed by three color planes (Blue,
// Red, Green), each a double-byte-repeat compressed bitmap whose
// pixels are read out in either row-major or column-major order.
package rbyte88

import (
	dskerrors "github.com/retrocompute/fat8d88/errors"
)

const (
	HeaderSize     = 2
	MaxImageWidth  = 80  // bytes, i.e. 640 pixels
	MaxImageHeight = 200 // lines
	sectorSize     = 256

	planeChannelR = 0
	planeChannelG = 1
	planeChannelB = 2
)

var planeOrder = [3]int{planeChannelB, planeChannelR, planeChannelG}

// Header is the 2-byte dimension/direction header at the start of a
// RBYTE-88 stream.
type Header struct {
	Vertical   bool
	WidthBytes int
	Height     int
}

func parseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, dskerrors.ErrUnexpectedEOF.WithMessage("not enough data for RBYTE-88 header")
	}
	vertical := data[0]&0x80 != 0
	width := int(data[0] & 0x7F)
	height := int(data[1])
	if width > MaxImageWidth {
		return Header{}, dskerrors.ErrImageMalformed.WithMessage("image width exceeds screen width")
	}
	if height > MaxImageHeight {
		return Header{}, dskerrors.ErrImageMalformed.WithMessage("image height exceeds screen height")
	}
	return Header{Vertical: vertical, WidthBytes: width, Height: height}, nil
}

// planeIndex maps a flat position k within one width*height plane to
// (x, y) row/byte-column coordinates, honoring the header's traversal
// direction: column-major (x slow, y fast) when vertical, row-major
// (y slow, x fast) otherwise.
func planeIndex(k, width, height int, vertical bool) (x, y int) {
	if vertical {
		return k / height, k % height
	}
	return k % width, k / width
}
