// Package rbyte decodes and encodes the PC-98 variant of the RBYTE
// run-length planar image format: a 4-byte header followed by three
// color planes (decoded in the order Blue, Red, Green), each a
// variable-length-line-opcode compressed bitmap.
package rbyte

import (
	"encoding/binary"

	dskerrors "github.com/retrocompute/fat8d88/errors"
)

const (
	HeaderSize      = 4
	MaxImageWidth   = 80  // bytes, i.e. 640 pixels
	MaxImageHeight  = 200 // lines
	planeChannelR   = 0
	planeChannelG   = 1
	planeChannelB   = 2
)

// planeOrder is the order in which the three color channels are
// decoded and encoded: Blue, Red, Green.
var planeOrder = [3]int{planeChannelB, planeChannelR, planeChannelG}

// Header is the 4-byte dimension header at the start of a RBYTE
// stream: width in bytes (8-pixel groups) and height in lines.
type Header struct {
	WidthBytes int
	Height     int
}

func parseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, dskerrors.ErrUnexpectedEOF.WithMessage("not enough data for RBYTE header")
	}
	width := int(binary.LittleEndian.Uint16(data[0:2]))
	height := int(binary.LittleEndian.Uint16(data[2:4]))
	if width > MaxImageWidth {
		return Header{}, dskerrors.ErrImageMalformed.WithMessage("image width exceeds screen width")
	}
	if height > MaxImageHeight {
		return Header{}, dskerrors.ErrImageMalformed.WithMessage("image height exceeds screen height")
	}
	return Header{WidthBytes: width, Height: height}, nil
}
