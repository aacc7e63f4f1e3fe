package rbyte88

import (
	"image"
	"image/color"

	dskerrors "github.com/retrocompute/fat8d88/errors"
)

// Decode decodes a RBYTE-88 (PC-88) image. When xOffset/yOffset are
// both nil the returned image is exactly the header's dimensions,
// scan-doubled; otherwise it is placed at the given byte/line offset
// within a full 640x400 screen-sized transparent canvas.
func Decode(data []byte, xOffset, yOffset *int) (*image.RGBA, error) {
	header, err := parseHeader(data)
	if err != nil {
		return nil, err
	}
	width, height := header.WidthBytes, header.Height

	if xOffset != nil && (*xOffset < 0 || *xOffset > MaxImageWidth) {
		return nil, dskerrors.ErrInvalidArgument.WithMessage("x offset exceeds screen width")
	}
	if yOffset != nil && (*yOffset < 0 || *yOffset > MaxImageHeight) {
		return nil, dskerrors.ErrInvalidArgument.WithMessage("y offset exceeds screen height")
	}

	xoff, yoff, canvasWidthBytes, canvasHeightLines := placement(xOffset, yOffset, width, height, MaxImageWidth, MaxImageHeight)
	if xoff+width > MaxImageWidth {
		return nil, dskerrors.ErrImageMalformed.WithMessage("x offset places image past the right edge of the screen")
	}
	if yoff+height > MaxImageHeight {
		return nil, dskerrors.ErrImageMalformed.WithMessage("y offset places image past the bottom edge of the screen")
	}

	planeSize := width * height
	decoded, derr := decompress(data[HeaderSize:], planeSize, 3)
	if derr != nil {
		return nil, derr
	}

	canvas := image.NewRGBA(image.Rect(0, 0, 8*canvasWidthBytes, 2*canvasHeightLines))
	fillPlaceholder(canvas, xoff, yoff, width, height)

	for planeNum, channel := range planeOrder {
		plane := decoded[planeNum*planeSize : (planeNum+1)*planeSize]
		paintPlane(canvas, plane, channel, xoff, yoff, width, height, header.Vertical)
	}
	return canvas, nil
}

func placement(xOffset, yOffset *int, width, height, maxWidth, maxHeight int) (xoff, yoff, canvasWidth, canvasHeight int) {
	if xOffset != nil {
		xoff = *xOffset
		canvasWidth = maxWidth
	} else {
		canvasWidth = width
	}
	if yOffset != nil {
		yoff = *yOffset
		canvasHeight = maxHeight
	} else {
		canvasHeight = height
	}
	return
}

// decompress runs the double-byte-repeat decompressor over body,
// emitting exactly planeSize bytes per plane for numPlanes planes
// (resetting the "previous byte" run-tracking state at each plane
// boundary) before treating any further input as a sector-padding
// trailer: it must begin with Ctrl-Z (0x1A) and the total input
// length must then be a multiple of the FAT8 sector size.
func decompress(body []byte, planeSize, numPlanes int) ([]byte, error) {
	want := planeSize * numPlanes
	out := make([]byte, 0, want)
	var prevByte byte
	prevCount := 0 // 0 = no run tracked, 1 = one byte seen, 2 = a matching pair seen
	trailerStarted := false
	planeStart := 0

	for _, b := range body {
		if len(out) >= want && prevCount != 2 {
			if !trailerStarted {
				if b != 0x1A {
					return nil, dskerrors.ErrImageMalformed.WithMessage("extra bytes at end of RBYTE-88 data must begin with Ctrl-Z (EOF)")
				}
				trailerStarted = true
			}
			continue
		}
		switch {
		case prevCount == 0 || (prevCount == 1 && prevByte != b):
			prevByte, prevCount = b, 1
			out = append(out, b)
		case prevCount == 1 && prevByte == b:
			prevCount = 2
			out = append(out, b)
		case prevCount == 2:
			if b < 1 {
				return nil, dskerrors.ErrImageMalformed.WithMessage("repeat count cannot be zero")
			}
			for i := 0; i < int(b)-1 && len(out) < want && len(out)-planeStart < planeSize; i++ {
				out = append(out, prevByte)
			}
			prevCount = 0
		}
		// A pair that completes a plane is still followed by its
		// repeat-count byte, so the reset waits until that byte is read.
		if len(out)-planeStart >= planeSize && prevCount != 2 {
			planeStart = len(out)
			prevByte, prevCount = 0, 0
		}
	}
	if len(out) < want {
		return nil, dskerrors.ErrUnexpectedEOF.WithMessage("RBYTE-88 data ended before all three planes were decoded")
	}
	if trailerStarted && (len(body)+HeaderSize)%sectorSize != 0 {
		return nil, dskerrors.ErrImageMalformed.WithMessage("padded RBYTE-88 data length must be a multiple of the sector size")
	}
	return out, nil
}

func paintPlane(canvas *image.RGBA, plane []byte, channel, xoff, yoff, width, height int, vertical bool) {
	for k, dataByte := range plane {
		px, py := planeIndex(k, width, height, vertical)
		x, y := xoff+px, yoff+py
		for i := 0; i < 8; i++ {
			bit := byte(255) * ((dataByte >> uint(7-i)) & 1)
			col := 8*x + i
			line1 := canvas.RGBAAt(col, 2*y)
			line2 := canvas.RGBAAt(col, 1+2*y)
			setChannel(&line1, channel, bit)
			setChannel(&line2, channel, bit)
			line1.A, line2.A = 255, 255
			canvas.SetRGBA(col, 2*y, line1)
			canvas.SetRGBA(col, 1+2*y, line2)
		}
	}
}

func fillPlaceholder(canvas *image.RGBA, xoff, yoff, width, height int) {
	for y := yoff; y < yoff+height; y++ {
		for x := xoff; x < xoff+width; x++ {
			for i := 0; i < 8; i++ {
				px := 8*x + i
				canvas.Set(px, 2*y, color.RGBA{
					R: byte(64 + 18*(px%8)),
					G: byte(64 + 18*((px+2*y)%8)),
					B: byte(64 + 18*((2*y)%8)),
					A: 127,
				})
				canvas.Set(px, 1+2*y, color.RGBA{
					R: byte(64 + 18*(px%8)),
					G: byte(64 + 18*((px+1+2*y)%8)),
					B: byte(64 + 18*((1+2*y)%8)),
					A: 127,
				})
			}
		}
	}
}

func setChannel(c *color.RGBA, channel int, value byte) {
	switch channel {
	case planeChannelR:
		c.R = value
	case planeChannelG:
		c.G = value
	case planeChannelB:
		c.B = value
	}
}
