package rbyte88

import (
	"image"
	"image/color"

	"github.com/retrocompute/fat8d88/rbyte"
)

const (
	maxEncodeWidthPx  = 8 * MaxImageWidth
	maxEncodeHeightPx = 2 * MaxImageHeight
)

// EncodeRBYTE88 quantizes an RGB image through the same stipple table
// RBYTE (PC-98) uses, tries both row-major and column-major pixel
// traversal, and returns whichever produces the smaller encoded
// payload, prefixed with the 2-byte header.
func EncodeRBYTE88(img image.Image) []byte {
	img = fitWithinScreen(img, maxEncodeWidthPx, maxEncodeHeightPx)
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	widthBytes := (w + 7) / 8
	heightLines := (h + 1) / 2

	var best []byte
	for _, vertical := range [2]bool{false, true} {
		candidate := encodeOneDirection(img, bounds, w, h, widthBytes, heightLines, vertical)
		if best == nil || len(candidate) < len(best) {
			best = candidate
		}
	}
	return best
}

func encodeOneDirection(img image.Image, bounds image.Rectangle, w, h, widthBytes, heightLines int, vertical bool) []byte {
	width, height := widthBytes, heightLines
	planeSize := width * height

	header := []byte{byte(width), byte(height)}
	if vertical {
		header[0] |= 0x80
	}
	out := append([]byte{}, header...)

	for _, channel := range planeOrder {
		plane := make([]byte, planeSize)
		for k := 0; k < planeSize; k++ {
			x, y := planeIndex(k, width, height, vertical)
			plane[k] = packPixelByte(img, bounds, x, y, w, h, channel)
		}
		out = append(out, compressPlane(plane)...)
	}
	return out
}

func packPixelByte(img image.Image, bounds image.Rectangle, x, y, w, h, channel int) byte {
	var b byte
	for i := 0; i < 8; i++ {
		px := 8*x + i
		var lum byte
		if px < w {
			lum = channelLuminance(img, bounds, px, y, h, channel)
		}
		lumx := (int(lum)*11 + 128) / 255
		b <<= 1
		if stippleBitExported(y, lumx, i, x) {
			b |= 1
		}
	}
	return b
}

// channelLuminance and stippleBitExported are shared pixel-sampling
// logic with the PC-98 encoder's stipple table: RBYTE-88 quantizes
// through the same 9x12 ordered dither, just without the reference-
// line opcode search that follows it.
func channelLuminance(img image.Image, bounds image.Rectangle, x, y, h, channel int) byte {
	p1 := rgbAt(img, bounds, x, 2*y)
	p2 := p1
	if 1+2*y < h {
		p2 = rgbAt(img, bounds, x, 1+2*y)
	}
	sum := func(p [3]byte) int { return int(p[0]) + int(p[1]) + int(p[2]) }
	if sum(p1) >= sum(p2) {
		return p1[channel]
	}
	return p2[channel]
}

func rgbAt(img image.Image, bounds image.Rectangle, x, y int) [3]byte {
	c := color.RGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.RGBA)
	return [3]byte{c.R, c.G, c.B}
}

func fitWithinScreen(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxW && h <= maxH {
		return img
	}
	scale := float64(maxW) / float64(w)
	if hs := float64(maxH) / float64(h); hs < scale {
		scale = hs
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	for y := 0; y < newH; y++ {
		sy := b.Min.Y + y*h/newH
		for x := 0; x < newW; x++ {
			sx := b.Min.X + x*w/newW
			dst.Set(x, y, img.At(sx, sy))
		}
	}
	return dst
}

// compressPlane runs the double-byte-repeat compressor over a flat
// plane, the inverse of decompress in decode.go: a byte that repeats
// the previous one is followed by a repeat-count byte one past its
// earlier value, capped at 0xFF (after which a fresh run begins).
func compressPlane(plane []byte) []byte {
	out := make([]byte, 0, len(plane))
	var prevByte byte
	prevCount := 0

	for _, b := range plane {
		switch {
		case prevCount == 0 || (prevCount == 1 && prevByte != b):
			out = append(out, b)
			prevByte, prevCount = b, 1
		case prevCount == 1 && prevByte == b:
			out = append(out, b, 0x01)
			prevCount = 2
		case prevCount == 2:
			repeat := out[len(out)-1] + 1
			out[len(out)-1] = repeat
			if repeat == 0xFF {
				prevCount = 0
			}
		}
	}
	return out
}

// stippleBitExported reuses rbyte's stipple table via its exported
// helper so both RBYTE variants quantize through the identical
// ordered-dither pattern.
func stippleBitExported(y, lumx, i, x int) bool {
	return rbyte.StippleBit(y, lumx, i, x)
}
