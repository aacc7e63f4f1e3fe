package rbyte

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"

	"github.com/noxer/bytewriter"
)

const (
	maxEncodeWidthPx  = 8 * MaxImageWidth
	maxEncodeHeightPx = 2 * MaxImageHeight
)

// stipples is the 9x12 ordered-dither table: row index is the output
// line number modulo 9, column index is a quantized luminance level
// 0..11. Each cell is a short bit pattern sampled modulo its own
// length across horizontal pixel positions. A handful of cells use
// "/" filler and are unreachable for any (row, column) pair the table
// actually selects.
var stipples = func() [9][12]string {
	rows := [9]string{
		"0000 00000001 000001000 0001 001 0011 0101 011 1101 111110111 11101111 1111",
		"0000 00000000 000000001 0000 010 0011 1010 110 1111 111111110 11111111 1111",
		"0000 00010000 001000000 0100 100 1100 0101 101 0111 110111111 11111110 1111",
		"0000 00000000 000001000 0000 /// 1100 1010 /// 1111 111110111 11111111 1111",
		"//// 00000001 000000001 //// /// //// //// /// //// 111111110 11101111 ////",
		"//// 00000000 001000000 //// /// //// //// /// //// 110111111 11111111 ////",
		"//// 00010000 000001000 //// /// //// //// /// //// 111110111 11111110 ////",
		"//// 00000000 000000001 //// /// //// //// /// //// 111111110 11111111 ////",
		"//// //////// 001000000 //// /// //// //// /// //// 110111111 //////// ////",
	}
	var out [9][12]string
	for i, row := range rows {
		cols := bytes.Fields([]byte(row))
		for j, cell := range cols {
			out[i][j] = string(cell)
		}
	}
	return out
}()

// stippleBit reproduces the reference encoder's two-step stipple
// lookup: an initial row pick by y modulo the table's row count, then
// a second pick using the first cell's own length as the modulus,
// before testing bit k of the cell string directly (equivalent to the
// source's "reverse the bit string, then test bit k of the reversed
// value", since reversing twice cancels out).
func stippleBit(y, lumx, i, xByte int) bool {
	row := y % len(stipples)
	cell := stipples[row][lumx]
	row = y % len(cell) % len(stipples)
	cell = stipples[row][lumx]
	k := (i + 8*xByte) % len(cell)
	return cell[k] == '1'
}

// StippleBit exposes the RBYTE (PC-98) ordered-dither table to the
// RBYTE-88 encoder, which quantizes through the same stipple pattern.
func StippleBit(y, lumx, i, xByte int) bool {
	return stippleBit(y, lumx, i, xByte)
}

// EncodeRBYTE quantizes an RGB image through the stipple table and
// produces a RBYTE (PC-98) byte stream at the given optimization
// level (0 disables line-reference compression; higher levels search
// more reference rows and reference-line opcode forms).
func EncodeRBYTE(img image.Image, optLevel int) []byte {
	img = fitWithinScreen(img, maxEncodeWidthPx, maxEncodeHeightPx)
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	widthBytes := (w + 7) / 8
	heightLines := (h + 1) / 2

	header := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint16(header[0:2], uint16(widthBytes))
	binary.LittleEndian.PutUint16(header[2:4], uint16(heightLines))

	// A row's encoding is never chosen over the plain literal form
	// unless it's shorter, so width+1 per row is a safe upper bound.
	buf := make([]byte, HeaderSize+3*heightLines*(widthBytes+1))
	bw := bytewriter.New(buf)
	total, _ := bw.Write(header)

	for _, channel := range planeOrder {
		rawRows := make([][]byte, heightLines)
		for y := 0; y < heightLines; y++ {
			rawRows[y] = packPlaneRow(img, bounds, y, widthBytes, w, h, channel)
		}
		for y := 0; y < heightLines; y++ {
			n, _ := bw.Write(encodeRow(rawRows, y, widthBytes, optLevel))
			total += n
		}
	}
	return buf[:total]
}

func packPlaneRow(img image.Image, bounds image.Rectangle, y, widthBytes, w, h, channel int) []byte {
	row := make([]byte, widthBytes)
	for xByte := 0; xByte < widthBytes; xByte++ {
		var b byte
		for i := 0; i < 8; i++ {
			px := 8*xByte + i
			var lum byte
			if px < w {
				lum = channelLuminance(img, bounds, px, y, h, channel)
			}
			lumx := (int(lum)*(len(stipples[0])-1) + 128) / 255
			b <<= 1
			if stippleBit(y, lumx, i, xByte) {
				b |= 1
			}
		}
		row[xByte] = b
	}
	return row
}

// channelLuminance picks the brighter of the two source scanlines a
// scan-doubled output line was built from and returns that pixel's
// value on the requested channel.
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

// fitWithinScreen nearest-neighbor-scales img down to fit within
// maxW x maxH, preserving aspect ratio; images already within bounds
// are returned unchanged. No image-resampling library appears
// anywhere in the example pack, so this uses only the image/color
// stdlib packages, matching the pack's only other image codec
// (vp8-go) in that respect.
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

// encodeRow picks the shortest encoding of rawRows[y] among the
// literal form, the 0x40 repeat-run form, and the four reference-line
// forms (0x80/0x90/0xA0/0xB0) against each of the previous 1..N rows
// the optimization level allows, per best_line's tie-break rule.
func encodeRow(rawRows [][]byte, y, width, optLevel int) []byte {
	raw := rawRows[y]
	best := append([]byte{0x00}, raw...)

	maxOffset := 0
	if optLevel > 2 {
		maxOffset = (optLevel - 1) >> 1
		if maxOffset > 15 {
			maxOffset = 15
		}
	}
	for yOffset := 1; yOffset <= maxOffset; yOffset++ {
		if y-yOffset < 0 {
			continue
		}
		best = referenceLineForms(raw, rawRows[y-yOffset], yOffset, width, optLevel, best)
	}
	best = bestLine(best, runLength40(raw, optLevel), optLevel)
	return best
}

func bestLine(current, prospective []byte, optLevel int) []byte {
	if optLevel > 0 && (len(prospective) < len(current) ||
		(optLevel&1 == 1 && len(current) == len(prospective) && current[0] == 0x00)) {
		return prospective
	}
	return current
}

// runLength40 encodes raw as (data, repeat) pairs terminated by a
// 0xFF repeat count, and returns whichever of that or the plain
// literal form is preferred.
func runLength40(raw []byte, optLevel int) []byte {
	literal := append([]byte{0x00}, raw...)
	enc := []byte{0x40}
	i := 0
	for i < len(raw) {
		data := raw[i]
		repeat := 1
		i++
		for i < len(raw) && raw[i] == data {
			i++
			repeat++
		}
		if i == len(raw) {
			repeat = 0xFF
		}
		enc = append(enc, data, byte(repeat))
	}
	return bestLine(literal, enc, optLevel)
}

// referenceLineForms tries the copy-previous-line, mixed-copy-draw,
// skip-mask-copy, and mixed-copy-literal-run encodings of raw against
// prev (the row yOffset lines above), folding each into best.
func referenceLineForms(raw, prev []byte, yOffset, width, optLevel int, best []byte) []byte {
	if bytes.Equal(raw, prev) {
		best = bestLine(best, []byte{0x80 | byte(yOffset)}, optLevel)
	}

	draw := []byte{0x90 | byte(yOffset)}
	i := 0
	for i < width {
		if bytes.Equal(raw[i:], prev[i:]) {
			break
		}
		count := 0
		for i+1 < width && raw[i] == prev[i] {
			i++
			count++
		}
		draw = append(draw, byte(count), raw[i])
		i++
	}
	draw = append(draw, 0xFF)
	best = bestLine(best, draw, optLevel)

	tailStart := (width / 8) * 8
	if bytes.Equal(raw[tailStart:], prev[tailStart:]) {
		regions := width / 8
		masks := make([]byte, regions)
		var data []byte
		for region := 0; region < regions; region++ {
			for n := 0; n < 8; n++ {
				masks[region] <<= 1
				x := region*8 + n
				if raw[x] != prev[x] {
					masks[region] |= 1
					data = append(data, raw[x])
				}
			}
		}
		skip := append([]byte{0xA0 | byte(yOffset)}, masks...)
		skip = append(skip, data...)
		best = bestLine(best, skip, optLevel)
	}

	if draw2, ok := mixedCopyLiteralForm(raw, prev, yOffset, width); ok {
		best = bestLine(best, draw2, optLevel)
	}
	return best
}

// mixedCopyLiteralForm builds the 0xB0 reference-line encoding. The
// decoder's first opcode read in a row either starts a copy run
// (nonzero count) or, only when that count is exactly zero, switches
// to reading a literal run length directly; every literal run entered
// any other way is reached through a copy's terminator byte, which
// does support an 0xFF "rest of row is literal" sentinel. A row whose
// very first run is a literal one (no leading copy at all) that then
// runs to the end of the row has no safe way to signal that through
// this opcode, so such rows don't get a 0xB0 candidate.
func mixedCopyLiteralForm(raw, prev []byte, yOffset, width int) ([]byte, bool) {
	draw2 := []byte{0xB0 | byte(yOffset)}
	i := 0
	first := true
	for i < width {
		if bytes.Equal(raw[i:], prev[i:]) {
			draw2 = append(draw2, 0xFF)
			return draw2, true
		}
		count := 0
		for i < width && raw[i] == prev[i] {
			i++
			count++
		}
		reachedEnd := i == width
		if reachedEnd {
			count = 0xFF
		}
		draw2 = append(draw2, byte(count))

		count2 := 0
		var px2 []byte
		for i < width && raw[i] != prev[i] {
			px2 = append(px2, raw[i])
			i++
			count2++
		}
		if i == width {
			if first && count == 0 {
				return nil, false
			}
			count2 = 0xFF
		}
		draw2 = append(draw2, byte(count2))
		draw2 = append(draw2, px2...)
		first = false
	}
	return draw2, true
}
