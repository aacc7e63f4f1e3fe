package main

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/retrocompute/fat8d88/pngutil"
	"github.com/retrocompute/fat8d88/rbyte"
	"github.com/retrocompute/fat8d88/rbyte88"
)

func rbyteDecodeAction(c *cli.Context) error {
	path, xOffset, yOffset, err := parseDecodeArgs(c)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	data, err := rbyte.UnwrapBLOAD(raw)
	if err != nil {
		return err
	}
	img, err := rbyte.Decode(data, xOffset, yOffset)
	if err != nil {
		return err
	}
	return writeDecodedPNG(path, "rbyte", xOffset, yOffset, img)
}

func rbyte88DecodeAction(c *cli.Context) error {
	path, xOffset, yOffset, err := parseDecodeArgs(c)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	img, err := rbyte88.Decode(data, xOffset, yOffset)
	if err != nil {
		return err
	}
	return writeDecodedPNG(path, "rbyte88", xOffset, yOffset, img)
}

func parseDecodeArgs(c *cli.Context) (path string, xOffset, yOffset *int, err error) {
	if c.NArg() < 1 {
		return "", nil, nil, cli.Exit("usage: FILE.bin [XOFF YOFF]", 1)
	}
	path = c.Args().Get(0)
	if c.NArg() < 3 {
		return path, nil, nil, nil
	}
	x, err := strconv.Atoi(c.Args().Get(1))
	if err != nil {
		return "", nil, nil, fmt.Errorf("invalid x offset: %w", err)
	}
	y, err := strconv.Atoi(c.Args().Get(2))
	if err != nil {
		return "", nil, nil, fmt.Errorf("invalid y offset: %w", err)
	}
	return path, &x, &y, nil
}

// writeDecodedPNG names the output "<basename>_<label>.png" or, when
// offsets were given, "<basename>_<xoff>_<yoff>_<label>.png".
func writeDecodedPNG(path, label string, xOffset, yOffset *int, img image.Image) error {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	suffix := ""
	if xOffset != nil && yOffset != nil {
		suffix = fmt.Sprintf("_%d_%d", *xOffset, *yOffset)
	}
	outPath := filepath.Join(filepath.Dir(path), fmt.Sprintf("%s%s_%s.png", base, suffix, label))

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return pngutil.EncodeWithGamma(f, img)
}
