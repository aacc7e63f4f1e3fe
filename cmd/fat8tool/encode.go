package main

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/retrocompute/fat8d88/rbyte"
	"github.com/retrocompute/fat8d88/rbyte88"
)

func rbyteEncodeAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("usage: rbyte-enc [-O level] FILE.png", 1)
	}
	path := c.Args().Get(0)
	img, err := loadImage(path)
	if err != nil {
		return err
	}
	encoded := rbyte.EncodeRBYTE(img, c.Int("opt-level"))
	// 0x1E0 is the lowest BLOAD load address that doesn't overwrite the
	// RBYTE decoder routine, per the BLOAD wrapper's own load-address floor.
	return os.WriteFile(outputBinPath(path), rbyte.WrapBLOAD(0x1E0, encoded), 0o644)
}

func rbyte88EncodeAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("usage: rbyte88-enc FILE.png", 1)
	}
	path := c.Args().Get(0)
	img, err := loadImage(path)
	if err != nil {
		return err
	}
	encoded := rbyte88.EncodeRBYTE88(img)
	return os.WriteFile(outputBinPath(path), encoded, 0o644)
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

func outputBinPath(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return filepath.Join(filepath.Dir(path), base+".bin")
}
