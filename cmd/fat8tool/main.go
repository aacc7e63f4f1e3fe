package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.App{
		Name:      "fat8tool",
		Usage:     "Decode D88/FAT8 floppy images and RBYTE raster images",
		ArgsUsage: "FILE.d88 [FILE.d88 ...]",
		Action:    extractAction,
		Commands: []*cli.Command{
			{
				Name:      "rbyte",
				Usage:     "Decode a BLOAD-wrapped RBYTE (PC-98) file to PNG",
				ArgsUsage: "FILE.bin [XOFF YOFF]",
				Action:    rbyteDecodeAction,
			},
			{
				Name:      "rbyte88",
				Usage:     "Decode a RBYTE-88 (PC-88) file to PNG",
				ArgsUsage: "FILE.bin [XOFF YOFF]",
				Action:    rbyte88DecodeAction,
			},
			{
				Name:      "rbyte-enc",
				Usage:     "Encode an image to RBYTE (PC-98) format",
				ArgsUsage: "FILE.png",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "opt-level", Aliases: []string{"O"}, Value: 16, Usage: "line-reference search depth, 0-32"},
				},
				Action: rbyteEncodeAction,
			},
			{
				Name:      "rbyte88-enc",
				Usage:     "Encode an image to RBYTE-88 (PC-88) format",
				ArgsUsage: "FILE.png",
				Action:    rbyte88EncodeAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}
