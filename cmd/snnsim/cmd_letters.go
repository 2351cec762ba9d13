package main

import (
	"fmt"
	"image"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/db47h/snnsim/letters"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newLettersCmd() *cobra.Command {
	var (
		outDir string
		format string
		noise  int
		seed   uint64
	)
	cmd := &cobra.Command{
		Use:   "letters [letter...]",
		Short: "Show or export the stimulus letters",
		Long: `Show the built-in letters, all of them if none is given.

With --out, the images are written to the given directory as
generated_<letter>.<format> instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = letters.Names()
			}
			switch format {
			case "png", "bmp":
			default:
				return errors.Errorf("unsupported image format %q", format)
			}
			if err := checkNoise(noise); err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(seed, seed))
			if outDir != "" {
				if err := os.MkdirAll(outDir, 0755); err != nil {
					return errors.Wrap(err, "create output directory")
				}
			}
			for _, name := range args {
				img, err := letters.Glyph(name)
				if err != nil {
					return err
				}
				if noise > 0 {
					img = letters.Noisy(img, noise, rng)
				}
				if outDir == "" {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\n", strings.ToUpper(name))
					draw(cmd.OutOrStdout(), img)
					continue
				}
				fn := filepath.Join(outDir, "generated_"+strings.ToUpper(name)+"."+format)
				if err = letters.Save(fn, img); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), fn)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "Write images to this directory")
	cmd.Flags().StringVar(&format, "format", "png", "Image format: png or bmp")
	cmd.Flags().IntVar(&noise, "noise", 0, "Background noise amplitude (0-255)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Noise seed")
	return cmd
}

// draw prints img as text, one character per pixel.
//
func draw(w io.Writer, img *image.Gray) {
	const ramp = " .:-=+*#%@"
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		var sb strings.Builder
		for x := b.Min.X; x < b.Max.X; x++ {
			sb.WriteByte(ramp[int(img.GrayAt(x, y).Y)*(len(ramp)-1)/255])
		}
		fmt.Fprintln(w, strings.TrimRight(sb.String(), " "))
	}
}
