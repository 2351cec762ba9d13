// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package letters provides the 5x5 letter images presented to the network.
//
// Every letter is drawn in white (255) on a black (0) background. Flattened
// in row-major order, an image yields one pixel per input neuron.
//
package letters

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
)

// Size is the width and height of a letter image.
//
const Size = 5

// Foreground and Background are the letter and background intensities.
//
const (
	Foreground = 255
	Background = 0
)

// pixel positions as (x, y)
var glyphs = map[string][][2]int{
	"I": {{2, 1}, {2, 2}, {2, 3}},
	"O": {{1, 1}, {2, 1}, {3, 1}, {1, 2}, {3, 2}, {1, 3}, {2, 3}, {3, 3}},
	"X": {{1, 1}, {3, 1}, {2, 2}, {1, 3}, {3, 3}},
	"C": {{1, 1}, {2, 1}, {3, 1}, {1, 2}, {1, 3}, {2, 3}, {3, 3}},
	"F": {{1, 0}, {1, 1}, {1, 2}, {1, 3}, {2, 0}, {3, 0}, {2, 2}, {3, 2}},
	"H": {{1, 1}, {3, 1}, {2, 2}, {1, 3}, {3, 3}, {1, 2}, {3, 2}},
	"K": {{1, 1}, {3, 1}, {1, 2}, {1, 3}, {3, 3}, {2, 2}},
	"L": {{1, 0}, {1, 1}, {1, 2}, {1, 3}, {2, 3}, {3, 3}},
	"P": {{1, 0}, {1, 1}, {1, 2}, {1, 3}, {2, 0}, {2, 2}, {3, 0}, {3, 2}, {3, 1}},
	"T": {{1, 0}, {2, 0}, {3, 0}, {2, 1}, {2, 2}, {2, 3}},
	"U": {{1, 0}, {1, 1}, {1, 2}, {1, 3}, {3, 0}, {3, 1}, {3, 2}, {3, 3}, {2, 3}},
	"Y": {{1, 1}, {3, 1}, {2, 2}, {2, 3}},
}

// Names returns the available letters in alphabetical order.
//
func Names() []string {
	out := make([]string, 0, len(glyphs))
	for k := range glyphs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Glyph returns a new image of the named letter.
//
func Glyph(name string) (*image.Gray, error) {
	ps, ok := glyphs[strings.ToUpper(name)]
	if !ok {
		return nil, errors.Errorf("unknown letter %q", name)
	}
	img := image.NewGray(image.Rect(0, 0, Size, Size))
	for _, p := range ps {
		img.SetGray(p[0], p[1], color.Gray{Y: Foreground})
	}
	return img, nil
}

// Noisy returns a copy of img where background pixels are replaced by random
// intensities in [0, max). Foreground pixels are left untouched. max is
// capped to Foreground so that noise never reaches the foreground intensity.
//
func Noisy(img *image.Gray, max int, rng *rand.Rand) *image.Gray {
	out := image.NewGray(img.Bounds())
	copy(out.Pix, img.Pix)
	if max <= 0 {
		return out
	}
	if max > Foreground {
		max = Foreground
	}
	for i, p := range out.Pix {
		if p != Foreground {
			out.Pix[i] = uint8(rng.IntN(max))
		}
	}
	return out
}

// Flatten returns the pixel intensities of img in row-major order.
//
func Flatten(img image.Image) []uint8 {
	g := ToGray(img)
	b := g.Bounds()
	out := make([]uint8, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := g.PixOffset(b.Min.X, y)
		out = append(out, g.Pix[i:i+b.Dx()]...)
	}
	return out
}

// ToGray returns img if it is a gray image, or a gray copy of it.
//
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	g := image.NewGray(img.Bounds())
	draw.Draw(g, g.Bounds(), img, img.Bounds().Min, draw.Src)
	return g
}

// Load decodes a PNG or BMP image file.
//
func Load(filename string) (image.Image, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "load image")
	}
	defer f.Close()
	var img image.Image
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".bmp":
		img, err = bmp.Decode(f)
	default:
		img, err = png.Decode(f)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", filename)
	}
	return img, nil
}

// Save encodes img to filename. The format is BMP if the file name ends with
// ".bmp", PNG otherwise.
//
func Save(filename string, img image.Image) error {
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "save image")
	}
	if strings.ToLower(filepath.Ext(filename)) == ".bmp" {
		err = bmp.Encode(f, img)
	} else {
		err = png.Encode(f, img)
	}
	if err != nil {
		f.Close()
		return errors.Wrapf(err, "encode %s", filename)
	}
	return errors.Wrap(f.Close(), "save image")
}

// Image returns the image of a stimulus: the name of a built-in letter, or
// the path of an image file.
//
func Image(stimulus string) (*image.Gray, error) {
	if img, err := Glyph(stimulus); err == nil {
		return img, nil
	}
	img, err := Load(stimulus)
	if err != nil {
		return nil, err
	}
	return ToGray(img), nil
}

// Pixels returns the flattened pixels of a stimulus.
//
func Pixels(stimulus string) ([]uint8, error) {
	img, err := Image(stimulus)
	if err != nil {
		return nil, err
	}
	return Flatten(img), nil
}
