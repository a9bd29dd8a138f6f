// Package texture decodes texture images into GPU-ready RGBA pixels.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"
)

// ErrEmptyImage is returned for images with no pixels.
var ErrEmptyImage = errors.New("image has no pixels")

// Image is tightly packed 8-bit RGBA pixel data, bottom row first.
type Image struct {
	Pix      []byte
	Width    int
	Height   int
	Channels int
}

type decoder struct {
	format string
	match  func(data []byte) bool
	decode func(r io.Reader) (image.Image, error)
}

func prefix(magic string) func([]byte) bool {
	return func(data []byte) bool { return bytes.HasPrefix(data, []byte(magic)) }
}

func isWebP(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP"
}

// decoders is tried in order. TGA has no signature and the tga package
// registers an empty magic string that matches any input, so formats are
// sniffed here rather than through image.Decode.
var decoders = []decoder{
	{"png", prefix("\x89PNG\r\n\x1a\n"), png.Decode},
	{"jpeg", prefix("\xff\xd8"), jpeg.Decode},
	{"bmp", prefix("BM"), bmp.Decode},
	{"webp", isWebP, webp.Decode},
}

// sniff picks a decoder by file signature, falling back to TGA.
func sniff(data []byte) decoder {
	for _, d := range decoders {
		if d.match(data) {
			return d
		}
	}
	return decoder{format: "tga", decode: tga.Decode}
}

// Decode decodes PNG, JPEG, BMP, WebP or TGA data and flips it vertically
// so row 0 is the bottom of the picture, as OpenGL samples it.
func Decode(data []byte) (*Image, error) {
	d := sniff(data)
	src, err := d.decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s image: %w", d.format, err)
	}

	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("decode %s: %w", d.format, ErrEmptyImage)
	}

	rgba := toRGBA(src)
	return &Image{
		Pix:      flipRows(rgba.Pix, b.Dx()*4, b.Dy()),
		Width:    b.Dx(),
		Height:   b.Dy(),
		Channels: 4,
	}, nil
}

func toRGBA(src image.Image) *image.RGBA {
	if rgba, ok := src.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == rgba.Rect.Dx()*4 {
		return rgba
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// flipRows returns a copy of pix with its rows in reverse order.
func flipRows(pix []byte, rowLen, rows int) []byte {
	out := make([]byte, rowLen*rows)
	for y := 0; y < rows; y++ {
		copy(out[y*rowLen:(y+1)*rowLen], pix[(rows-1-y)*rowLen:(rows-y)*rowLen])
	}
	return out
}
