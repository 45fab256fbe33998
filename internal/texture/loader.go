// Package texture locates, decodes and re-encodes the bitmaps referenced by
// imported materials.
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
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
)

var (
	// ErrUnsupportedFormat is returned for bitmap types that cannot be decoded.
	ErrUnsupportedFormat = errors.New("unsupported texture format")
	// ErrTruncated is returned for TGA data too short to hold a footer probe.
	ErrTruncated = errors.New("truncated texture data")
)

// tgaMinSize is the TGA footer length. The decoder seeks back this far from
// the end of the data, so anything shorter cannot be read.
const tgaMinSize = 26

type codec struct {
	decode       func(io.Reader) (image.Image, error)
	decodeConfig func(io.Reader) (image.Config, error)
}

// codecs is keyed by lower-case extension. TGA has no magic number, so
// formats are picked by extension rather than sniffed.
var codecs = map[string]codec{
	".tga":  {decodeTGA, decodeTGAConfig},
	".bmp":  {bmp.Decode, bmp.DecodeConfig},
	".png":  {png.Decode, png.DecodeConfig},
	".jpg":  {jpeg.Decode, jpeg.DecodeConfig},
	".jpeg": {jpeg.Decode, jpeg.DecodeConfig},
}

// Supported reports whether the extension of path can be decoded.
func Supported(path string) bool {
	_, ok := codecs[strings.ToLower(filepath.Ext(path))]
	return ok
}

func codecFor(path string) (codec, error) {
	c, ok := codecs[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return codec{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	return c, nil
}

func readTGA(r io.Reader) (*bytes.Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) < tgaMinSize {
		return nil, fmt.Errorf("%w: %d bytes of TGA", ErrTruncated, len(data))
	}
	return bytes.NewReader(data), nil
}

func decodeTGA(r io.Reader) (image.Image, error) {
	br, err := readTGA(r)
	if err != nil {
		return nil, err
	}
	return tga.Decode(br)
}

func decodeTGAConfig(r io.Reader) (image.Config, error) {
	br, err := readTGA(r)
	if err != nil {
		return image.Config{}, err
	}
	return tga.DecodeConfig(br)
}

// Load reads a TGA, BMP, PNG or JPEG file and returns it as NRGBA.
func Load(path string) (*image.NRGBA, error) {
	if _, err := codecFor(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("texture: open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f, path)
}

// Decode decodes a bitmap, choosing the codec from the extension of name.
func Decode(r io.Reader, name string) (*image.NRGBA, error) {
	c, err := codecFor(name)
	if err != nil {
		return nil, err
	}
	img, err := c.decode(r)
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", name, err)
	}
	return toNRGBA(img), nil
}

// Size returns the dimensions of a bitmap without decoding its pixels.
func Size(path string) (width, height int, err error) {
	if _, err := codecFor(path); err != nil {
		return 0, 0, err
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("texture: open %s: %w", path, err)
	}
	defer f.Close()
	return DecodeSize(f, path)
}

// DecodeSize reads only the header of a bitmap.
func DecodeSize(r io.Reader, name string) (width, height int, err error) {
	c, err := codecFor(name)
	if err != nil {
		return 0, 0, err
	}
	cfg, err := c.decodeConfig(r)
	if err != nil {
		return 0, 0, fmt.Errorf("texture: decode %s: %w", name, err)
	}
	return cfg.Width, cfg.Height, nil
}

// toNRGBA converts any image to NRGBA format.
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
