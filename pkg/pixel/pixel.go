// Package pixel decodes spritesheet images into RGBA8 buffers.
//
// The slicers only need to read alpha values; [Buffer] exposes exactly that
// plus the decoded image for callers that crop from it. Decoding goes through
// github.com/disintegration/imaging with the golang.org/x/image BMP, TIFF and
// WEBP decoders registered, so PNG, JPEG, GIF, BMP, TIFF and WEBP sheets are
// all readable.
package pixel

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	errs "github.com/matzehuels/spriteslicer/pkg/errors"
)

// SupportedExtensions lists the file extensions accepted as spritesheets.
var SupportedExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".gif", ".tif", ".tiff", ".webp"}

// IsSupported reports whether path has a supported image extension.
// The comparison is case-insensitive.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Buffer is a decoded image held as non-premultiplied RGBA8 pixels.
// A Buffer is never modified after construction.
type Buffer struct {
	Path   string
	Width  int
	Height int

	img *image.NRGBA
}

// New wraps raw RGBA8 pixel data of the given size. pix is row-major with
// four bytes per pixel and is not copied.
func New(path string, width, height int, pix []byte) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "buffer size %dx%d must be positive", width, height)
	}
	if len(pix) != width*height*4 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "buffer has %d bytes, want %d for %dx%d RGBA",
			len(pix), width*height*4, width, height)
	}
	img := &image.NRGBA{
		Pix:    pix,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}
	return &Buffer{Path: path, Width: width, Height: height, img: img}, nil
}

// FromImage converts img to a Buffer with its origin moved to (0,0).
// img is copied; later changes to it do not affect the Buffer.
func FromImage(path string, img image.Image) *Buffer {
	nrgba := imaging.Clone(img)
	b := nrgba.Bounds()
	return &Buffer{Path: path, Width: b.Dx(), Height: b.Dy(), img: nrgba}
}

// Alpha returns the alpha value of the pixel at (x, y).
// Coordinates must lie inside the buffer.
func (b *Buffer) Alpha(x, y int) uint8 {
	return b.img.Pix[y*b.img.Stride+x*4+3]
}

// Image returns the buffer as an image. The result must not be modified.
func (b *Buffer) Image() image.Image {
	return b.img
}

// Decode reads and decodes the image file at path.
func Decode(path string) (*Buffer, error) {
	if !IsSupported(path) {
		return nil, errs.New(errs.ErrCodeUnsupportedFormat, "unsupported image type %q (want one of %s)",
			filepath.Ext(path), strings.Join(SupportedExtensions, ", "))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeDecode, err, "read %s", path)
	}
	return DecodeBytes(path, data)
}

// DecodeBytes decodes image data that was read from path.
// The path is only recorded on the Buffer; no file is opened.
func DecodeBytes(path string, data []byte) (*Buffer, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeDecode, err, "decode %s", path)
	}
	return FromImage(path, img), nil
}

// Open decodes the image at path without converting it to a Buffer.
// It is the decoder used by the exporter, which only needs to crop.
func Open(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeDecode, err, "decode %s", path)
	}
	return img, nil
}

// DecodeConfig returns the dimensions of encoded image data without decoding
// its pixels.
func DecodeConfig(path string, data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, errs.Wrap(errs.ErrCodeDecode, err, "decode header of %s", path)
	}
	return cfg.Width, cfg.Height, nil
}
