package slice

import (
	"image"

	errs "github.com/matzehuels/spriteslicer/pkg/errors"
)

// Rect is one slice of a spritesheet in image space (origin top-left).
// Name is the output filename stem and may be empty.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
	Name   string
}

// Bounds returns the rectangle as an image.Rectangle for cropping.
func (r Rect) Bounds() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Validate checks r against an image of the given size.
func (r Rect) Validate(imageWidth, imageHeight int) error {
	switch {
	case r.Width <= 0 || r.Height <= 0:
		return errs.New(errs.ErrCodeInvalidSlice, "slice %q has non-positive size %dx%d", r.Name, r.Width, r.Height)
	case r.X < 0 || r.Y < 0:
		return errs.New(errs.ErrCodeInvalidSlice, "slice %q has negative origin (%d,%d)", r.Name, r.X, r.Y)
	case r.Width > imageWidth-r.X || r.Height > imageHeight-r.Y:
		return errs.New(errs.ErrCodeInvalidSlice, "slice %q (%d,%d %dx%d) exceeds image %dx%d",
			r.Name, r.X, r.Y, r.Width, r.Height, imageWidth, imageHeight)
	}
	return nil
}

// Set is an ordered collection of slices plus the source image metadata.
type Set struct {
	SourcePath  string
	ImageWidth  int
	ImageHeight int
	Slices      []Rect
}

// New returns an empty Set for the given source image.
func New(source string, imageWidth, imageHeight int) *Set {
	return &Set{
		SourcePath:  source,
		ImageWidth:  imageWidth,
		ImageHeight: imageHeight,
		Slices:      []Rect{},
	}
}

// Len returns the number of slices.
func (s *Set) Len() int {
	return len(s.Slices)
}

// Validate checks the image size and every slice against it.
func (s *Set) Validate() error {
	if s.ImageWidth <= 0 || s.ImageHeight <= 0 {
		return errs.New(errs.ErrCodeInvalidSlice, "image size %dx%d must be positive", s.ImageWidth, s.ImageHeight)
	}
	for i, r := range s.Slices {
		if err := r.Validate(s.ImageWidth, s.ImageHeight); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidSlice, err, "slice %d", i)
		}
	}
	return nil
}

// Subset returns a new Set with the same image metadata holding the slices at
// indices, in the order given. The receiver is not modified.
func (s *Set) Subset(indices []int) (*Set, error) {
	out := New(s.SourcePath, s.ImageWidth, s.ImageHeight)
	out.Slices = make([]Rect, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(s.Slices) {
			return nil, errs.New(errs.ErrCodeInvalidSelection, "index %d out of range [0,%d)", i, len(s.Slices))
		}
		out.Slices = append(out.Slices, s.Slices[i])
	}
	return out, nil
}

// SubsetFunc returns a new Set holding the slices for which keep returns true.
func (s *Set) SubsetFunc(keep func(i int, r Rect) bool) *Set {
	out := New(s.SourcePath, s.ImageWidth, s.ImageHeight)
	for i, r := range s.Slices {
		if keep(i, r) {
			out.Slices = append(out.Slices, r)
		}
	}
	return out
}
