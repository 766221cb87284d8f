package slice

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	errs "github.com/matzehuels/spriteslicer/pkg/errors"
)

// ManifestName is the filename of the manifest written next to exported slices.
const ManifestName = "atlas.json"

type manifest struct {
	SourcePath  string          `json:"SourcePath"`
	ImageWidth  int             `json:"ImageWidth"`
	ImageHeight int             `json:"ImageHeight"`
	Slices      []manifestSlice `json:"Slices"`
}

type manifestSlice struct {
	X      int    `json:"X"`
	Y      int    `json:"Y"`
	Width  int    `json:"Width"`
	Height int    `json:"Height"`
	Name   string `json:"Name"`
}

// WriteManifest encodes s as indented JSON and writes it to w.
// The output can be re-read with [ReadManifest] without loss.
func WriteManifest(s *Set, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toManifest(s)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// MarshalManifest returns the manifest encoding of s.
func MarshalManifest(s *Set) ([]byte, error) {
	return json.MarshalIndent(toManifest(s), "", "  ")
}

func toManifest(s *Set) manifest {
	out := manifest{
		SourcePath:  s.SourcePath,
		ImageWidth:  s.ImageWidth,
		ImageHeight: s.ImageHeight,
		Slices:      make([]manifestSlice, len(s.Slices)),
	}
	for i, r := range s.Slices {
		out.Slices[i] = manifestSlice(r)
	}
	return out
}

// ReadManifest decodes a manifest from r and validates it.
//
// ReadManifest returns an INVALID_MANIFEST error if the JSON is malformed or
// any slice violates the bounds invariant for the recorded image size.
// ReadManifest does not close r.
func ReadManifest(r io.Reader) (*Set, error) {
	var data manifest
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidManifest, err, "decode manifest")
	}

	s := New(data.SourcePath, data.ImageWidth, data.ImageHeight)
	s.Slices = make([]Rect, len(data.Slices))
	for i, ms := range data.Slices {
		s.Slices[i] = Rect(ms)
	}
	if err := s.Validate(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidManifest, err, "validate manifest")
	}
	return s, nil
}

// ExportManifest writes s to a manifest file at path.
func ExportManifest(s *Set, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "create %s", path)
	}
	if err := WriteManifest(s, f); err != nil {
		f.Close()
		return errs.Wrap(errs.ErrCodeIO, err, "write %s", path)
	}
	if err := f.Close(); err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "close %s", path)
	}
	return nil
}

// ImportManifest reads and validates the manifest file at path.
func ImportManifest(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()
	return ReadManifest(f)
}
