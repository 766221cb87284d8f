package export

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	errs "github.com/matzehuels/spriteslicer/pkg/errors"
	"github.com/matzehuels/spriteslicer/pkg/observability"
	"github.com/matzehuels/spriteslicer/pkg/pixel"
	"github.com/matzehuels/spriteslicer/pkg/slice"
)

// Mode selects how output files are written.
type Mode int

const (
	// ModeDirect creates each file in place, overwriting unconditionally.
	ModeDirect Mode = iota
	// ModeAtomic writes each file to a temporary name and renames it into place.
	ModeAtomic
)

// String returns "direct" or "atomic".
func (m Mode) String() string {
	if m == ModeAtomic {
		return "atomic"
	}
	return "direct"
}

// Decoder loads the source image of a slice set.
type Decoder func(path string) (image.Image, error)

// Encoder writes one cropped slice.
type Encoder func(w io.Writer, img image.Image) error

// EncodePNG encodes img as PNG. It is the default [Encoder].
func EncodePNG(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.PNG)
}

// Exporter writes slice sets to an output directory.
// The zero value is not usable; construct one with [New].
type Exporter struct {
	Decode Decoder
	Encode Encoder
	Mode   Mode
	Logger *log.Logger
}

// Option configures an [Exporter].
type Option func(*Exporter)

// WithMode sets the write mode (default ModeDirect).
func WithMode(m Mode) Option {
	return func(e *Exporter) { e.Mode = m }
}

// WithLogger sets the logger used for per-file debug output.
func WithLogger(l *log.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.Logger = l
		}
	}
}

// WithDecoder replaces the source image decoder (default pixel.Open).
func WithDecoder(d Decoder) Option {
	return func(e *Exporter) { e.Decode = d }
}

// WithEncoder replaces the slice encoder (default EncodePNG).
func WithEncoder(enc Encoder) Option {
	return func(e *Exporter) { e.Encode = enc }
}

// New returns an Exporter that decodes with pixel.Open, encodes PNG and
// writes in ModeDirect unless configured otherwise.
func New(opts ...Option) *Exporter {
	e := &Exporter{
		Decode: pixel.Open,
		Encode: EncodePNG,
		Mode:   ModeDirect,
		Logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export crops every rectangle of subset out of the image at sourcePath and
// writes it to outDir, followed by the manifest. It returns the number of
// slices written.
//
// Export must not run concurrently on the same outDir.
func (e *Exporter) Export(ctx context.Context, sourcePath string, subset *slice.Set, outDir string) (n int, err error) {
	if subset == nil || subset.Len() == 0 {
		return 0, errs.New(errs.ErrCodeEmptySelection, "no slices selected")
	}
	if err := errs.ValidateOutputDir(outDir); err != nil {
		return 0, err
	}
	for _, r := range subset.Slices {
		if err := errs.ValidateSliceName(r.Name); err != nil {
			return 0, err
		}
	}

	start := time.Now()
	hooks := observability.Export()
	hooks.OnExportStart(ctx, outDir, subset.Len())
	defer func() {
		hooks.OnExportComplete(ctx, outDir, n, time.Since(start), err)
	}()

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return 0, errs.Wrap(errs.ErrCodeIO, err, "create output directory %s", outDir)
	}

	src, err := e.Decode(sourcePath)
	if err != nil {
		if errs.GetCode(err) == "" {
			err = errs.Wrap(errs.ErrCodeDecode, err, "decode %s", sourcePath)
		}
		return 0, err
	}
	bounds := src.Bounds()

	for i, r := range subset.Slices {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if err := r.Validate(bounds.Dx(), bounds.Dy()); err != nil {
			return n, fmt.Errorf("slice %d: %w", i, err)
		}

		cropped := imaging.Crop(src, r.Bounds().Add(bounds.Min))
		path := filepath.Join(outDir, r.Name+".png")
		if err := e.writeFile(path, func(w io.Writer) error { return e.Encode(w, cropped) }); err != nil {
			return n, errs.Wrap(errs.ErrCodeIO, err, "write slice %d to %s", i, path)
		}
		n++
		hooks.OnSliceWritten(ctx, path)
		e.Logger.Debug("wrote slice", "index", i, "path", path, "size", fmt.Sprintf("%dx%d", r.Width, r.Height))
	}

	manifestPath := filepath.Join(outDir, slice.ManifestName)
	if err := e.writeFile(manifestPath, func(w io.Writer) error { return slice.WriteManifest(subset, w) }); err != nil {
		return n, errs.Wrap(errs.ErrCodeIO, err, "write manifest %s", manifestPath)
	}
	e.Logger.Debug("wrote manifest", "path", manifestPath)

	return n, nil
}

func (e *Exporter) writeFile(path string, write func(io.Writer) error) error {
	if e.Mode == ModeAtomic {
		return writeAtomic(path, write)
	}
	return writeDirect(path, write)
}

func writeDirect(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writeAtomic writes to a temporary file next to path and renames it over
// path. The temporary file is removed on any failure.
func writeAtomic(path string, write func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
