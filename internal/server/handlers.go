package server

import (
	"errors"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/matzehuels/spriteslicer/pkg/buildinfo"
	errs "github.com/matzehuels/spriteslicer/pkg/errors"
	"github.com/matzehuels/spriteslicer/pkg/pipeline"
	"github.com/matzehuels/spriteslicer/pkg/pixel"
	"github.com/matzehuels/spriteslicer/pkg/slice"
)

// uploadField is the multipart field carrying the image.
const uploadField = "image"

// cacheHeader reports whether an auto result came from the cache.
const cacheHeader = "X-Slice-Cache"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleSlice(mode string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := s.sliceOptions(r, mode)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		source, data, err := s.readUpload(w, r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		set, stats, err := s.runner.SliceBytes(r.Context(), source, data, opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		if mode == pipeline.ModeAuto {
			hit := "miss"
			if stats.CacheHit {
				hit = "hit"
			}
			w.Header().Set(cacheHeader, hit)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := slice.WriteManifest(set, w); err != nil {
			s.logger.Warn("write response", "error", err)
		}
	}
}

// sliceOptions builds pipeline options from the server defaults and the query.
func (s *Server) sliceOptions(r *http.Request, mode string) (pipeline.Options, error) {
	opts := s.defaults
	opts.Mode = mode
	opts.Logger = nil
	opts.MaxPixels = s.maxPixels

	q := queryParams{r: r}
	if mode == pipeline.ModeAuto {
		q.int("alpha_threshold", &opts.AlphaThreshold)
		q.int("min_width", &opts.MinWidth)
		q.int("min_height", &opts.MinHeight)
		q.int("pad", &opts.Pad)
		q.bool("refresh", &opts.Refresh)
	} else {
		q.int("cell_width", &opts.CellWidth)
		q.int("cell_height", &opts.CellHeight)
		q.int("margin", &opts.Margin)
		q.bool("name_cells", &opts.NameCells)
	}
	return opts, q.err
}

// readUpload reads the image part of a multipart request and returns its
// synthetic source path together with the encoded bytes.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return "", nil, errs.New(errs.ErrCodeInvalidInput, "upload exceeds %d bytes", s.maxUpload)
		}
		return "", nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "missing multipart field %q", uploadField)
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if !pixel.IsSupported(name) {
		return "", nil, errs.New(errs.ErrCodeUnsupportedFormat, "unsupported image type %q", filepath.Ext(name))
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read upload")
	}
	return path.Join("upload", uuid.NewString(), name), data, nil
}

// queryParams parses query values, keeping the first error.
type queryParams struct {
	r   *http.Request
	err error
}

func (q *queryParams) int(name string, dst *int) {
	raw := q.r.URL.Query().Get(name)
	if raw == "" || q.err != nil {
		return
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		q.err = errs.New(errs.ErrCodeInvalidInput, "query parameter %s: %q is not an integer", name, raw)
		return
	}
	*dst = v
}

func (q *queryParams) bool(name string, dst *bool) {
	raw := q.r.URL.Query().Get(name)
	if raw == "" || q.err != nil {
		return
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		q.err = errs.New(errs.ErrCodeInvalidInput, "query parameter %s: %q is not a boolean", name, raw)
		return
	}
	*dst = v
}
