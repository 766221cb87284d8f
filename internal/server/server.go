// Package server exposes spriteslicer's slicing over HTTP.
//
// # Routes
//
//	GET  /healthz         liveness and version
//	POST /v1/slice/auto   multipart "image"; query alpha_threshold, min_width, min_height, pad, refresh
//	POST /v1/slice/grid   multipart "image"; query cell_width, cell_height, margin, name_cells
//
// Both slice routes answer with the slice set in atlas.json format. Errors
// are JSON objects {"code": "...", "message": "..."}.
//
// Uploaded images are never written to disk. Each upload is given the
// source path upload/<uuid>/<filename> so results can be told apart in logs.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/spriteslicer/pkg/cache"
	"github.com/matzehuels/spriteslicer/pkg/pipeline"
)

// DefaultMaxUploadBytes bounds the size of an uploaded image.
const DefaultMaxUploadBytes = 32 << 20

// DefaultMaxPixels bounds the decoded size of an uploaded image.
const DefaultMaxPixels = 64 << 20

// keyPrefix separates server cache entries from CLI entries in a shared backend.
const keyPrefix = "server:"

// shutdownTimeout is how long in-flight requests get after the context ends.
const shutdownTimeout = 10 * time.Second

// Server serves the slicing API.
type Server struct {
	runner    *pipeline.Runner
	logger    *log.Logger
	defaults  pipeline.Options
	maxUpload int64
	maxPixels int
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxUploadBytes limits the request body size. Values <= 0 are ignored.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// WithMaxPixels limits the pixel count of images sliced in auto mode.
// Zero disables the limit.
func WithMaxPixels(n int) Option {
	return func(s *Server) {
		if n >= 0 {
			s.maxPixels = n
		}
	}
}

// WithDefaults sets the slicing parameters used when a query omits them.
func WithDefaults(opts pipeline.Options) Option {
	return func(s *Server) {
		s.defaults = opts
	}
}

// New creates a server that caches auto results in c. A nil cache disables
// caching.
func New(c cache.Cache, opts ...Option) *Server {
	s := &Server{
		logger:    log.New(io.Discard),
		defaults:  pipeline.DefaultOptions(),
		maxUpload: DefaultMaxUploadBytes,
		maxPixels: DefaultMaxPixels,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.runner = pipeline.NewRunner(c, cache.NewScopedKeyer(nil, keyPrefix), s.logger)
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1/slice", func(r chi.Router) {
		r.Post("/auto", s.handleSlice(pipeline.ModeAuto))
		r.Post("/grid", s.handleSlice(pipeline.ModeGrid))
	})
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases the cache.
func (s *Server) Close() error {
	return s.runner.Close()
}
