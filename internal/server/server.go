// Package server exposes networks over HTTP.
//
// The API stores structural documents, and serves layouts and rendered
// diagrams derived from them. Layouts and artifacts are cached under
// content hashes, so repeated reads of an unchanged network never recompute.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mlindahl/layernet/pkg/cache"
	"github.com/mlindahl/layernet/pkg/store"
)

// Server handles HTTP requests for the network API.
type Server struct {
	store  store.Store
	cache  cache.Cache
	keyer  cache.Keyer
	logger *log.Logger
}

// New creates a server backed by the given store and artifact cache.
// A nil cache disables artifact caching; a nil logger falls back to the default.
func New(st store.Store, ca cache.Cache, logger *log.Logger) *Server {
	if ca == nil {
		ca = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		store:  st,
		cache:  ca,
		keyer:  cache.NewDefaultKeyer(),
		logger: logger,
	}
}

// Router builds the chi routing tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Post("/compile", s.handleCompile)
	r.Post("/layout", s.handleLayoutOneShot)

	r.Route("/networks", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Get("/", s.handleList)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Put("/", s.handleUpdate)
			r.Delete("/", s.handleDelete)
			r.Get("/layout", s.handleLayout)
			r.Get("/render", s.handleRender)
		})
	})

	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
