// Package server exposes the coordinate pipeline, the text cipher and the decoy store over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/math-2025/protected-geo/logging"
	"github.com/math-2025/protected-geo/obfuscate"
	"github.com/math-2025/protected-geo/store"
)

const maxBodyBytes = 1 << 20

// Server serves the HTTP API
type Server struct {
	store     store.Store
	log       logging.Logger
	tolerance float64
	router    chi.Router
}

// New creates the server. A non positive tolerance falls back to obfuscate.DefaultTolerance.
func New(s store.Store, logger logging.Logger, tolerance float64) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	if tolerance <= 0 {
		tolerance = obfuscate.DefaultTolerance
	}
	srv := &Server{
		store:     s,
		log:       logger,
		tolerance: tolerance,
	}
	srv.router = srv.routes()
	return srv
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.health)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/coordinates", func(r chi.Router) {
			r.Post("/encrypt", s.encryptCoordinates)
			r.Post("/decrypt", s.decryptCoordinates)
			r.Post("/verify", s.verifyCoordinates)
		})
		r.Route("/messages", func(r chi.Router) {
			r.Post("/encrypt", s.encryptMessage)
			r.Post("/decrypt", s.decryptMessage)
		})
		r.Route("/decoys", func(r chi.Router) {
			r.Post("/", s.createDecoy)
			r.Get("/{id}", s.getDecoy)
			r.Delete("/{id}", s.deleteDecoy)
			r.Post("/{id}/verify", s.verifyDecoy)
		})
		r.Get("/targets/{id}/decoys", s.listDecoys)
		r.Delete("/targets/{id}/decoys", s.deleteTargetDecoys)
	})
	return r
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on the address until the context is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		s.log.Info("listening", "address", addr)
		errs <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errs; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
