// Package server exposes the quiz service over HTTP for the local UI.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/studykit/studykit/internal/catalog"
	"github.com/studykit/studykit/internal/llm"
	"github.com/studykit/studykit/internal/quiz"
)

// Server wires the HTTP handlers to the quiz service.
type Server struct {
	service  *quiz.Service
	catalog  *catalog.Catalog
	settings llm.Settings
	log      *logrus.Logger

	// dial builds the provider for the status probe. Swapped in tests.
	dial func(llm.Settings) (llm.Provider, error)
}

// Option configures a Server.
type Option func(*Server)

// WithDialer replaces provider construction for the status probe.
func WithDialer(dial func(llm.Settings) (llm.Provider, error)) Option {
	return func(s *Server) { s.dial = dial }
}

// New builds a Server. settings is the default provider configuration;
// requests may not override it.
func New(service *quiz.Service, c *catalog.Catalog, settings llm.Settings, log *logrus.Logger, opts ...Option) *Server {
	s := &Server{service: service, catalog: c, settings: settings, log: log, dial: llm.New}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the chi router with the standard middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/providers", s.handleProviders)
		r.Get("/providers/{id}/models", s.handleProviderModels)
		r.Get("/providers/{id}/status", s.handleProviderStatus)
		r.Post("/questions", s.handleGenerateQuestion)
		r.Post("/evaluations", s.handleEvaluateAnswer)
		r.Post("/elaborations", s.handleElaborate)
	})

	return r
}

// requestLogger logs one line per request through logrus.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"elapsed_ms": time.Since(start).Milliseconds(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Info("http request")
	})
}
