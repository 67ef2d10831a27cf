// Package server hosts the HTTP middleware stack shared by the local sandbox.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultRequestTimeout bounds handler execution.
const DefaultRequestTimeout = 30 * time.Second

type Server struct {
	Router *chi.Mux
	Addr   string
	logger *slog.Logger
}

// New builds a router with the standard middleware chain. Routes are mounted
// on Router by the caller.
func New(addr string, logger *slog.Logger) *Server {
	r := chi.NewRouter()

	// Apply middleware in order
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(TimeoutMiddleware(DefaultRequestTimeout))
	r.Use(middleware.Recoverer)

	// Wrap with OpenTelemetry HTTP instrumentation
	r.Use(tracing("snaptrade-sandbox"))

	return &Server{
		Router: r,
		Addr:   addr,
		logger: logger,
	}
}

type originalURLKey struct{}

type originalURL struct {
	url        *url.URL
	requestURI string
}

// tracing wraps next with otelhttp. The query is hidden from the instrumentation
// because it carries userSecret, then restored for the handler.
func tracing(operation string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		restore := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if orig, ok := r.Context().Value(originalURLKey{}).(originalURL); ok {
				r.URL = orig.url
				r.RequestURI = orig.requestURI
			}
			next.ServeHTTP(w, r)
		})
		traced := otelhttp.NewHandler(restore, operation)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), originalURLKey{}, originalURL{url: r.URL, requestURI: r.RequestURI})
			r = r.WithContext(ctx)
			u := *r.URL
			u.RawQuery = ""
			r.URL = &u
			r.RequestURI = u.RequestURI()
			traced.ServeHTTP(w, r)
		})
	}
}

// Start serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", slog.String("addr", s.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
