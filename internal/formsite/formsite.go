// internal/formsite/formsite.go
// Package formsite serves a local replica of the practice registration form so runs and tests do
// not depend on the public site being reachable.
package formsite

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// FormPath is the route of the form, matching the public site's path.
const FormPath = "/automation-practice-form"

// SamplePicturePath serves the bundled picture used by upload scenarios.
const SamplePicturePath = "/assets/sample.png"

//go:embed assets/form.html
var formHTML []byte

//go:embed assets/sample.png
var samplePicture []byte

// SamplePicture returns a small valid PNG suitable for the picture upload field.
func SamplePicture() []byte {
	out := make([]byte, len(samplePicture))
	copy(out, samplePicture)
	return out
}

// Handler returns the replica's router. A nil logger disables request logging.
func Handler(logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("formsite")

	r := chi.NewRouter()
	r.Use(noCache)
	r.Use(requestLogger(logger))

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, FormPath, http.StatusFound)
	})
	r.Get(FormPath, serveForm)
	r.Get(SamplePicturePath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(samplePicture)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

func serveForm(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	_, _ = w.Write(formHTML)
}

func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Debug("Served request.",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("elapsed", time.Since(start)),
			)
		})
	}
}

// Server is a running replica bound to a local address.
type Server struct {
	srv    *http.Server
	ln     net.Listener
	errc   chan error
	logger *zap.Logger
}

// Start listens on addr (e.g. "127.0.0.1:0") and serves the replica in the background.
func Start(addr string, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s := &Server{
		srv: &http.Server{
			Handler:           Handler(logger),
			ReadHeaderTimeout: 5 * time.Second,
		},
		ln:     ln,
		errc:   make(chan error, 1),
		logger: logger.Named("formsite"),
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errc <- err
		}
		close(s.errc)
	}()
	s.logger.Info("Replica form listening.", zap.String("url", s.FormURL()))
	return s, nil
}

// BaseURL is the server root, e.g. http://127.0.0.1:41234.
func (s *Server) BaseURL() string { return "http://" + s.ln.Addr().String() }

// FormURL is the address of the form page.
func (s *Server) FormURL() string { return s.BaseURL() + FormPath }

// Err delivers a serve failure, and is closed when the server stops.
func (s *Server) Err() <-chan error { return s.errc }

// Shutdown stops accepting connections and waits for active requests, bounded by ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	for range s.errc {
	}
	return err
}
