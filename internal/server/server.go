// Package server serves a directory tree over HTTP with literate-programming
// extras: virtual editable documents for classifiable sources (via
// weave/internal/vfs), decorated directory listings, and markdown pages.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"weave/internal/classify"
	"weave/internal/config"
	"weave/internal/render"
	"weave/internal/vfs"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	root       string
	port       int
	reg        *classify.Registry
	fileServer http.Handler
	log        *slog.Logger
}

// New builds a server for cfg.Server.Root. The static file handler is an
// http.FileServer over the synthesizing file system, so virtual documents and
// real files share one serving path.
func New(cfg *config.Config, logger *slog.Logger) *Server {
	reg := classify.NewRegistry(cfg.Languages)
	asm := render.NewAssembler(cfg.Editor)
	fsys := vfs.New(http.Dir(cfg.Server.Root), reg, asm)
	return &Server{
		root:       cfg.Server.Root,
		port:       cfg.Server.Port,
		reg:        reg,
		fileServer: http.FileServer(fsys),
		log:        logger,
	}
}

// Handler returns the full request handler, with request logging applied.
func (s *Server) Handler() http.Handler {
	return s.loggingMiddleware(http.HandlerFunc(s.serve))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	if containsDotDot(r.URL.Path) {
		http.Error(w, "invalid URL path", http.StatusBadRequest)
		return
	}
	upath := r.URL.Path
	if !strings.HasPrefix(upath, "/") {
		upath = "/" + upath
	}
	upath = path.Clean(upath)

	local := filepath.Join(s.root, filepath.FromSlash(upath))
	if fi, err := os.Stat(local); err == nil {
		switch {
		case fi.IsDir():
			// A directory with its own index.html is served as usual; the
			// decorated listing only stands in when there is none.
			if _, err := os.Stat(filepath.Join(local, "index.html")); err == nil {
				break
			}
			s.serveListing(w, r, local, upath)
			return
		case strings.EqualFold(filepath.Ext(local), ".md"):
			s.serveMarkdown(w, r, local)
			return
		}
	}

	s.fileServer.ServeHTTP(w, r)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		s.log.Info("HTTP request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", wrapped.statusCode),
			slog.Duration("duration", time.Since(start)),
			slog.String("remote_addr", r.RemoteAddr))
	})
}

// responseWriter captures status codes for logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func containsDotDot(p string) bool {
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return true
		}
	}
	return false
}

// Addr reports the address the server listens on; used for startup messages.
func (s *Server) Addr() string {
	return net.JoinHostPort("127.0.0.1", fmt.Sprintf("%d", s.port))
}
