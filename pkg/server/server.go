// Package server serves the project root so the results viewer can load
// results.json and compare originals against their AVIF and WebP outputs.
package server

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"megrep/pkg/logger"
)

//go:embed viewer/index.html
var viewerFS embed.FS

var viewerTemplate = template.Must(template.ParseFS(viewerFS, "viewer/index.html"))

var mimeTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "application/javascript",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".avif": "image/avif",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
}

// ContentType returns the MIME type served for name
func ContentType(name string) string {
	if t, ok := mimeTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return t
	}
	return "application/octet-stream"
}

// Options configures a Server. ContentsURL and ResultsURL are the
// slash-separated locations of the content root and results.json under
// Root, as the viewer requests them.
type Options struct {
	Root        string
	Addr        string
	ContentsURL string
	ResultsURL  string
	Logger      logger.Logger
}

// Server is a read-only static file server rooted at a project directory
type Server struct {
	root   string
	addr   string
	viewer []byte
	logger logger.Logger
}

// New creates a server and renders the viewer page for its layout
func New(opts Options) (*Server, error) {
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}
	contents := opts.ContentsURL
	if contents == "" {
		contents = "contents"
	}
	resultsURL := opts.ResultsURL
	if resultsURL == "" {
		resultsURL = "results.json"
	}

	var page bytes.Buffer
	err := viewerTemplate.Execute(&page, struct{ Contents, Results string }{
		Contents: strings.Trim(contents, "/"),
		Results:  strings.TrimPrefix(resultsURL, "/"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render viewer: %w", err)
	}

	return &Server{
		root:   filepath.Clean(opts.Root),
		addr:   opts.Addr,
		viewer: page.Bytes(),
		logger: log.WithField("component", "server"),
	}, nil
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.addr
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.InfoWithFields("Server listening", map[string]interface{}{
			"addr": s.addr,
			"root": s.root,
		})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	}
}

// Handler returns the request handler
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		s.serve(rec, r)
		s.logger.DebugWithFields("Request served", map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": rec.status,
		})
	})
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodGet, http.MethodHead:
	default:
		sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	for _, seg := range strings.Split(r.URL.Path, "/") {
		if seg == ".." {
			sendError(w, http.StatusForbidden, "Forbidden")
			return
		}
	}

	urlPath := path.Clean("/" + r.URL.Path)
	if urlPath == "/" || urlPath == "/index.html" {
		s.serveViewer(w, r)
		return
	}

	full := filepath.Join(s.root, filepath.FromSlash(urlPath))
	if rel, err := filepath.Rel(s.root, full); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		sendError(w, http.StatusForbidden, "Forbidden")
		return
	}

	info, err := os.Stat(full)
	if err != nil {
		sendError(w, http.StatusNotFound, "Not Found")
		return
	}
	if info.IsDir() {
		full = filepath.Join(full, "index.html")
		if info, err = os.Stat(full); err != nil || info.IsDir() {
			sendError(w, http.StatusNotFound, "Directory listing not allowed")
			return
		}
	}

	f, err := os.Open(full)
	if err != nil {
		s.logger.WithError(err).WithField("path", full).Warn("Failed to open file")
		sendError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	defer f.Close()

	h.Set("Content-Type", ContentType(full))
	h.Set("Cache-Control", "no-cache")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func (s *Server) serveViewer(w http.ResponseWriter, r *http.Request) {
	page := s.viewer
	w.Header().Set("Content-Type", ContentType("index.html"))
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Content-Length", fmt.Sprint(len(page)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(page)
	}
}

func sendError(w http.ResponseWriter, status int, message string) {
	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>Error %d</title></head>
<body style="font-family: sans-serif; text-align: center; margin-top: 50px">
<h1>Error %d</h1>
<p>%s</p>
<p><a href="/">Back to the viewer</a></p>
</body>
</html>
`, status, status, message)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", fmt.Sprint(len(body)))
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
