// Package server - HTTP front end for the detection pipeline.
package server

import (
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-detect/history"
	"github.com/nvr-ai/go-detect/models"
	"github.com/nvr-ai/go-detect/pipeline"
	"github.com/nvr-ai/go-detect/profiler"
)

//go:embed templates/*.html
var templateFS embed.FS

// Runner executes one detection request.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// History exposes stored runs. A nil History disables the history endpoints.
type History interface {
	Recent(ctx context.Context, limit int) ([]history.Run, error)
	Records(ctx context.Context, runID string) ([]history.Detection, error)
}

// Options holds request defaults and limits.
type Options struct {
	DefaultModel     models.Name
	DefaultThreshold float32
	// MaxUploadBytes caps the multipart body and websocket messages.
	MaxUploadBytes int64
	// Profiler backs /api/stats. Nil disables the endpoint.
	Profiler *profiler.Profiler
}

// Server serves the upload page, the JSON API and the websocket channel.
type Server struct {
	runner   Runner
	history  History
	opts     Options
	log      logrus.FieldLogger
	tmpl     *template.Template
	upgrader websocket.Upgrader
}

// New creates a Server.
//
// Arguments:
//   - runner: The detection pipeline.
//   - hist: Stored runs, or nil when history is disabled.
//   - opts: Request defaults and limits.
//   - log: The logger.
//
// Returns:
//   - *Server: The server.
//   - error: An error if the page templates fail to parse.
func New(runner Runner, hist History, opts Options, log logrus.FieldLogger) (*Server, error) {
	tmpl, err := template.New("pages").Funcs(template.FuncMap{
		"pct": func(f float32) string { return formatThreshold(f) },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse templates")
	}

	if opts.DefaultModel == "" {
		opts.DefaultModel = models.DefaultModel
	}
	if opts.DefaultThreshold == 0 {
		opts.DefaultThreshold = 0.5
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 20 << 20
	}

	return &Server{
		runner:  runner,
		history: hist,
		opts:    opts,
		log:     log.WithField("component", "server"),
		tmpl:    tmpl,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /detect", s.handleDetectPage)

	mux.HandleFunc("POST /api/detect", s.handleDetectAPI)
	mux.HandleFunc("GET /api/detect/ws", s.handleDetectWS)
	mux.HandleFunc("GET /api/models", s.handleModels)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /api/history/{id}", s.handleHistoryRecords)
	mux.HandleFunc("GET /api/stats", s.handleStats)

	return s.logRequests(mux)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.log.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
			"remote": r.RemoteAddr,
		}).Debug("request")
		next.ServeHTTP(w, r)
	})
}

// statusFor maps a pipeline or upload error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrUnknownModel),
		errors.Is(err, pipeline.ErrInvalidThreshold),
		errors.Is(err, pipeline.ErrNoImage),
		errors.Is(err, errBadUpload):
		return http.StatusBadRequest
	case errors.Is(err, errTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, pipeline.ErrModelLoad):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
