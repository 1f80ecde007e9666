// Package httpapi exposes validation runs over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/eykd/tabvet/internal/domain"
	"github.com/eykd/tabvet/internal/validation"
)

// maxBodyBytes bounds the size of a validate request body.
const maxBodyBytes = 1 << 20

// Validator runs one mode against a base path.
type Validator interface {
	Validate(ctx context.Context, mode domain.Mode, basePath string) (*validation.Run, error)
}

// Logger is the subset of a structured logger the server writes to.
type Logger interface {
	Infow(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithDataRoot confines requested base paths to root. Request paths are
// then interpreted relative to root and cannot escape it.
func WithDataRoot(root string) Option {
	return func(s *Server) { s.dataRoot = root }
}

// Server is the HTTP front end for validation runs.
type Server struct {
	validator Validator
	logger    Logger
	metrics   http.Handler
	dataRoot  string
	router    *chi.Mux
	server    *http.Server
}

// NewServer creates a Server with its routes configured.
func NewServer(v Validator, logger Logger, opts ...Option) *Server {
	s := &Server{validator: v, logger: logger, router: chi.NewRouter()}
	for _, opt := range opts {
		opt(s)
	}
	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Post("/v1/validate", s.handleValidate)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics)
	}
	return s
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start listens on addr until Shutdown is called. Shutdown may be called
// before Start; Start then returns nil without serving.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.logger.Infow("server listening", "addr", ln.Addr().String())
	err = s.server.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// ValidateRequest is the body of POST /v1/validate.
type ValidateRequest struct {
	Mode     string `json:"mode"`
	BasePath string `json:"base_path"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid_body", fmt.Errorf("invalid request body: %w", err))
		return
	}

	mode, err := domain.ParseMode(req.Mode)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid_mode", err)
		return
	}
	if strings.TrimSpace(req.BasePath) == "" {
		s.respondError(w, r, http.StatusBadRequest, "invalid_base_path", errors.New("base_path is required"))
		return
	}

	run, err := s.validator.Validate(r.Context(), mode, s.resolve(req.BasePath))
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "validation_failed", err)
		return
	}
	errCount, warnCount := run.Counts()
	s.logger.Infow("validation served",
		"run_id", run.ID,
		"mode", mode,
		"errors", errCount,
		"warnings", warnCount,
		"request_id", middleware.GetReqID(r.Context()),
	)
	respondJSON(w, http.StatusOK, NewRunResponse(run, ""))
}

func (s *Server) resolve(basePath string) string {
	if s.dataRoot == "" {
		return basePath
	}
	return filepath.Join(s.dataRoot, filepath.Clean("/"+basePath))
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, code string, err error) {
	s.logger.Errorw("request error",
		"path", r.URL.Path,
		"status", status,
		"code", code,
		"error", err,
		"request_id", middleware.GetReqID(r.Context()),
	)
	respondJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
