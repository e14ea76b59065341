// Package server exposes the chat UI and the question-answering endpoints.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/smallnest/medichat/chain"
	"github.com/smallnest/medichat/log"
	"github.com/smallnest/medichat/metrics"
	"github.com/smallnest/medichat/rag"
)

// Routes.
const (
	RouteIndex         = "/"
	RouteTestRetrieval = "/test-retrieval"
	RouteGet           = "/get"
	RouteHealth        = "/healthz"
	RouteMetrics       = "/metrics"
)

//go:embed templates/*.html
var templateFS embed.FS

// Backend answers questions. *app.App implements it.
type Backend interface {
	Retrieve(ctx context.Context, query string) ([]rag.Document, error)
	Ask(ctx context.Context, question string) (*chain.Response, error)
}

// Config configures a Server.
type Config struct {
	Addr    string
	Backend Backend
	// Metrics is optional; /metrics is not mounted without it.
	Metrics *metrics.Metrics
	Logger  log.Logger
	// ReadHeaderTimeout defaults to 10s.
	ReadHeaderTimeout time.Duration
}

// Server is the HTTP front end.
type Server struct {
	backend   Backend
	metrics   *metrics.Metrics
	logger    log.Logger
	templates *template.Template
	router    *mux.Router
	http      *http.Server
}

// New builds the router and parses the embedded templates.
func New(cfg Config) (*Server, error) {
	if cfg.Backend == nil {
		return nil, errors.New("server: backend is required")
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = 10 * time.Second
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		backend:   cfg.Backend,
		metrics:   cfg.Metrics,
		logger:    log.OrDefault(cfg.Logger),
		templates: tmpl,
	}
	s.router = s.routes()
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
	return s, nil
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	middlewares := s.middlewares()
	for _, mw := range middlewares {
		r.Use(mw)
	}
	if s.metrics != nil {
		r.Handle(RouteMetrics, s.metrics.Handler()).Methods(http.MethodGet)
	}

	r.HandleFunc(RouteIndex, s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc(RouteTestRetrieval, s.handleTestRetrieval).Methods(http.MethodGet)
	r.HandleFunc(RouteGet, s.handleGet).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc(RouteHealth, s.handleHealth).Methods(http.MethodGet)

	// mux skips Use middleware when no route matches.
	r.NotFoundHandler = wrap(http.HandlerFunc(http.NotFound), middlewares)
	r.MethodNotAllowedHandler = wrap(http.HandlerFunc(methodNotAllowed), middlewares)
	return r
}

// middlewares lists the request middleware, outermost first. recoverer is
// innermost so recovered panics are still logged and counted as 500s.
func (s *Server) middlewares() []mux.MiddlewareFunc {
	mws := []mux.MiddlewareFunc{s.requestID, s.accessLog}
	if s.metrics != nil {
		mws = append(mws, s.instrument)
	}
	return append(mws, s.recoverer)
}

func wrap(h http.Handler, mws []mux.MiddlewareFunc) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.http.Addr
}

// ListenAndServe blocks until the server stops. It returns nil after Shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.Info("listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
