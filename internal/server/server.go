package server

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	goahttp "goa.design/goa/v3/http"
	httpmdlwr "goa.design/goa/v3/http/middleware"
	goamiddleware "goa.design/goa/v3/middleware"

	"portfolio/internal/config"
	"portfolio/internal/domain"
	"portfolio/internal/metrics"
	"portfolio/internal/services"
	apperrors "portfolio/pkg/errors"
)

// ContactService is the contact behaviour the HTTP layer needs.
type ContactService interface {
	Submit(ctx context.Context, p *domain.Submission) (*services.SubmitResult, error)
	List(ctx context.Context, limit int) ([]domain.Contact, error)
}

// HealthService reports process health.
type HealthService interface {
	Check(ctx context.Context) (*services.HealthResult, error)
}

// Server owns the HTTP surface: the API routes, /metrics and static files.
type Server struct {
	cfg     *config.Config
	contact ContactService
	health  HealthService
	log     zerolog.Logger

	mux    goahttp.Muxer
	routes map[string]string
	static staticFiles
}

// New creates the server and mounts the API routes.
func New(cfg *config.Config, contact ContactService, health HealthService, log zerolog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		contact: contact,
		health:  health,
		log:     log,
		mux:     goahttp.NewMuxer(),
		routes:  make(map[string]string),
		static:  staticFiles{root: cfg.App.StaticDir},
	}

	s.handle(http.MethodGet, "/api/health", "health", s.handleHealth)
	s.handle(http.MethodHead, "/api/health", "health", s.handleHealth)
	s.handle(http.MethodPost, "/api/contact", "contact_submit", s.handleSubmit)
	s.handle(http.MethodGet, "/api/contacts", "contact_list", s.handleList)
	s.handle(http.MethodHead, "/api/contacts", "contact_list", s.handleList)
	s.handle(http.MethodGet, "/metrics", "metrics", promhttp.Handler().ServeHTTP)

	return s
}

func (s *Server) handle(method, pattern, label string, h http.HandlerFunc) {
	s.routes[routeKey(method, pattern)] = label
	s.mux.Handle(method, pattern, h)
}

// Handler returns the root handler with the middleware chain applied.
// Outermost first: security headers, CORS, request id, request context,
// request logging, metrics, panic recovery, dispatch.
func (s *Server) Handler() http.Handler {
	var h http.Handler = http.HandlerFunc(s.dispatch)
	h = recoverer(h, s.log)
	h = metrics.PrometheusMiddleware(h, s.routeLabel)
	h = requestLogging(h, s.log)
	h = httpmdlwr.PopulateRequestContext()(h)
	h = httpmdlwr.RequestID(goamiddleware.UseXRequestIDHeaderOption(true))(h)
	h = setupCORS(h, s.cfg.CORS, s.cfg.App.Debug)
	h = setupSecurityHeaders(h, s.cfg.App.Debug)
	return h
}

// dispatch sends known routes to the goa muxer, then tries static files,
// then answers with the JSON 404.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.routes[routeKey(r.Method, r.URL.Path)]; ok {
		s.mux.ServeHTTP(w, r)
		return
	}
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		if s.static.serve(w, r) {
			return
		}
	}
	s.writeError(w, r, apperrors.New(apperrors.ErrCodeNotFound, services.MsgRouteNotFound))
}

// routeLabel keeps the metrics route label bounded.
func (s *Server) routeLabel(r *http.Request) string {
	if label, ok := s.routes[routeKey(r.Method, r.URL.Path)]; ok {
		return label
	}
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return "static"
	}
	return "unmatched"
}

func routeKey(method, path string) string {
	return method + " " + path
}
