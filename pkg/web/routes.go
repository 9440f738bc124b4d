package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/geleit/geleit/pkg/api"
	"github.com/geleit/geleit/pkg/auth"
	"github.com/geleit/geleit/pkg/auth/bearer"
	"github.com/geleit/geleit/pkg/password"
	"github.com/geleit/geleit/pkg/storage"
	"github.com/geleit/geleit/pkg/token"
	"github.com/geleit/geleit/pkg/transport"
)

// Config wires the web surface's collaborators.
type Config struct {
	Users   storage.UserStore
	Hasher  *password.Hasher
	Signer  *token.Signer
	Limiter auth.AttemptLimiter

	// Bearer enables service-to-service authentication when non-nil.
	Bearer *bearer.Validator

	// SecureCookies marks session cookies HTTPS-only.
	SecureCookies bool

	// MaxBodySize caps request bodies. Default: 1 MB.
	MaxBodySize int64

	Validation api.ValidationConfig

	// Metrics exposes the Prometheus endpoint at MetricsPath.
	Metrics     bool
	MetricsPath string
}

// defaults fills in zero-value fields.
func (c *Config) defaults() {
	if c.MaxBodySize == 0 {
		c.MaxBodySize = 1 << 20
	}
	if c.Validation == (api.ValidationConfig{}) {
		c.Validation = api.DefaultValidationConfig()
	}
	if c.Limiter == nil {
		c.Limiter = auth.NopLimiter{}
	}
	if c.MetricsPath == "" {
		c.MetricsPath = "/metrics"
	}
}

// Server holds the handlers of the HTTP surface.
type Server struct {
	users       storage.UserStore
	hasher      *password.Hasher
	signer      *token.Signer
	limiter     auth.AttemptLimiter
	resolver    *auth.Resolver
	bearer      *bearer.Validator
	cookies     auth.CookieCodec
	validation  api.ValidationConfig
	maxBodySize int64
	metrics     bool
	metricsPath string
}

// New creates the web server around its collaborators.
func New(cfg Config) *Server {
	cfg.defaults()
	cookies := auth.CookieCodec{Secure: cfg.SecureCookies}
	return &Server{
		users:       cfg.Users,
		hasher:      cfg.Hasher,
		signer:      cfg.Signer,
		limiter:     cfg.Limiter,
		resolver:    auth.NewResolver(cfg.Users, cfg.Signer, cookies),
		bearer:      cfg.Bearer,
		cookies:     cookies,
		validation:  cfg.Validation,
		maxBodySize: cfg.MaxBodySize,
		metrics:     cfg.Metrics,
		metricsPath: cfg.MetricsPath,
	}
}

// Handler assembles the route tree. The /api subtree runs the session
// resolution chain; /healthz and the metrics endpoint stay outside it.
func (s *Server) Handler() http.Handler {
	apiRoutes := http.NewServeMux()
	apiRoutes.HandleFunc("POST /api/login", s.handleLogin)
	apiRoutes.HandleFunc("POST /api/logoff", s.handleLogoff)
	apiRoutes.Handle("GET /api/me", auth.RequireContext(http.HandlerFunc(s.handleMe)))

	var apiHandler http.Handler = apiRoutes
	if s.bearer != nil {
		apiHandler = bearer.Middleware(s.bearer)(apiHandler)
	}
	apiHandler = auth.ResolveContext(s.resolver)(apiHandler)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.metrics {
		mux.Handle("GET "+s.metricsPath, promhttp.Handler())
	}
	mux.Handle("/api/", apiHandler)
	return mux
}

// handleHealth reports whether the identity store is reachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.users.HealthCheck(r.Context()); err != nil {
		slog.Warn("health check failed", "error", err)
		respondJSON(w, http.StatusServiceUnavailable, api.HealthResponse{Status: "unavailable"})
		return
	}
	respondJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

// decodeJSON decodes a request body into v, enforcing the configured
// size limit and JSON content type. When it returns false the error
// response has already been written.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct != "" && ct != "application/json" {
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("content_type", "Content-Type must be application/json"),
			http.StatusUnsupportedMediaType,
		)
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodySize)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			transport.WriteErrorResponse(w,
				api.NewInvalidRequestError("body", fmt.Sprintf("request body too large (max %d bytes)", s.maxBodySize)),
				http.StatusRequestEntityTooLarge,
			)
			return false
		}
		transport.WriteAPIError(w, api.NewInvalidRequestError("body", "invalid JSON: "+err.Error()))
		return false
	}
	return true
}

// respondJSON writes v with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
