package server

import (
	"crypto"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-booking-auth/internal/config"
	"github.com/jrsteele09/go-booking-auth/link"
	"github.com/jrsteele09/go-booking-auth/session"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Deps holds the collaborators the server wires into its handlers
type Deps struct {
	Links    *link.Manager
	Resolver *link.Resolver
	Authn    session.Authenticator // backs POST /auth/login
	Verifier *oidc.IDTokenVerifier // authoritative check for bearer tokens
	Registry *prometheus.Registry
}

type Server struct {
	env      string
	baseURL  string
	mux      *http.ServeMux
	routes   []string
	links    *link.Manager
	resolver *link.Resolver
	authn    session.Authenticator
	verifier *oidc.IDTokenVerifier
	registry *prometheus.Registry
}

func New(cfg config.EnvConfig, deps Deps) (*Server, error) {
	if deps.Links == nil || deps.Resolver == nil {
		return nil, errors.New("[Server New] link manager and resolver are required")
	}
	if deps.Authn == nil {
		return nil, errors.New("[Server New] authenticator is required")
	}
	if deps.Verifier == nil {
		return nil, errors.New("[Server New] token verifier is required")
	}
	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}

	s := &Server{
		env:      cfg.GetEnv(),
		baseURL:  cfg.GetBaseURL(),
		mux:      http.NewServeMux(),
		links:    deps.Links,
		resolver: deps.Resolver,
		authn:    deps.Authn,
		verifier: deps.Verifier,
		registry: deps.Registry,
	}

	s.initRoutes()
	s.logRoutes()
	return s, nil
}

// NewTokenVerifier verifies RS256 session tokens from issuer against a fixed public key.
// Tokens carry no client audience, so the client id check is skipped.
func NewTokenVerifier(issuer string, publicKey crypto.PublicKey, now func() time.Time) *oidc.IDTokenVerifier {
	return oidc.NewVerifier(issuer, &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{publicKey}}, &oidc.Config{
		SkipClientIDCheck: true,
		Now:               now,
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		method, path, found := strings.Cut(route, " ")
		if !found {
			method, path = "", route
		}
		log.Info().Str("method", method).Str("path", path).Msg("route")
	}
}

type errorBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Message: message})
}
