package server

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())

	// Backend login used by session.HTTPAuthenticator
	s.RegisterRouteFunc("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))

	// Authenticated link generation
	s.RegisterRouteFunc("POST "+RouteAPILinks, ChainMiddleware(s.CreateLinkHandler(), s.APIMiddleware(s.RequireAuth())...))

	// Anonymous link resolution
	s.RegisterRouteFunc("GET "+RouteLinks+"{token}", ChainMiddleware(s.ResolveLinkHandler(), s.APIMiddleware()...))

	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
}
