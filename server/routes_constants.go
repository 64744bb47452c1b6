package server

// Route path constants
const (
	RouteAuthLogin = "/auth/login"
	RouteAPILinks  = "/api/links"
	RouteLinks     = "/links/"
	RouteHealth    = "/health"
	RouteMetrics   = "/metrics"
)
