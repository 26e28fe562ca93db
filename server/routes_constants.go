package server

// Route path constants. Auth routes are relative to the configured mount path.
const (
	// Auth Routes
	RouteAuthorize = "/{$}"
	RouteHandler   = "/handler"
	RouteVerify    = "/verify"
	RouteGrants    = "/grants"
	RouteUser      = "/user"

	// Operational Routes
	RouteHealth = "/healthz"
)
