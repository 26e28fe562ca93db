package server

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

func (s *Server) initRoutes() {
	s.RegisterRouteHandler(s.authRoute("GET", RouteAuthorize), ChainMiddleware(s.AuthorizeHandler(), s.HTMLMiddleWare()...))
	if s.mountPath != "" {
		// The mount itself, without a trailing slash
		s.RegisterRouteHandler("GET "+s.mountPath, ChainMiddleware(s.AuthorizeHandler(), s.HTMLMiddleWare()...))
	}
	s.RegisterRouteHandler(s.authRoute("GET", RouteHandler), ChainMiddleware(s.CallbackHandler(), s.HTMLMiddleWare()...))

	s.RegisterRouteHandler(s.authRoute("GET", RouteVerify), ChainMiddleware(s.VerifyHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler(s.authRoute("DELETE", RouteGrants), ChainMiddleware(s.RevokeGrantsHandler(), s.APIMiddleware()...))
	// CORS preflight for every auth route
	s.RegisterRouteHandler("OPTIONS "+s.mountPath+"/", ChainMiddleware(http.NotFound, s.APIMiddleware()...))

	// Protected routes
	s.RegisterRouteHandler(s.authRoute("GET", RouteUser), ChainMiddleware(s.UserHandler(), s.APIMiddleware(s.RequireToken())...))

	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
}

func logError(method, path, error string) {
	errorString := Red + error + ResetColor
	log.Error().Msg(fmt.Sprintf("[%-19s] %s %s", coloredMethod(method), path, errorString))
}
