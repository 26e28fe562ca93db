package server

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-github-auth-gateway/auth"
	"github.com/jrsteele09/go-github-auth-gateway/internal/config"
	"github.com/jrsteele09/go-github-auth-gateway/sessions"
	"github.com/jrsteele09/go-github-auth-gateway/token"
)

type Server struct {
	mux         *http.ServeMux
	routes      []string
	mountPath   string
	config      config.Config
	auth        *auth.AuthorizationService
	sessions    sessions.Repo
	cookies     *token.SessionCookieCodec
	limiter     *RateLimiter
	handlerView *template.Template
	nowTime     func() time.Time
}

type Option func(*Server)

// WithNowTime sets the clock shared by the session, cookie and rate limit logic (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Server) {
		s.nowTime = nowFunc
	}
}

// WithHandlerView replaces the page rendered after a successful callback
func WithHandlerView(view *template.Template) Option {
	return func(s *Server) {
		s.handlerView = view
	}
}

// New wires the authorization service and HTTP routes for the given session store and identity provider.
func New(config config.Config, sessionRepo sessions.Repo, idp auth.IdentityProvider, options ...Option) (*Server, error) {
	s := &Server{
		mux:       http.NewServeMux(),
		mountPath: strings.TrimSuffix(config.GetMountPath(), "/"),
		config:    config,
		sessions:  sessionRepo,
		nowTime:   time.Now,
	}
	for _, opt := range options {
		opt(s)
	}

	authService, err := auth.NewAuthorizationService(auth.Settings{
		Scope:        config.GetScope(),
		StateLength:  config.GetStateLength(),
		SessionTTL:   config.GetSessionTTL(),
		ConsumeState: config.GetConsumeState(),
	}, sessionRepo, idp, auth.WithNowTime(s.nowTime))
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create authorization service: %w", err)
	}
	s.auth = authService

	cookies, err := token.NewSessionCookieCodec(config.GetSessionSecret(), token.WithNowTime(s.nowTime))
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create session cookie codec: %w", err)
	}
	s.cookies = cookies

	if s.handlerView == nil {
		handlerView, err := ParseTemplate(handlerTemplate)
		if err != nil {
			return nil, fmt.Errorf("[Server New] failed to parse %s: %w", handlerTemplate, err)
		}
		s.handlerView = handlerView
	}

	if config.GetEnableRateLimiting() {
		s.limiter = NewRateLimiter(config.GetRateLimit(), config.GetRateLimitBurst(), WithRateLimiterClock(s.nowTime))
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
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

// authRoute prefixes path with the mount path.
func (s *Server) authRoute(method, path string) string {
	return method + " " + s.mountPath + path
}

func (s *Server) logRoutes() {
	if !s.config.IsDev() {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func coloredMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", coloredMethod(method), path)
}
