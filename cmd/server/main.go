package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-github-auth-gateway/internal/config"
	"github.com/jrsteele09/go-github-auth-gateway/provider"
	"github.com/jrsteele09/go-github-auth-gateway/server"
	"github.com/jrsteele09/go-github-auth-gateway/sessions"
	"github.com/jrsteele09/go-github-auth-gateway/sessions/redisrepo"
	fakesessionrepo "github.com/jrsteele09/go-github-auth-gateway/sessions/repofakes"
)

func main() {
	c, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	setupLogging(c)

	if err := run(c); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func setupLogging(c config.Config) {
	level, err := zerolog.ParseLevel(strings.ToLower(c.GetLogLevel()))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if c.IsDev() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func run(c config.Config) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("stack", string(debug.Stack())).Msgf("Recovered from panic: %v", r)
			returnError = errors.New("panic recovered")
		}
	}()

	displayAppname(c.GetAppName())

	sessionRepo, closeRepo, err := newSessionRepo(c)
	if err != nil {
		return err
	}
	defer closeRepo()

	idp, err := provider.NewFromConfig(c)
	if err != nil {
		return fmt.Errorf("provider.NewFromConfig: %w", err)
	}

	handler, err := server.New(c, sessionRepo, idp)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(httpServer)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

// newSessionRepo builds the configured session store and its close function.
func newSessionRepo(c config.Config) (sessions.Repo, func(), error) {
	switch c.GetSessionStore() {
	case config.SessionStoreRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		repo, err := redisrepo.New(ctx, redisrepo.Config{
			Addr:      c.GetRedisAddr(),
			Password:  c.GetRedisPassword(),
			DB:        c.GetRedisDB(),
			KeyPrefix: c.GetRedisKeyPrefix(),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("redisrepo.New: %w", err)
		}
		log.Info().Str("addr", c.GetRedisAddr()).Msg("Using Redis session store")
		return repo, func() {
			if err := repo.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close Redis session store")
			}
		}, nil
	default:
		log.Warn().Msg("Using in-memory session store; sessions are lost on restart and not shared between instances")
		return fakesessionrepo.NewFakeSessionRepo(), func() {}, nil
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
