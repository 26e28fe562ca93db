package config

import (
	"errors"
	"strings"
)

type SecurityConfig interface {
	GetMountPath() string
	GetRateLimit() float64
	GetRateLimitBurst() int
	GetEnableRateLimiting() bool
}

type Security struct {
	MountPath      string  `env:"AUTH_MOUNT" envDefault:"/__/auth"`
	RateLimit      float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`
}

var _ SecurityConfig = Security{}

func (s Security) GetMountPath() string {
	return s.MountPath
}

func (s Security) GetRateLimit() float64 {
	return s.RateLimit
}

func (s Security) GetRateLimitBurst() int {
	return s.RateLimitBurst
}

func (s Security) GetEnableRateLimiting() bool {
	return s.RateLimit > 0
}

func (s Security) validate() error {
	if s.RateLimit < 0 || s.RateLimitBurst < 0 {
		return errors.New("rate limit settings must not be negative")
	}
	if s.RateLimit > 0 && s.RateLimitBurst == 0 {
		return errors.New("RATE_LIMIT_BURST must be positive when rate limiting is enabled")
	}
	if s.MountPath == "" || s.MountPath[0] != '/' {
		return errors.New("AUTH_MOUNT must start with '/'")
	}
	if len(s.MountPath) > 1 && strings.HasSuffix(s.MountPath, "/") {
		return errors.New("AUTH_MOUNT must not end with '/'")
	}
	return nil
}
