package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config interface {
	EnvConfig
	CorsConfig
	OAuthConfig
	SessionConfig
	SecurityConfig
}

type mainConfig struct {
	EnvVars
	Cors
	OAuth
	Session
	Security
}

// Load reads the configuration from the environment once. The returned value is immutable;
// components receive it at construction and never consult the environment again.
func Load() (Config, error) {
	var c mainConfig
	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("[config Load] parse env: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("[config Load] %w", err)
	}
	return c, nil
}

func (c mainConfig) validate() error {
	if err := c.OAuth.validate(); err != nil {
		return err
	}
	if err := c.Session.validate(); err != nil {
		return err
	}
	return c.Security.validate()
}
