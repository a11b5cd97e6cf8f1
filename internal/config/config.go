// Package config loads server configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// HostLeavePolicy decides what happens when a host tries to leave their own
// session. The source data model gives no answer, so it is a deployment
// choice rather than a hardcoded rule.
type HostLeavePolicy string

const (
	// HostLeaveDisallow rejects the leave with a forbidden error.
	HostLeaveDisallow HostLeavePolicy = "disallow"
	// HostLeaveCancel deletes the session (attendance and comments cascade).
	HostLeaveCancel HostLeavePolicy = "cancel"
)

// Config holds all server settings, parsed from environment variables.
//
// JWT_SECRET must be a long random string, e.g.:
//
//	JWT_SECRET=$(openssl rand -hex 32)
type Config struct {
	Port            int             `env:"PORT" envDefault:"8080"`
	DBPath          string          `env:"DB_PATH" envDefault:"data/boardnomore.db"`
	JWTSecret       string          `env:"JWT_SECRET,required"`
	HostLeavePolicy HostLeavePolicy `env:"HOST_LEAVE_POLICY" envDefault:"disallow"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing environment: %w", err)
	}

	switch cfg.HostLeavePolicy {
	case HostLeaveDisallow, HostLeaveCancel:
	default:
		return Config{}, fmt.Errorf("config: invalid HOST_LEAVE_POLICY %q (want %q or %q)",
			cfg.HostLeavePolicy, HostLeaveDisallow, HostLeaveCancel)
	}

	return cfg, nil
}
