// Package config reads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures environment driven configuration values for the service.
type Config struct {
	HTTPPort int
	// DatabaseURL selects the durable Postgres store; empty falls back to
	// the non-durable in-process store.
	DatabaseURL   string
	AdminPassword string
	SessionTTL    time.Duration
}

// Load parses configuration from the current process environment. A .env
// file in the working directory, if present, is loaded first without
// overriding variables already set.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPPort:   3000,
		SessionTTL: 24 * time.Hour,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	if password := strings.TrimSpace(os.Getenv("ADMIN_PASSWORD")); password == "" {
		missing = append(missing, "ADMIN_PASSWORD")
	} else {
		cfg.AdminPassword = password
	}

	if ttlValue := strings.TrimSpace(os.Getenv("SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
