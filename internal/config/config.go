// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Version is the release version baked into builds and surfaced by the
// health endpoint and the outbound User-Agent.
const Version = "1.4.2"

type Config struct {
	Port            string
	AppVersion      string
	LogLevel        slog.Level
	CheckTimeout    time.Duration
	HTTPTimeout     time.Duration
	DNSTimeout      time.Duration
	DNSResolvers    []string
	RegistryBaseURL string
}

// Load reads configuration from the environment. Nothing is required: every
// knob has a production default, and only a value that fails to parse is an
// error.
func Load() (*Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	level, err := parseLogLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return nil, err
	}

	checkTimeout, err := envDuration("CHECK_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	httpTimeout, err := envDuration("HTTP_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	dnsTimeout, err := envDuration("DNS_TIMEOUT", 2*time.Second)
	if err != nil {
		return nil, err
	}

	var resolvers []string
	if raw := os.Getenv("DNS_RESOLVERS"); raw != "" {
		for _, ip := range strings.Split(raw, ",") {
			ip = strings.TrimSpace(ip)
			if ip != "" {
				resolvers = append(resolvers, ip)
			}
		}
	}

	return &Config{
		Port:            port,
		AppVersion:      Version,
		LogLevel:        level,
		CheckTimeout:    checkTimeout,
		HTTPTimeout:     httpTimeout,
		DNSTimeout:      dnsTimeout,
		DNSResolvers:    resolvers,
		RegistryBaseURL: os.Getenv("RKN_BASE_URL"),
	}, nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", raw)
	}
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, raw)
	}
	return d, nil
}
