// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/tomtom215/gatherly/internal/logging"
	"github.com/tomtom215/gatherly/internal/provider"
	"github.com/tomtom215/gatherly/internal/recommend"
	"github.com/tomtom215/gatherly/internal/session"
	"github.com/tomtom215/gatherly/internal/store"
)

// Config holds all application configuration.
//
// Sections that belong to a single component reuse that component's own
// Config type so there is one definition of each knob and its koanf key.
//
// Example:
//
//	cfg, err := config.LoadWithKoanf()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	db, err := store.Open(cfg.Store, logging.Logger())
type Config struct {
	Server    ServerConfig           `koanf:"server"`
	Store     store.Config           `koanf:"store"`
	Recommend RecommendConfig        `koanf:"recommend"`
	Breaker   provider.BreakerConfig `koanf:"breaker"`
	Security  SecurityConfig         `koanf:"security"`
	Session   session.Config         `koanf:"session"`
	Logging   LoggingConfig          `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int    `koanf:"port"`
	Host string `koanf:"host"`

	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`

	// RequestTimeout bounds the work a single handler may do.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// ShutdownTimeout is how long in-flight requests get on shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// RecommendConfig holds engine settings plus the ratings cache placed in
// front of the store.
type RecommendConfig struct {
	TopN            int           `koanf:"top_n"`
	Workers         int           `koanf:"workers"`
	DefaultRadiusKm float64       `koanf:"default_radius_km"`
	MaxRadiusKm     float64       `koanf:"max_radius_km"`
	Timeout         time.Duration `koanf:"timeout"`

	// RatingsCacheTTL is how long a place's rating list is served from
	// memory. Rating writes invalidate the entry immediately.
	RatingsCacheTTL time.Duration `koanf:"ratings_cache_ttl"`

	// RatingsCacheSize is the number of places whose ratings are cached.
	RatingsCacheSize int `koanf:"ratings_cache_size"`
}

// Engine returns the recommend.Config for these settings.
func (r RecommendConfig) Engine() *recommend.Config {
	return &recommend.Config{
		TopN:            r.TopN,
		Workers:         r.Workers,
		DefaultRadiusKm: r.DefaultRadiusKm,
		MaxRadiusKm:     r.MaxRadiusKm,
		Timeout:         r.Timeout,
	}
}

// SecurityConfig holds request admission settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// BallotRateLimitReqs applies per IP to ballot submissions within
	// RateLimitWindow.
	BallotRateLimitReqs int `koanf:"ballot_rate_limit_reqs"`
}

// LoggingConfig holds logging settings.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Logger converts the section to a logging.Config.
func (l LoggingConfig) Logger() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = l.Level
	cfg.Format = l.Format
	cfg.Caller = l.Caller
	return cfg
}

// String renders a one-line summary safe to log at startup.
func (c *Config) String() string {
	storage := c.Store.Path
	if c.Store.InMemory {
		storage = "memory"
	}
	return fmt.Sprintf("addr=%s store=%s top_n=%d workers=%d radius=%.0f/%.0fkm rate_limit=%t",
		c.Server.Addr(), storage, c.Recommend.TopN, c.Recommend.Workers,
		c.Recommend.DefaultRadiusKm, c.Recommend.MaxRadiusKm, !c.Security.RateLimitDisabled)
}
