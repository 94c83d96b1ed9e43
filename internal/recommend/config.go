// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package recommend

import (
	"fmt"
	"time"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// TopN is the maximum number of places returned per run.
	TopN int `json:"top_n" koanf:"top_n"`

	// Workers bounds how many places are scored concurrently.
	Workers int `json:"workers" koanf:"workers"`

	// DefaultRadiusKm is used when neither the request nor the group sets a radius.
	DefaultRadiusKm float64 `json:"default_radius_km" koanf:"default_radius_km"`

	// MaxRadiusKm caps any requested search radius.
	MaxRadiusKm float64 `json:"max_radius_km" koanf:"max_radius_km"`

	// Timeout bounds a whole recommendation run. Zero disables it.
	Timeout time.Duration `json:"timeout" koanf:"timeout"`
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() *Config {
	return &Config{
		TopN:            10,
		Workers:         8,
		DefaultRadiusKm: 10,
		MaxRadiusKm:     50,
		Timeout:         10 * time.Second,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.TopN < 1 {
		return fmt.Errorf("top_n must be positive, got %d", c.TopN)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.DefaultRadiusKm <= 0 {
		return fmt.Errorf("default_radius_km must be positive, got %f", c.DefaultRadiusKm)
	}
	if c.MaxRadiusKm < c.DefaultRadiusKm {
		return fmt.Errorf("max_radius_km (%f) must be >= default_radius_km (%f)", c.MaxRadiusKm, c.DefaultRadiusKm)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative, got %v", c.Timeout)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// clampRadius resolves the radius for a run: non-positive values use the
// default and anything above MaxRadiusKm is capped.
func (c *Config) clampRadius(radiusKm float64) float64 {
	if radiusKm <= 0 {
		return c.DefaultRadiusKm
	}
	if radiusKm > c.MaxRadiusKm {
		return c.MaxRadiusKm
	}
	return radiusKm
}
