// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

// Package services adapts Gatherly components to suture.Service.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/gatherly/internal/metrics"
)

// Task is one run of a periodic job.
type Task func(ctx context.Context) error

// PeriodicConfig configures a PeriodicService.
type PeriodicConfig struct {
	// Name identifies the job in logs, metrics and supervisor events.
	Name string

	// Interval between runs. Defaults to one minute.
	Interval time.Duration

	// RunTimeout bounds a single run. Zero means Interval.
	RunTimeout time.Duration

	// RunOnStart runs the task once before the first tick.
	RunOnStart bool
}

// PeriodicService runs a task on a ticker. A failed run is logged and
// counted; the next tick tries again, so one bad run never restarts the
// service.
type PeriodicService struct {
	task   Task
	config PeriodicConfig
	logger zerolog.Logger
}

// NewPeriodicService creates a periodic job.
//
//nolint:gocritic // zerolog.Logger is passed by value by convention
func NewPeriodicService(cfg PeriodicConfig, task Task, logger zerolog.Logger) *PeriodicService {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = cfg.Interval
	}
	return &PeriodicService{
		task:   task,
		config: cfg,
		logger: logger.With().Str("service", cfg.Name).Logger(),
	}
}

// Serve implements suture.Service.
func (s *PeriodicService) Serve(ctx context.Context) error {
	s.logger.Debug().Dur("interval", s.config.Interval).Msg("periodic job starting")

	if s.config.RunOnStart {
		s.run(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.run(ctx)
		}
	}
}

func (s *PeriodicService) run(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	start := time.Now()
	if err := s.task(runCtx); err != nil {
		metrics.MaintenanceRuns.WithLabelValues(s.config.Name, "error").Inc()
		s.logger.Warn().Err(err).Dur("duration", time.Since(start)).Msg("periodic job failed")
		return
	}
	metrics.MaintenanceRuns.WithLabelValues(s.config.Name, "success").Inc()
	s.logger.Trace().Dur("duration", time.Since(start)).Msg("periodic job complete")
}

// String names the service in supervisor events.
func (s *PeriodicService) String() string {
	return s.config.Name
}
