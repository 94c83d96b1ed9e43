// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

/*
Package config provides centralized configuration management for Gatherly.

Configuration is assembled by LoadWithKoanf from three layers, later layers
overriding earlier ones:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: CONFIG_PATH, else config.yaml, config.yml,
    /etc/gatherly/config.yaml or /etc/gatherly/config.yml
 3. Environment variables listed in envTransformFunc

# Environment Variables

HTTP server:
  - HTTP_HOST: Bind address (default: 0.0.0.0)
  - HTTP_PORT: Listen port (default: 8080)
  - HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_IDLE_TIMEOUT
  - HTTP_REQUEST_TIMEOUT: Per-handler deadline (default: 15s)
  - HTTP_SHUTDOWN_TIMEOUT: Graceful shutdown budget (default: 10s)

Store:
  - STORE_PATH: Badger directory (default: /data/gatherly)
  - STORE_IN_MEMORY: Keep everything in memory (default: false)
  - STORE_SYNC_WRITES, STORE_GC_INTERVAL, STORE_GC_RATIO, STORE_GRID_CELL_KM

Recommendations:
  - RECOMMEND_TOP_N (default: 10), RECOMMEND_WORKERS (default: 8)
  - RECOMMEND_DEFAULT_RADIUS_KM (default: 10), RECOMMEND_MAX_RADIUS_KM (default: 50)
  - RECOMMEND_TIMEOUT, RATINGS_CACHE_TTL, RATINGS_CACHE_SIZE

Circuit breaker:
  - BREAKER_MAX_REQUESTS, BREAKER_INTERVAL, BREAKER_TIMEOUT,
    BREAKER_MIN_REQUESTS, BREAKER_FAILURE_RATIO

Security:
  - CORS_ORIGINS: Comma-separated allowed origins (default: *)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
  - BALLOT_RATE_LIMIT_REQUESTS: Stricter per-IP limit for ballot writes

Sessions:
  - SESSION_TTL, SESSION_CAPACITY, SESSION_SWEEP_INTERVAL

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Thread Safety

Config is immutable after loading and safe for concurrent reads.
*/
package config
