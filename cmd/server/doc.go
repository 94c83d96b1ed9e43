// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

/*
Package main is the entry point for the Gatherly server.

Gatherly helps a group of friends pick somewhere to go. Members rate places,
take a short personality quiz, form a group around a search area, receive a
ranked list of nearby places scored for that particular group, and vote.

# Startup

 1. Configuration: koanf v2 layering defaults, an optional YAML file and
    environment variables
 2. Logging: zerolog, JSON or console
 3. Store: badger v4 holding users, places, ratings and groups
 4. Ratings provider: LRU cache invalidated on rating writes, behind a
    gobreaker circuit breaker
 5. Recommendation engine, group service, session store, websocket hub
 6. Supervisor tree: suture v4 running the hub, maintenance jobs and the
    HTTP server

# Configuration

	CONFIG_PATH=/etc/gatherly/config.yaml
	HTTP_PORT=8080
	STORE_PATH=/data/gatherly
	RECOMMEND_TOP_N=10
	CORS_ORIGINS=https://plan.example
	LOG_LEVEL=debug

# Signals

SIGINT and SIGTERM cancel the root context. The HTTP server drains for
server.shutdown_timeout, websocket clients are closed and the store is
flushed before exit.
*/
package main
