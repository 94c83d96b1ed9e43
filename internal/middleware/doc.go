// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

/*
Package middleware provides HTTP middleware shared by the API router.

Key Components:

  - RequestID: request and correlation IDs in context, logs and headers
  - AccessLog: one structured log line per request, warning on slow ones
  - PrometheusMetrics: request count, latency and in-flight gauge labelled
    by chi route pattern

All three use the func(http.Handler) http.Handler shape and are installed
with chi's Use:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(time.Second))
	r.Use(middleware.PrometheusMetrics)

RequestID must run first so the other two see the IDs. Response writers are
wrapped with chi's WrapResponseWriter, which keeps http.Hijacker available
for the websocket upgrade on the live group endpoint.
*/
package middleware
