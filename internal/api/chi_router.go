// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/gatherly/internal/middleware"
)

// slowRequestThreshold is where access logs escalate to warn.
const slowRequestThreshold = 2 * time.Second

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil middleware factory uses the defaults.
func NewRouter(handler *Handler, chiMiddleware *ChiMiddleware) *Router {
	if chiMiddleware == nil {
		chiMiddleware = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		chiMiddleware: chiMiddleware,
	}
}

// SetupChi configures all HTTP routes using Chi router.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)                       // X-Request-ID / X-Correlation-ID plus logging context
	r.Use(chimiddleware.RealIP)                       // Extract real IP from X-Forwarded-For
	r.Use(chimiddleware.Recoverer)                    // Recover from panics
	r.Use(middleware.AccessLog(slowRequestThreshold)) // One structured line per request
	r.Use(middleware.PrometheusMetrics)               // Labelled by route pattern
	r.Use(router.chiMiddleware.CORS())                // CORS must be global to handle OPTIONS preflight

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	// ========================
	// Health and Metrics
	// ========================
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})
	r.With(router.chiMiddleware.RateLimitHealth()).Handle("/metrics", promhttp.Handler())

	// ========================
	// Core API Endpoints
	// ========================
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Put("/", router.handler.PutUser)
			r.Get("/", router.handler.GetUser)
			r.Post("/quiz", router.handler.SubmitQuiz)
		})

		r.Route("/places", func(r chi.Router) {
			r.Get("/near", router.handler.PlacesNear)
			r.Route("/{placeID}", func(r chi.Router) {
				r.Put("/", router.handler.PutPlace)
				r.Get("/", router.handler.GetPlace)
				r.Get("/stats", router.handler.PlaceStats)
				r.Post("/ratings", router.handler.CreateRating)
				r.Get("/ratings", router.handler.ListRatings)
			})
		})

		r.Route("/ratings/{ratingID}", func(r chi.Router) {
			r.Put("/", router.handler.UpdateRating)
			r.Delete("/", router.handler.DeleteRating)
		})

		r.Route("/groups", func(r chi.Router) {
			r.Post("/", router.handler.CreateGroup)
			r.Route("/{groupID}", func(r chi.Router) {
				r.Get("/", router.handler.GetGroup)
				r.Post("/members", router.handler.AddMember)
				r.Delete("/members/{userID}", router.handler.RemoveMember)
				r.Put("/search", router.handler.UpdateSearch)
				r.Post("/recommendations", router.handler.Recommend)
				r.With(router.chiMiddleware.RateLimitBallots()).Put("/ballots/{userID}", router.handler.CastBallot)
				r.Get("/results", router.handler.Results)
				r.Post("/select", router.handler.SelectWinner)
				r.Post("/archive", router.handler.ArchiveGroup)
				r.Post("/disband", router.handler.DisbandGroup)
				r.With(router.chiMiddleware.RateLimitWebSocket()).Get("/live", router.handler.GroupLive)
			})
		})

		r.Route("/sessions/{channelID}", func(r chi.Router) {
			r.Put("/", router.handler.PutSession)
			r.Get("/", router.handler.GetSession)
			r.Delete("/", router.handler.DeleteSession)
		})
	})

	return r
}
