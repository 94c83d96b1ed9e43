// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/gatherly/internal/groups"
	"github.com/tomtom215/gatherly/internal/models"
	"github.com/tomtom215/gatherly/internal/personality"
	"github.com/tomtom215/gatherly/internal/provider"
	"github.com/tomtom215/gatherly/internal/recommend"
	"github.com/tomtom215/gatherly/internal/session"
	"github.com/tomtom215/gatherly/internal/store"
	"github.com/tomtom215/gatherly/internal/voting"
)

// Error codes for API responses
const (
	ErrCodeValidation  = "VALIDATION_ERROR"
	ErrCodeNotFound    = "NOT_FOUND"
	ErrCodeConflict    = "CONFLICT"
	ErrCodeForbidden   = "FORBIDDEN"
	ErrCodeUpstream    = "UPSTREAM_ERROR"
	ErrCodeTimeout     = "TIMEOUT"
	ErrCodeRateLimited = "RATE_LIMITED"
	ErrCodeUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeInternal    = "INTERNAL_ERROR"
	ErrCodeNotReady    = "NOT_READY"
)

// errorMapping pairs a sentinel with its HTTP status and code. Entries are
// checked in order with errors.Is.
type errorMapping struct {
	target error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{store.ErrNotFound, http.StatusNotFound, ErrCodeNotFound},
	{session.ErrNotFound, http.StatusNotFound, ErrCodeNotFound},

	{store.ErrConflict, http.StatusConflict, ErrCodeConflict},
	{groups.ErrGroupNotActive, http.StatusConflict, ErrCodeConflict},
	{groups.ErrAlreadyMember, http.StatusConflict, ErrCodeConflict},
	{groups.ErrGroupFull, http.StatusConflict, ErrCodeConflict},
	{groups.ErrNoVotes, http.StatusConflict, ErrCodeConflict},
	{models.ErrInvalidTransition, http.StatusConflict, ErrCodeConflict},
	{recommend.ErrEmptyGroup, http.StatusConflict, ErrCodeConflict},

	{groups.ErrNotMember, http.StatusForbidden, ErrCodeForbidden},
	{groups.ErrNotRecommended, http.StatusUnprocessableEntity, ErrCodeValidation},

	{store.ErrInvalidID, http.StatusBadRequest, ErrCodeValidation},
	{models.ErrInvalidRating, http.StatusBadRequest, ErrCodeValidation},
	{models.ErrInvalidLocation, http.StatusBadRequest, ErrCodeValidation},
	{groups.ErrInvalidGroup, http.StatusBadRequest, ErrCodeValidation},
	{voting.ErrInvalidBallot, http.StatusBadRequest, ErrCodeValidation},
	{session.ErrInvalidSession, http.StatusBadRequest, ErrCodeValidation},
	{personality.ErrNoAnswers, http.StatusBadRequest, ErrCodeValidation},
	{personality.ErrTooManyAnswers, http.StatusBadRequest, ErrCodeValidation},
	{personality.ErrInvalidAnswer, http.StatusBadRequest, ErrCodeValidation},

	{provider.ErrUnavailable, http.StatusServiceUnavailable, ErrCodeUpstream},
	{recommend.ErrNoDataProvider, http.StatusServiceUnavailable, ErrCodeUnavailable},
	{store.ErrClosed, http.StatusServiceUnavailable, ErrCodeUnavailable},

	{context.DeadlineExceeded, http.StatusGatewayTimeout, ErrCodeTimeout},
}

// classifyError maps err to a status and code. Unknown errors get fallback.
func classifyError(err error, fallbackStatus int, fallbackCode string) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return fallbackStatus, fallbackCode
}

// respondServiceError writes the response for an error returned by the store
// or a service. Client errors echo the error text; server errors hide it.
func respondServiceError(w http.ResponseWriter, err error) {
	respondClassified(w, err, http.StatusInternalServerError, ErrCodeInternal)
}

// respondUpstreamError is respondServiceError for operations whose unknown
// failures come from place or rating lookups.
func respondUpstreamError(w http.ResponseWriter, err error) {
	respondClassified(w, err, http.StatusBadGateway, ErrCodeUpstream)
}

func respondClassified(w http.ResponseWriter, err error, fallbackStatus int, fallbackCode string) {
	status, code := classifyError(err, fallbackStatus, fallbackCode)
	if status >= http.StatusInternalServerError {
		respondError(w, status, code, http.StatusText(status), err)
		return
	}
	respondError(w, status, code, err.Error(), nil)
}
