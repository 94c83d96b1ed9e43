// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

// Package models defines the domain types shared across Gatherly: users,
// places, ratings, groups, recommendations and the API response envelope.
//
// Types carry their own invariants (score ranges, group status transitions,
// membership limits) so the store and services enforce them the same way.
package models
