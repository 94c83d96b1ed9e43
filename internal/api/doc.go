// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

/*
Package api provides the HTTP interface of Gatherly.

Every endpoint answers with the models.APIResponse envelope:

	{"status": "success", "data": {...}, "metadata": {"timestamp": "...", "query_time_ms": 3}}
	{"status": "error", "data": null, "error": {"code": "NOT_FOUND", "message": "..."}, "metadata": {...}}

# Routes

Health and metrics:

	GET    /api/v1/health/live
	GET    /api/v1/health/ready
	GET    /metrics

Users and the personality quiz:

	PUT    /api/v1/users/{userID}
	GET    /api/v1/users/{userID}
	POST   /api/v1/users/{userID}/quiz

Places and ratings:

	PUT    /api/v1/places/{placeID}
	GET    /api/v1/places/{placeID}
	GET    /api/v1/places/{placeID}/stats
	GET    /api/v1/places/near?lat=&lng=&radius_km=
	POST   /api/v1/places/{placeID}/ratings
	GET    /api/v1/places/{placeID}/ratings
	PUT    /api/v1/ratings/{ratingID}
	DELETE /api/v1/ratings/{ratingID}

Groups:

	POST   /api/v1/groups
	GET    /api/v1/groups/{groupID}
	POST   /api/v1/groups/{groupID}/members
	DELETE /api/v1/groups/{groupID}/members/{userID}
	PUT    /api/v1/groups/{groupID}/search
	POST   /api/v1/groups/{groupID}/recommendations?radius_km=
	PUT    /api/v1/groups/{groupID}/ballots/{userID}
	GET    /api/v1/groups/{groupID}/results
	POST   /api/v1/groups/{groupID}/select
	POST   /api/v1/groups/{groupID}/archive
	POST   /api/v1/groups/{groupID}/disband
	GET    /api/v1/groups/{groupID}/live   (websocket)

Planning sessions:

	PUT    /api/v1/sessions/{channelID}
	GET    /api/v1/sessions/{channelID}
	DELETE /api/v1/sessions/{channelID}

# Errors

Store and service sentinels map to statuses in errors.go: missing resources
are 404 NOT_FOUND, operations illegal in the current group state are 409
CONFLICT, malformed input is 400 VALIDATION_ERROR, a failed or open-circuit
place lookup is 502/503 UPSTREAM_ERROR and an exceeded deadline is 504
TIMEOUT.

# Rate Limiting

All /api/v1 routes share the per-IP limit from SecurityConfig. Ballot writes
have a stricter per-IP-and-user limit, and health, metrics and websocket
upgrades have their own budgets.
*/
package api
