// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Quickly Rank API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, limits, sessions)

# Endpoints

Health:

	GET /health

Poll management (admin, requires X-Admin-Key):

	POST   /polls              - Create poll
	GET    /polls/{id}/admin   - Get poll details
	POST   /polls/{id}/options - Add option
	POST   /polls/{id}/publish - Open for voting
	POST   /polls/{id}/close   - Stop new sessions
	DELETE /polls/{id}         - Delete poll

Forms (public, uses share slug):

	GET /polls/{slug}         - Poll info and options
	GET /polls/{slug}/form    - Grid or list layout
	GET /polls/{slug}/preview - Compact preview data
	GET /vote/{slug}          - HTML vote page

Sessions:

	POST   /polls/{slug}/sessions - Open session
	GET    /sessions/{id}         - Snapshot
	POST   /sessions/{id}/select  - Click a cell
	POST   /sessions/{id}/rebuild - Rebuild from the grid
	DELETE /sessions/{id}         - End session
	GET    /sessions/{id}/ws      - WebSocket stream

Server admin (requires X-Server-Admin-Token):

	GET    /admin/polls        - List polls (HTML or JSON)
	DELETE /admin/polls/{id}   - Delete any poll
	POST   /admin/purge        - Delete every poll
	POST   /admin/reset-limits - Clear rate limits

Device management:

	POST /devices/register - Register device
	GET  /devices/me       - Get device info
	GET  /devices/my-polls - List device's polls
*/
package router
