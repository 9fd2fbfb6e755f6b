// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Quickly Rank API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - PollHandler: Poll lifecycle (create, publish, close, delete)
  - FormHandler: Public poll info, form layout, vote page and preview
  - SessionHandler: Ballot sessions over JSON and WebSocket
  - AdminHandler: Server-wide listing, purge and rate limit reset
  - DeviceHandler: Device registration and poll history

Handlers are created via constructor functions:

	pollHandler := handlers.NewPollHandler(db, cfg, limits, sessions)

# Poll Lifecycle

Polls progress through three states: draft → open → closed

	POST /polls              → CreatePoll (returns admin_key)
	POST /polls/{id}/options → AddOption (draft only)
	POST /polls/{id}/publish → PublishPoll (generates share_slug)
	POST /polls/{id}/close   → ClosePoll (no new sessions)

Admin operations require the X-Admin-Key header.

# Ballot Sessions

Voters open a session on a published poll and click cells:

	POST /polls/{slug}/sessions  → CreateSession
	POST /sessions/{id}/select   → Select (row, column)
	POST /sessions/{id}/rebuild  → Rebuild
	GET  /sessions/{id}/ws       → Stream

Every response carries a snapshot of the grid or list, including the
form-encoded ranks a browser would submit. Nothing is stored.

# Device Tracking

Optional device tracking for native apps:

	POST /devices/register → Register
	GET /devices/me        → GetMe
	GET /devices/my-polls  → GetMyPolls

Device operations require the X-Device-UUID header.
*/
package handlers
