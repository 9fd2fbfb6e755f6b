// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quickly Rank API server.

Quickly Rank serves poll forms: a flat option list for single and multiple
choice polls, and a ranked-choice radio grid for ranked polls. Each voter
works in a ballot session kept on the server, where the rank assignment
state keeps every rank held by at most one option as the voter clicks.
Nothing is tallied and no vote is stored.

# Starting the Server

The server reads a .env file if present, then environment variables or CLI
flags:

	DATABASE_URL=file:rank.db go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file URL or PostgreSQL connection string
  - ADMIN_KEY_SALT (-admin-salt): Secret for admin key HMAC
  - POLL_SLUG_SALT (-slug-salt): Secret for share slug generation

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - BASE_URL (-base-url): Prefix for share links
  - ALLOWED_ORIGINS (-origins): Comma-separated CORS origins
  - SERVER_ADMIN_TOKEN (-admin-token): Enables /admin endpoints
  - SESSION_TTL, CREATE_LIMIT, SESSION_LIMIT: Session expiry and rate limits
  - TRUST_PROXY (-trust-proxy): Key rate limits on proxy headers (behind a reverse proxy only)

# Architecture

  - ranking: Rank assignment state, grid and list renderers, poll types
  - session: In-memory ballot sessions with expiry
  - ratelimit: Per-IP creation and session limits
  - render: HTML vote and admin pages
  - handlers: HTTP request handlers (polls, forms, sessions, admin, devices)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON and HTML helpers
  - models: Request/response types
  - auth: Key, slug and token handling
  - db: Connection, schema and queries
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
