// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file is loaded first when present (see -env-file). Values already in
the environment are not overridden.

# CLI Flags

	-p             Server port
	-d             Database URL
	-t             Database type (sqlite or postgres)
	-base-url      Public base URL for share links
	-origins       Comma-separated CORS origins
	-admin-salt    Admin key salt
	-slug-salt     Poll slug salt
	-admin-token   Server admin token
	-session-ttl   Session idle expiry
	-create-limit  Wait between poll creations per IP
	-session-limit Wait between session opens per IP and poll
	-trust-proxy   Key rate limits on X-Real-IP/X-Forwarded-For

# Environment Variables

Flags fall back to environment variables:

	PORT               → -p
	DATABASE_URL       → -d
	DATABASE_TYPE      → -t
	BASE_URL           → -base-url
	ALLOWED_ORIGINS    → -origins
	ADMIN_KEY_SALT     → -admin-salt
	POLL_SLUG_SALT     → -slug-salt
	SERVER_ADMIN_TOKEN → -admin-token
	TRUST_PROXY        → -trust-proxy
	SESSION_TTL, CREATE_LIMIT, SESSION_LIMIT (Go durations, "0s" disables)

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing:

  - DATABASE_URL must be provided
  - ADMIN_KEY_SALT must be provided
  - POLL_SLUG_SALT must be provided
*/
package cliparse
