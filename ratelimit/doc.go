// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package ratelimit throttles poll creation per client IP and session
// opens per client IP and poll. Loopback clients are never limited.
package ratelimit
