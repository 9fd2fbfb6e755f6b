// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ratelimit

import (
	"context"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"
)

type sessionKey struct {
	ip     string
	pollID string
}

// Store remembers when each client last created a poll or opened a
// session on a poll. The zero value is not usable; call New.
type Store struct {
	createLimit  time.Duration
	sessionLimit time.Duration
	now          func() time.Time

	mu      sync.Mutex
	create  map[string]time.Time
	session map[sessionKey]time.Time
}

// New returns a store enforcing the given waits. A zero duration turns
// that limit off.
func New(createLimit, sessionLimit time.Duration) *Store {
	return &Store{
		createLimit:  createLimit,
		sessionLimit: sessionLimit,
		now:          time.Now,
		create:       make(map[string]time.Time),
		session:      make(map[sessionKey]time.Time),
	}
}

// AllowCreate reports whether ip may create a poll now, and records the
// attempt when it may
func (s *Store) AllowCreate(ip string) bool {
	if s.createLimit <= 0 || IsExempt(ip) {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return allow(s.create, ip, s.now(), s.createLimit)
}

// AllowSession reports whether ip may open a ballot session on pollID now,
// and records the attempt when it may
func (s *Store) AllowSession(ip, pollID string) bool {
	if s.sessionLimit <= 0 || IsExempt(ip) {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return allow(s.session, sessionKey{ip, pollID}, s.now(), s.sessionLimit)
}

func allow[K comparable](m map[K]time.Time, key K, now time.Time, limit time.Duration) bool {
	if last, ok := m[key]; ok && now.Sub(last) < limit {
		return false
	}
	m[key] = now
	return true
}

// Cleanup drops entries whose wait has already elapsed
func (s *Store) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for ip, last := range s.create {
		if now.Sub(last) >= s.createLimit {
			delete(s.create, ip)
		}
	}
	for key, last := range s.session {
		if now.Sub(last) >= s.sessionLimit {
			delete(s.session, key)
		}
	}
}

// Reset forgets every recorded attempt
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.create)
	clear(s.session)
}

// Len returns the number of tracked entries
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.create) + len(s.session)
}

// Run calls Cleanup every interval until ctx is cancelled
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			before := s.Len()
			s.Cleanup()
			if removed := before - s.Len(); removed > 0 {
				slog.Debug("rate limits cleaned up", "removed", removed)
			}
		}
	}
}

// IsExempt reports whether ip is a loopback address. Local clients are
// never limited.
func IsExempt(ip string) bool {
	ip = strings.TrimSuffix(strings.TrimPrefix(ip, "["), "]")
	parsed := net.ParseIP(ip)
	return parsed != nil && parsed.IsLoopback()
}
