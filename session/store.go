// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store holds live sessions in memory. Nothing is persisted.
type Store struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore returns an empty store whose sessions expire after ttl without
// use. A zero ttl keeps sessions until they are deleted.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create starts a session for poll
func (s *Store) Create(poll Poll) (*Session, error) {
	sess, err := newSession(uuid.NewString(), poll, s.now())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	slog.Info("session created", "session_id", sess.id, "poll_id", poll.ID, "poll_type", poll.Type.String())
	return sess, nil
}

// Get returns a live session and marks it used
func (s *Store) Get(id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	now := s.now()
	if s.expired(sess, now) {
		s.remove(id)
		return nil, ErrNotFound
	}
	sess.touch(now)
	return sess, nil
}

// Delete ends a session. In-flight holders see ErrClosed afterwards.
func (s *Store) Delete(id string) error {
	if !s.remove(id) {
		return ErrNotFound
	}
	return nil
}

// DeleteForPoll ends every session of a poll and returns how many ended
func (s *Store) DeleteForPoll(pollID string) int {
	s.mu.Lock()
	var ended []*Session
	for id, sess := range s.sessions {
		if sess.poll.ID == pollID {
			ended = append(ended, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range ended {
		sess.close()
	}
	return len(ended)
}

// Clear ends every session
func (s *Store) Clear() int {
	s.mu.Lock()
	ended := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, sess := range ended {
		sess.close()
	}
	return len(ended)
}

// CountForPoll returns the number of live sessions on a poll
func (s *Store) CountForPoll(pollID string) int {
	now := s.now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, sess := range s.sessions {
		if sess.poll.ID == pollID && !s.expired(sess, now) {
			count++
		}
	}
	return count
}

// Len returns the number of stored sessions, expired or not
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes expired sessions and returns how many were removed
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}

	now := s.now()
	s.mu.Lock()
	var expired []*Session
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.close()
	}
	return len(expired)
}

// Run sweeps every interval until ctx is cancelled
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.Info("expired sessions swept", "count", n)
			}
		}
	}
}

func (s *Store) expired(sess *Session, now time.Time) bool {
	return s.ttl > 0 && sess.idleSince(now) >= s.ttl
}

func (s *Store) remove(id string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		sess.close()
	}
	return ok
}
