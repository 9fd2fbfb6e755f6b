// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danielhkuo/quickly-rank/ranking"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrClosed   = errors.New("session closed")
)

// Poll is what a session needs to know about the poll it renders
type Poll struct {
	ID            string
	Slug          string
	Type          ranking.PollType
	AllowUnranked bool
	Labels        []string
}

// Snapshot is the client-facing view of a session after an interaction
type Snapshot struct {
	SessionID  string   `json:"session_id"`
	PollSlug   string   `json:"poll_slug"`
	PollType   string   `json:"poll_type"`
	Sentinel   int      `json:"sentinel"`
	Assignment []int    `json:"assignment,omitempty"`
	Cells      [][]bool `json:"cells,omitempty"`
	Selected   []int    `json:"selected,omitempty"`
	// Form is the urlencoded body a poll backend would receive
	Form string `json:"form"`
}

// Session is one voter's live form. Ranked polls hold a grid, and polls with
// unique scores also hold the rank assignment state bound to that grid.
// List polls hold a list. All methods are safe for concurrent use; events
// are applied one at a time.
type Session struct {
	id   string
	poll Poll

	mu     sync.Mutex
	grid   *ranking.Grid
	state  *ranking.State
	list   *ranking.List
	closed bool

	lastUsed atomic.Int64
}

// Form builds the initial controls for poll: a grid for ranked polls, a
// list otherwise
func (p Poll) Form() (*ranking.Grid, *ranking.List) {
	if !p.Type.IsRanked() {
		return nil, ranking.NewList(p.Labels, p.Type.ListKind())
	}
	return ranking.NewGrid(p.Labels, p.Type.RankCount(len(p.Labels)), p.Unranked()), nil
}

// Unranked reports whether the poll's grid carries a sentinel column
func (p Poll) Unranked() bool {
	return p.AllowUnranked && p.Type.UniqueScores()
}

func newSession(id string, poll Poll, now time.Time) (*Session, error) {
	if poll.Type.IsRanked() && len(poll.Labels) == 0 {
		return nil, fmt.Errorf("%w: ranked poll has no options", ranking.ErrOutOfRange)
	}

	s := &Session{id: id, poll: poll}
	s.lastUsed.Store(now.UnixNano())
	s.grid, s.list = poll.Form()

	if poll.Type.UniqueScores() {
		state, err := ranking.NewState(s.grid, len(poll.Labels), poll.Unranked())
		if err != nil {
			return nil, fmt.Errorf("failed to bind rank state: %w", err)
		}
		s.state = state
	}
	return s, nil
}

func (s *Session) ID() string       { return s.id }
func (s *Session) PollID() string   { return s.poll.ID }
func (s *Session) PollSlug() string { return s.poll.Slug }

// Grid returns the session's grid, or nil for list polls. Callers must not
// mutate it.
func (s *Session) Grid() *ranking.Grid { return s.grid }

// List returns the session's list, or nil for ranked polls. Callers must
// not mutate it.
func (s *Session) List() *ranking.List { return s.list }

// Select clicks the control at (row, column). For list polls row is the
// item index and column is ignored.
func (s *Session) Select(row, column int) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Snapshot{}, ErrClosed
	}

	var err error
	if s.list != nil {
		err = s.list.Click(row)
	} else {
		err = s.grid.Click(row, column)
	}
	if err != nil {
		return Snapshot{}, err
	}
	return s.snapshot(), nil
}

// Rebuild re-derives the rank assignment from the grid. It is a no-op for
// sessions without rank state.
func (s *Session) Rebuild() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Snapshot{}, ErrClosed
	}
	if s.state != nil {
		if err := s.state.Rebuild(); err != nil {
			return Snapshot{}, err
		}
	}
	return s.snapshot(), nil
}

// Snapshot returns the current view
func (s *Session) Snapshot() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Snapshot{}, ErrClosed
	}
	return s.snapshot(), nil
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		SessionID: s.id,
		PollSlug:  s.poll.Slug,
		PollType:  s.poll.Type.String(),
		Sentinel:  ranking.NoSentinel,
	}

	switch {
	case s.list != nil:
		snap.Selected = s.list.Selected()
		snap.Form = ranking.EncodeResponses(snap.Selected)
	case s.state != nil:
		snap.Sentinel = s.state.Sentinel()
		snap.Assignment = s.state.Assignment()
		snap.Cells = s.grid.Checked()
		snap.Form = ranking.EncodeRanks(snap.Assignment)
	default:
		snap.Assignment = s.grid.Assignment()
		snap.Cells = s.grid.Checked()
		snap.Form = ranking.EncodeRanks(snap.Assignment)
	}
	return snap
}

func (s *Session) touch(now time.Time) {
	s.lastUsed.Store(now.UnixNano())
}

func (s *Session) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastUsed.Load()))
}

func (s *Session) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
