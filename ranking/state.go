// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ranking

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfRange     = errors.New("option or rank out of range")
	ErrMissingControl = errors.New("control missing from grid")
	ErrRowSelection   = errors.New("row must have exactly one selected control")
)

// NoSentinel is returned by Sentinel when unranked selection is disabled
const NoSentinel = -1

// Control is a single selectable cell owned by a renderer
type Control interface {
	Selected() bool
	SetSelected(selected bool)
	// OnSelect replaces the callback fired after the user selects the control
	OnSelect(fn func(row, column int))
}

// Controls looks up the control at a (row, column) position
type Controls interface {
	Control(row, column int) (Control, bool)
}

// State keeps a grid of per-row radio groups consistent so that every rank
// except the sentinel is held by one option at most. When the user claims a
// rank that another option holds, the two options swap ranks.
//
// State is not safe for concurrent use; callers serialize interactions.
type State struct {
	controls   Controls
	options    int
	unranked   bool
	assignment []int
}

// NewState builds the state for a grid of options rows and reads the initial
// assignment from the controls' selection flags
func NewState(controls Controls, options int, unranked bool) (*State, error) {
	if options < 1 {
		return nil, fmt.Errorf("%w: need at least one option, got %d", ErrOutOfRange, options)
	}

	s := &State{
		controls: controls,
		options:  options,
		unranked: unranked,
	}
	if err := s.Rebuild(); err != nil {
		return nil, err
	}
	return s, nil
}

// Options returns the number of rows
func (s *State) Options() int {
	return s.options
}

// Ranks returns the number of columns, sentinel included
func (s *State) Ranks() int {
	if s.unranked {
		return s.options + 1
	}
	return s.options
}

// Sentinel returns the unranked column, or NoSentinel
func (s *State) Sentinel() int {
	if s.unranked {
		return s.options
	}
	return NoSentinel
}

// Rank returns the rank currently held by option
func (s *State) Rank(option int) int {
	return s.assignment[option]
}

// Assignment returns a copy of the option -> rank mapping
func (s *State) Assignment() []int {
	out := make([]int, len(s.assignment))
	copy(out, s.assignment)
	return out
}

// Rebuild re-derives the assignment from the controls and re-attaches the
// select handler to every control. Calling it repeatedly is harmless.
func (s *State) Rebuild() error {
	ranks := s.Ranks()
	assignment := make([]int, s.options)

	for y := 0; y < s.options; y++ {
		assignment[y] = -1
		for x := 0; x < ranks; x++ {
			c, ok := s.controls.Control(y, x)
			if !ok {
				return fmt.Errorf("%w: (%d, %d)", ErrMissingControl, y, x)
			}
			if c.Selected() {
				if assignment[y] != -1 {
					return fmt.Errorf("%w: row %d has ranks %d and %d selected", ErrRowSelection, y, assignment[y], x)
				}
				assignment[y] = x
			}
			c.OnSelect(s.handleSelect)
		}
		if assignment[y] == -1 {
			return fmt.Errorf("%w: row %d has nothing selected", ErrRowSelection, y)
		}
	}

	s.assignment = assignment
	return nil
}

// SetRank gives option the requested rank. If another option held it, that
// option takes option's previous rank. Claiming the sentinel never displaces.
//
// SetRank selects the control in option's row itself, the way a click does,
// so it can be driven without going through the renderer.
func (s *State) SetRank(option, rank int) error {
	ranks := s.Ranks()
	if option < 0 || option >= s.options || rank < 0 || rank >= ranks {
		return fmt.Errorf("%w: option %d rank %d", ErrOutOfRange, option, rank)
	}
	for x := 0; x < ranks; x++ {
		s.control(option, x).SetSelected(x == rank)
	}
	s.setRank(option, rank)
	return nil
}

// handleSelect is attached to every control; renderers only fire it with
// positions they own, so the bounds are already satisfied
func (s *State) handleSelect(row, column int) {
	s.setRank(row, column)
}

func (s *State) setRank(y, x int) {
	if s.unranked && x == s.options {
		s.assignment[y] = x
		return
	}

	prev := s.assignment[y]
	// The clicked control is already selected by the renderer
	s.assignment[y] = x
	for iy := 0; iy < s.options; iy++ {
		if iy == y {
			continue
		}
		held := s.control(iy, x)
		if !held.Selected() {
			continue
		}
		held.SetSelected(false)
		s.control(iy, prev).SetSelected(true)
		s.assignment[iy] = prev
	}
}

func (s *State) control(row, column int) Control {
	c, ok := s.controls.Control(row, column)
	if !ok {
		// Rebuild verified every position
		panic(fmt.Sprintf("ranking: control (%d, %d) disappeared", row, column))
	}
	return c
}
