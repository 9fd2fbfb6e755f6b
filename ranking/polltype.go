// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ranking

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidPollType = errors.New("invalid poll type")

// Kind is the broad shape of a poll's voting form
type Kind int

const (
	KindSingle Kind = iota
	KindMultiple
	KindRanked
)

// System is the positional system used by ranked polls
type System int

const (
	SystemNone System = iota
	// Borda count: {number of options}-{position} points, last place gets 0
	SystemBorda
	// Dowdall: first place 1 point, second 1/2, third 1/3...
	SystemDowdall
	// Score: every option gets one of N point values, duplicates allowed
	SystemScore
)

// Bounds on the number of columns a score grid can have
const (
	MinScoreLevels = 2
	MaxScoreLevels = 100
)

// PollType describes which form a poll renders and how its grid behaves
type PollType struct {
	Kind   Kind
	System System
	// Levels is the column count for score grids, zero otherwise
	Levels int
}

var (
	Single        = PollType{Kind: KindSingle}
	Multiple      = PollType{Kind: KindMultiple}
	RankedBorda   = PollType{Kind: KindRanked, System: SystemBorda}
	RankedDowdall = PollType{Kind: KindRanked, System: SystemDowdall}
)

// RankedScore returns a score poll type with the given number of levels
func RankedScore(levels int) PollType {
	return PollType{Kind: KindRanked, System: SystemScore, Levels: levels}
}

// ParsePollType parses the canonical string form produced by String.
//
//	Single, Multiple, RankedBorda, RankedDowdall, RankedScore<N>
func ParsePollType(s string) (PollType, error) {
	switch s {
	case "Single":
		return Single, nil
	case "Multiple":
		return Multiple, nil
	}

	desc, ok := strings.CutPrefix(s, "Ranked")
	if !ok {
		return PollType{}, fmt.Errorf("%w: %q", ErrInvalidPollType, s)
	}

	switch desc {
	case "Borda":
		return RankedBorda, nil
	case "Dowdall":
		return RankedDowdall, nil
	}

	levelsStr, ok := strings.CutPrefix(desc, "Score")
	if !ok {
		return PollType{}, fmt.Errorf("%w: unknown positional system %q", ErrInvalidPollType, desc)
	}
	levels, err := strconv.Atoi(levelsStr)
	if err != nil {
		return PollType{}, fmt.Errorf("%w: score levels %q not a number", ErrInvalidPollType, levelsStr)
	}
	if levels < MinScoreLevels {
		return PollType{}, fmt.Errorf("%w: score polls need at least %d levels", ErrInvalidPollType, MinScoreLevels)
	}
	if levels > MaxScoreLevels {
		return PollType{}, fmt.Errorf("%w: score polls allow at most %d levels", ErrInvalidPollType, MaxScoreLevels)
	}
	return RankedScore(levels), nil
}

func (p PollType) String() string {
	switch p.Kind {
	case KindSingle:
		return "Single"
	case KindMultiple:
		return "Multiple"
	}

	switch p.System {
	case SystemBorda:
		return "RankedBorda"
	case SystemDowdall:
		return "RankedDowdall"
	case SystemScore:
		return "RankedScore" + strconv.Itoa(p.Levels)
	}
	return "Ranked"
}

// IsRanked reports whether the poll renders a grid rather than a list
func (p PollType) IsRanked() bool {
	return p.Kind == KindRanked
}

// UniqueScores reports whether each rank may be held by one option at most.
// Only grids with unique scores are driven by a State.
func (p PollType) UniqueScores() bool {
	return p.Kind == KindRanked && (p.System == SystemBorda || p.System == SystemDowdall)
}

// RankCount returns the number of non-sentinel columns for a grid with the
// given number of options
func (p PollType) RankCount(options int) int {
	if p.System == SystemScore {
		return p.Levels
	}
	return options
}

// ListKind returns the control kind used when rendering a list poll
func (p PollType) ListKind() ControlKind {
	if p.Kind == KindMultiple {
		return Checkbox
	}
	return Radio
}
