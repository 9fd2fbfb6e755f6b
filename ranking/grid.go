// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ranking

import (
	"fmt"
	"strconv"
)

// SentinelHeader labels the unranked column
const SentinelHeader = "-"

// Cell is one radio control in a grid. Cells in the same row share a group
// name, so selecting one clears the others.
type Cell struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Value   int    `json:"value"`
	Checked bool   `json:"checked"`

	row, column int
	onSelect    func(row, column int)
}

func (c *Cell) Selected() bool {
	return c.Checked
}

func (c *Cell) SetSelected(selected bool) {
	c.Checked = selected
}

func (c *Cell) OnSelect(fn func(row, column int)) {
	c.onSelect = fn
}

// GridRow is one ballot option and its controls
type GridRow struct {
	Label string  `json:"label"`
	Cells []*Cell `json:"cells"`
}

// Grid is a rendered ranked-choice table: one row per option, one column per
// rank, plus a sentinel column when unranked selection is allowed
type Grid struct {
	Header   []string  `json:"header"`
	Rows     []GridRow `json:"rows"`
	Ranks    int       `json:"ranks"`
	Unranked bool      `json:"unranked"`
}

// NewGrid renders a grid for the given option labels. The initial selection
// puts every option on the sentinel when unranked is set, and option y on
// rank y otherwise (clamped to the last rank for short score grids).
func NewGrid(labels []string, ranks int, unranked bool) *Grid {
	columns := ranks
	if unranked {
		columns++
	}

	g := &Grid{
		Header:   make([]string, 0, columns),
		Rows:     make([]GridRow, len(labels)),
		Ranks:    ranks,
		Unranked: unranked,
	}
	for x := 0; x < ranks; x++ {
		g.Header = append(g.Header, strconv.Itoa(x+1))
	}
	if unranked {
		g.Header = append(g.Header, SentinelHeader)
	}

	for y, label := range labels {
		initial := min(y, ranks-1)
		if unranked {
			initial = ranks
		}

		row := GridRow{Label: label, Cells: make([]*Cell, columns)}
		for x := 0; x < columns; x++ {
			row.Cells[x] = &Cell{
				ID:      fmt.Sprintf("%d_%d", y, x),
				Name:    strconv.Itoa(y),
				Value:   x,
				Checked: x == initial,
				row:     y,
				column:  x,
			}
		}
		g.Rows[y] = row
	}

	return g
}

// Columns returns the number of controls per row
func (g *Grid) Columns() int {
	if g.Unranked {
		return g.Ranks + 1
	}
	return g.Ranks
}

// Control implements Controls
func (g *Grid) Control(row, column int) (Control, bool) {
	if row < 0 || row >= len(g.Rows) {
		return nil, false
	}
	cells := g.Rows[row].Cells
	if column < 0 || column >= len(cells) {
		return nil, false
	}
	return cells[column], true
}

// Click behaves like a user selecting the control at (row, column): the rest
// of the row is cleared, the control is selected, then its callback fires
func (g *Grid) Click(row, column int) error {
	if _, ok := g.Control(row, column); !ok {
		return fmt.Errorf("%w: (%d, %d)", ErrOutOfRange, row, column)
	}

	cells := g.Rows[row].Cells
	for _, c := range cells {
		c.Checked = false
	}
	target := cells[column]
	target.Checked = true
	if target.onSelect != nil {
		target.onSelect(target.row, target.column)
	}
	return nil
}

// Assignment reads the selected column of every row, -1 where none is set
func (g *Grid) Assignment() []int {
	out := make([]int, len(g.Rows))
	for y, row := range g.Rows {
		out[y] = -1
		for x, c := range row.Cells {
			if c.Checked {
				out[y] = x
				break
			}
		}
	}
	return out
}

// Checked returns the selection flags as a matrix
func (g *Grid) Checked() [][]bool {
	out := make([][]bool, len(g.Rows))
	for y, row := range g.Rows {
		out[y] = make([]bool, len(row.Cells))
		for x, c := range row.Cells {
			out[y][x] = c.Checked
		}
	}
	return out
}
