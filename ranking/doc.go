// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ranking renders voting forms and keeps ranked-choice grids consistent.

# Renderers

NewList builds a flat option list for Single (radio) and Multiple
(checkbox) polls:

	list := ranking.NewList([]string{"Pizza", "Tacos"}, ranking.Radio)

NewGrid builds a ranked-choice table with one radio group per option:

	grid := ranking.NewGrid(labels, len(labels), false)

Control (y, x) has id "y_x", group name y and value x. When unranked
selection is allowed an extra sentinel column with header "-" is added and
every row starts on it; otherwise option y starts on rank y.

# Rank Assignment

State enforces that each rank except the sentinel is held by one option at
most. It reads the starting assignment from a Controls implementation and
attaches itself to every control:

	state, err := ranking.NewState(grid, len(labels), false)
	grid.Click(0, 2) // option 0 takes rank 2, the previous holder takes 0

Claiming a held rank swaps the two options. Claiming the sentinel never
displaces anyone.

# Poll Types

	Single, Multiple, RankedBorda, RankedDowdall, RankedScore<N>

Borda and Dowdall grids use unique scores and are driven by a State. Score
grids have N columns and independent rows.

# Form Encoding

EncodeRanks and EncodeResponses render a selection as the form body a poll
backend receives:

	0=2&1=1&2=0
	response=0&response=3
*/
package ranking
