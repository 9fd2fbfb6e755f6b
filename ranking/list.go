// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ranking

import (
	"fmt"
	"strconv"
)

// ListGroupName is the shared input name of every control in a list
const ListGroupName = "poll_preview"

// ControlKind selects between single-select and multi-select lists
type ControlKind string

const (
	Radio    ControlKind = "radio"
	Checkbox ControlKind = "checkbox"
)

// ListItem is one labelled control of a list poll
type ListItem struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Type    ControlKind `json:"type"`
	Value   string      `json:"value"`
	Label   string      `json:"label"`
	Checked bool        `json:"checked"`
}

// List is a flat rendered option list. No rule links the items beyond the
// control kind itself: radios exclude each other, checkboxes don't.
type List struct {
	Kind  ControlKind `json:"kind"`
	Items []ListItem  `json:"items"`
}

// NewList renders one control per label, nothing selected
func NewList(labels []string, kind ControlKind) *List {
	l := &List{Kind: kind, Items: make([]ListItem, len(labels))}
	for i, label := range labels {
		id := "opt" + strconv.Itoa(i)
		l.Items[i] = ListItem{
			ID:    id,
			Name:  ListGroupName,
			Type:  kind,
			Value: id,
			Label: label,
		}
	}
	return l
}

// Click selects a radio item or toggles a checkbox item
func (l *List) Click(index int) error {
	if index < 0 || index >= len(l.Items) {
		return fmt.Errorf("%w: item %d", ErrOutOfRange, index)
	}

	if l.Kind == Checkbox {
		l.Items[index].Checked = !l.Items[index].Checked
		return nil
	}
	for i := range l.Items {
		l.Items[i].Checked = i == index
	}
	return nil
}

// Selected returns the indices of checked items in order
func (l *List) Selected() []int {
	out := []int{}
	for i, item := range l.Items {
		if item.Checked {
			out = append(out, i)
		}
	}
	return out
}
