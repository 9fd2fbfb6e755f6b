// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ranking

import (
	"strconv"
	"strings"
)

// EncodeRanks renders a grid assignment as the ranked form body
//
//	0={rank}&1={rank}&...&{n-1}={rank}
//
// Options appear in index order; url.Values would sort "10" before "2".
func EncodeRanks(assignment []int) string {
	var b strings.Builder
	for option, rank := range assignment {
		if option > 0 {
			b.WriteByte('&')
		}
		b.WriteString(strconv.Itoa(option))
		b.WriteByte('=')
		b.WriteString(strconv.Itoa(rank))
	}
	return b.String()
}

// EncodeResponses renders list selections as repeated response fields
func EncodeResponses(selected []int) string {
	var b strings.Builder
	for i, option := range selected {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString("response=")
		b.WriteString(strconv.Itoa(option))
	}
	return b.String()
}
