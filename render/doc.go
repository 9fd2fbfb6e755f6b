// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package render builds the HTML vote page and the server admin poll list.
// Poll descriptions are Markdown rendered with goldmark; raw HTML in them is
// dropped.
package render
