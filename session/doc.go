// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package session keeps ballot sessions in memory.

A session is one voter's open form on a published poll. Ranked polls get a
radio grid; polls with unique scores also bind a rank assignment state to
that grid, so a click that takes a rank already held moves the previous
holder into the freed rank. Single and multiple choice polls get a list.

	store := session.NewStore(cfg.SessionTTL)
	sess, err := store.Create(poll)
	snap, err := sess.Select(row, column)

Sessions expire after the store's TTL of inactivity. Run sweeps them in the
background until its context is cancelled. Deleting a poll should be paired
with DeleteForPoll so its sessions end too.
*/
package session
