// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and holds the SQL for polls and devices.

# Connecting

Open picks the driver from the database type and pings once:

	conn, err := db.Open(cliparse.DatabaseSQLite, "file:rank.db")

SQLite uses modernc.org/sqlite with foreign keys on and a busy timeout.
PostgreSQL uses github.com/lib/pq. Queries use $N placeholders, which both
drivers accept.

# Schema Creation

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - poll: Poll metadata, type and lifecycle state
  - poll_option: Ordered options per poll
  - device: Registered devices
  - device_poll: Links devices to polls

# Relationships

	poll 1──* poll_option
	device *──* poll (via device_poll)

All foreign keys use ON DELETE CASCADE.

# Queries

Functions take a Querier so they run on *sql.DB or inside a *sql.Tx.
Missing rows come back as ErrNotFound.
*/
package db
