// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/quickly-rank/models"
)

var ErrNotFound = errors.New("not found")

// Querier is satisfied by both *sql.DB and *sql.Tx
type Querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

const pollColumns = `
	id, title, description, creator_name, poll_type, allow_unranked,
	status, share_slug, closed_at, created_at`

func scanPoll(row *sql.Row) (models.Poll, error) {
	var poll models.Poll
	err := row.Scan(
		&poll.ID, &poll.Title, &poll.Description, &poll.CreatorName,
		&poll.PollType, &poll.AllowUnranked, &poll.Status, &poll.ShareSlug,
		&poll.ClosedAt, &poll.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Poll{}, ErrNotFound
	}
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to scan poll: %w", err)
	}
	return poll, nil
}

// GetPollByID loads a poll by its private ID
func GetPollByID(q Querier, pollID string) (models.Poll, error) {
	return scanPoll(q.QueryRow(`SELECT `+pollColumns+` FROM poll WHERE id = $1`, pollID))
}

// GetPollBySlug loads a published poll by its share slug
func GetPollBySlug(q Querier, slug string) (models.Poll, error) {
	return scanPoll(q.QueryRow(`SELECT `+pollColumns+` FROM poll WHERE share_slug = $1`, slug))
}

// GetOptions returns a poll's options in position order
func GetOptions(q Querier, pollID string) ([]models.Option, error) {
	rows, err := q.Query(`
		SELECT id, poll_id, position, label
		FROM poll_option
		WHERE poll_id = $1
		ORDER BY position
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to query options: %w", err)
	}
	defer rows.Close()

	options := []models.Option{}
	for rows.Next() {
		var opt models.Option
		if err := rows.Scan(&opt.ID, &opt.PollID, &opt.Position, &opt.Label); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options = append(options, opt)
	}
	return options, rows.Err()
}

// GetPollWithOptions loads a poll by share slug together with its options
func GetPollWithOptions(q Querier, slug string) (models.PollWithOptions, error) {
	poll, err := GetPollBySlug(q, slug)
	if err != nil {
		return models.PollWithOptions{}, err
	}
	options, err := GetOptions(q, poll.ID)
	if err != nil {
		return models.PollWithOptions{}, err
	}
	return models.PollWithOptions{Poll: poll, Options: options}, nil
}

// InsertOption appends an option after the poll's current last position
func InsertOption(q Querier, optionID, pollID, label string) (int, error) {
	var position int
	err := q.QueryRow(`
		SELECT COALESCE(MAX(position) + 1, 0) FROM poll_option WHERE poll_id = $1
	`, pollID).Scan(&position)
	if err != nil {
		return 0, fmt.Errorf("failed to find next option position: %w", err)
	}

	_, err = q.Exec(`
		INSERT INTO poll_option (id, poll_id, position, label)
		VALUES ($1, $2, $3, $4)
	`, optionID, pollID, position, label)
	if err != nil {
		return 0, fmt.Errorf("failed to insert option: %w", err)
	}
	return position, nil
}

// LockPoll takes a write lock on the poll row for the rest of the transaction.
// On SQLite the write also upgrades the transaction to the database write lock.
func LockPoll(q Querier, pollID string) error {
	res, err := q.Exec(`UPDATE poll SET status = status WHERE id = $1`, pollID)
	if err != nil {
		return fmt.Errorf("failed to lock poll: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to lock poll: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountOptions returns the number of options on a poll
func CountOptions(q Querier, pollID string) (int, error) {
	var count int
	err := q.QueryRow(`SELECT COUNT(*) FROM poll_option WHERE poll_id = $1`, pollID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count options: %w", err)
	}
	return count, nil
}

// ListPolls returns every poll, newest first
func ListPolls(q Querier) ([]models.PollSummary, error) {
	rows, err := q.Query(`
		SELECT p.id, p.title, p.poll_type, p.status, p.share_slug, p.created_at,
		       (SELECT COUNT(*) FROM poll_option o WHERE o.poll_id = p.id) AS option_count
		FROM poll p
		ORDER BY p.created_at DESC, p.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query polls: %w", err)
	}
	defer rows.Close()

	polls := []models.PollSummary{}
	for rows.Next() {
		var p models.PollSummary
		if err := rows.Scan(&p.ID, &p.Title, &p.PollType, &p.Status, &p.ShareSlug, &p.CreatedAt, &p.OptionCount); err != nil {
			return nil, fmt.Errorf("failed to scan poll summary: %w", err)
		}
		polls = append(polls, p)
	}
	return polls, rows.Err()
}

// DeletePoll removes a poll and, through cascades, its options and links
func DeletePoll(q Querier, pollID string) error {
	res, err := q.Exec(`DELETE FROM poll WHERE id = $1`, pollID)
	if err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// PurgePolls deletes every poll and returns how many were removed
func PurgePolls(q Querier) (int64, error) {
	res, err := q.Exec(`DELETE FROM poll`)
	if err != nil {
		return 0, fmt.Errorf("failed to purge polls: %w", err)
	}
	return res.RowsAffected()
}

// OptionLabels extracts labels in order
func OptionLabels(options []models.Option) []string {
	labels := make([]string, len(options))
	for i, opt := range options {
		labels[i] = opt.Label
	}
	return labels
}
