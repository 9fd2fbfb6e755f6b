// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/quickly-rank/models"
)

// GetDevice looks a device up by its client-chosen UUID
func GetDevice(q Querier, deviceUUID string) (models.DeviceInfo, error) {
	var device models.DeviceInfo
	err := q.QueryRow(`
		SELECT id, platform, created_at, last_seen_at
		FROM device
		WHERE device_uuid = $1
	`, deviceUUID).Scan(&device.ID, &device.Platform, &device.CreatedAt, &device.LastSeenAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DeviceInfo{}, ErrNotFound
	}
	if err != nil {
		return models.DeviceInfo{}, fmt.Errorf("failed to query device: %w", err)
	}
	return device, nil
}

// CreateDevice inserts a device row
func CreateDevice(q Querier, deviceID, deviceUUID, platform string) error {
	now := time.Now().UTC()
	_, err := q.Exec(`
		INSERT INTO device (id, device_uuid, platform, created_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5)
	`, deviceID, deviceUUID, platform, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert device: %w", err)
	}
	return nil
}

// TouchDevice records that a device was just seen
func TouchDevice(q Querier, deviceID string) error {
	_, err := q.Exec(`UPDATE device SET last_seen_at = $1 WHERE id = $2`, time.Now().UTC(), deviceID)
	if err != nil {
		return fmt.Errorf("failed to update device last_seen_at: %w", err)
	}
	return nil
}

// LinkDevice associates a device with a poll. An admin link is never
// downgraded to voter.
func LinkDevice(q Querier, deviceID, pollID, role string) error {
	_, err := q.Exec(`
		INSERT INTO device_poll (device_id, poll_id, role, linked_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (device_id, poll_id) DO UPDATE SET
			role = CASE WHEN device_poll.role = 'admin' THEN 'admin' ELSE excluded.role END
	`, deviceID, pollID, role, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to link device: %w", err)
	}
	return nil
}

// ListDevicePolls returns the polls linked to a device, most recent first
func ListDevicePolls(q Querier, deviceID string) ([]models.DevicePollSummary, error) {
	rows, err := q.Query(`
		SELECT p.id, p.title, p.status, p.share_slug, dp.role, dp.linked_at
		FROM device_poll dp
		JOIN poll p ON dp.poll_id = p.id
		WHERE dp.device_id = $1
		ORDER BY dp.linked_at DESC, p.id
	`, deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query device polls: %w", err)
	}
	defer rows.Close()

	polls := []models.DevicePollSummary{}
	for rows.Next() {
		var s models.DevicePollSummary
		if err := rows.Scan(&s.PollID, &s.Title, &s.Status, &s.ShareSlug, &s.Role, &s.LinkedAt); err != nil {
			return nil, fmt.Errorf("failed to scan device poll: %w", err)
		}
		polls = append(polls, s)
	}
	return polls, rows.Err()
}
