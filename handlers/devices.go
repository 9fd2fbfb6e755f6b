// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-rank/auth"
	"github.com/danielhkuo/quickly-rank/cliparse"
	"github.com/danielhkuo/quickly-rank/db"
	"github.com/danielhkuo/quickly-rank/middleware"
	"github.com/danielhkuo/quickly-rank/models"
)

type DeviceHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewDeviceHandler(db *sql.DB, cfg cliparse.Config) *DeviceHandler {
	return &DeviceHandler{db: db, cfg: cfg}
}

// Register handles POST /devices/register
// Registers a device and returns its device_id (or finds existing)
func (h *DeviceHandler) Register(w http.ResponseWriter, r *http.Request) {
	deviceUUID, ok := requireDeviceUUID(w, r)
	if !ok {
		return
	}

	var req models.RegisterDeviceRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if !isValidPlatform(req.Platform) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "platform must be one of: ios, macos, android, web")
		return
	}

	device, err := db.GetDevice(h.db, deviceUUID)
	if err == nil {
		if err := db.TouchDevice(h.db, device.ID); err != nil {
			slog.Error("failed to touch device", "error", err)
		}

		slog.Info("device registered (existing)", "device_id", device.ID)
		middleware.JSONResponse(w, http.StatusOK, models.RegisterDeviceResponse{
			DeviceID: device.ID,
			IsNew:    false,
		})
		return
	}
	if !errors.Is(err, db.ErrNotFound) {
		slog.Error("failed to query device", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	deviceID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate device ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register device")
		return
	}
	if err := db.CreateDevice(h.db, deviceID, deviceUUID, req.Platform); err != nil {
		slog.Error("failed to insert device", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register device")
		return
	}

	slog.Info("device registered (new)", "device_id", deviceID, "platform", req.Platform)

	middleware.JSONResponse(w, http.StatusCreated, models.RegisterDeviceResponse{
		DeviceID: deviceID,
		IsNew:    true,
	})
}

// GetMe handles GET /devices/me
func (h *DeviceHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	device, ok := h.loadDevice(w, r)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, device)
}

// GetMyPolls handles GET /devices/my-polls
// Returns polls this device created or opened a ballot on
func (h *DeviceHandler) GetMyPolls(w http.ResponseWriter, r *http.Request) {
	device, ok := h.loadDevice(w, r)
	if !ok {
		return
	}

	polls, err := db.ListDevicePolls(h.db, device.ID)
	if err != nil {
		slog.Error("failed to query device polls", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.GetMyPollsResponse{
		Polls: polls,
	})
}

func (h *DeviceHandler) loadDevice(w http.ResponseWriter, r *http.Request) (models.DeviceInfo, bool) {
	deviceUUID, ok := requireDeviceUUID(w, r)
	if !ok {
		return models.DeviceInfo{}, false
	}

	device, err := db.GetDevice(h.db, deviceUUID)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Device not registered")
		return models.DeviceInfo{}, false
	}
	if err != nil {
		slog.Error("failed to query device", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return models.DeviceInfo{}, false
	}

	if err := db.TouchDevice(h.db, device.ID); err != nil {
		slog.Error("failed to touch device", "error", err)
	}
	return device, true
}

func requireDeviceUUID(w http.ResponseWriter, r *http.Request) (string, bool) {
	deviceUUID := r.Header.Get(middleware.DeviceUUIDHeader)
	if deviceUUID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "X-Device-UUID header required")
		return "", false
	}
	if _, err := uuid.Parse(deviceUUID); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "X-Device-UUID must be a UUID")
		return "", false
	}
	return deviceUUID, true
}

// linkDevice records a device's role on a poll, creating a web device on
// first sight. Failures are logged and never fail the request.
func linkDevice(conn *sql.DB, deviceUUID, pollID, role string) {
	if _, err := uuid.Parse(deviceUUID); err != nil {
		slog.Warn("ignoring malformed device UUID", "poll_id", pollID)
		return
	}

	device, err := db.GetDevice(conn, deviceUUID)
	deviceID := device.ID
	switch {
	case errors.Is(err, db.ErrNotFound):
		// Platform is corrected later via /devices/register
		deviceID, err = auth.GenerateID(16)
		if err == nil {
			err = db.CreateDevice(conn, deviceID, deviceUUID, models.PlatformWeb)
		}
	case err == nil:
		err = db.TouchDevice(conn, deviceID)
	}
	if err == nil {
		err = db.LinkDevice(conn, deviceID, pollID, role)
	}
	if err != nil {
		slog.Error("failed to link device to poll", "poll_id", pollID, "role", role, "error", err)
	}
}

func isValidPlatform(platform string) bool {
	switch platform {
	case models.PlatformIOS, models.PlatformMacOS, models.PlatformAndroid, models.PlatformWeb:
		return true
	}
	return false
}
