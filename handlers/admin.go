// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/quickly-rank/auth"
	"github.com/danielhkuo/quickly-rank/cliparse"
	"github.com/danielhkuo/quickly-rank/db"
	"github.com/danielhkuo/quickly-rank/middleware"
	"github.com/danielhkuo/quickly-rank/models"
	"github.com/danielhkuo/quickly-rank/ratelimit"
	"github.com/danielhkuo/quickly-rank/render"
	"github.com/danielhkuo/quickly-rank/session"
)

// AdminHandler serves server-wide administration, switched on by
// SERVER_ADMIN_TOKEN
type AdminHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	limits   *ratelimit.Store
	sessions *session.Store
}

func NewAdminHandler(db *sql.DB, cfg cliparse.Config, limits *ratelimit.Store, sessions *session.Store) *AdminHandler {
	return &AdminHandler{db: db, cfg: cfg, limits: limits, sessions: sessions}
}

// ListPolls handles GET /admin/polls
// Renders HTML unless the client asks for JSON
func (h *AdminHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	polls, err := db.ListPolls(h.db)
	if err != nil {
		slog.Error("failed to list polls", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Warn("admin listed polls", "count", len(polls))

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		middleware.JSONResponse(w, http.StatusOK, polls)
		return
	}

	page, err := render.RenderAdminPolls(polls, time.Now())
	if err != nil {
		slog.Error("failed to render poll list", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to render poll list")
		return
	}
	middleware.HTMLResponse(w, http.StatusOK, page)
}

// DeletePoll handles DELETE /admin/polls/:id
func (h *AdminHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	pollID := r.PathValue("id")
	err := db.DeletePoll(h.db, pollID)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to delete poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete poll")
		return
	}

	ended := h.sessions.DeleteForPoll(pollID)
	slog.Warn("admin deleted poll", "poll_id", pollID, "sessions_ended", ended)

	middleware.JSONResponse(w, http.StatusOK, models.ActionResponse{Action: "poll_deleted"})
}

// Purge handles POST /admin/purge
// Removes every poll and ends every session
func (h *AdminHandler) Purge(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	n, err := db.PurgePolls(h.db)
	if err != nil {
		slog.Error("failed to purge database", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to purge database")
		return
	}
	ended := h.sessions.Clear()

	slog.Warn("database purged", "polls_deleted", n, "sessions_ended", ended)

	middleware.JSONResponse(w, http.StatusOK, models.PurgeResponse{PollsDeleted: n})
}

// ResetLimits handles POST /admin/reset-limits
func (h *AdminHandler) ResetLimits(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	h.limits.Reset()
	slog.Warn("rate limits reset")

	middleware.JSONResponse(w, http.StatusOK, models.ActionResponse{Action: "limits_reset"})
}

func (h *AdminHandler) authorize(w http.ResponseWriter, r *http.Request) bool {
	err := auth.ValidateServerToken(r.Header.Get(middleware.ServerAdminTokenHeader), h.cfg.ServerAdminToken)
	switch {
	case errors.Is(err, auth.ErrAdminDisabled):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return false
	case err != nil:
		slog.Warn("invalid server admin token", "ip_hash", auth.HashIP(middleware.GetClientIP(r), h.cfg.AdminKeySalt))
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid server admin token")
		return false
	}
	return true
}
