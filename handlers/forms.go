// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-rank/cliparse"
	"github.com/danielhkuo/quickly-rank/db"
	"github.com/danielhkuo/quickly-rank/middleware"
	"github.com/danielhkuo/quickly-rank/models"
	"github.com/danielhkuo/quickly-rank/ranking"
	"github.com/danielhkuo/quickly-rank/render"
	"github.com/danielhkuo/quickly-rank/session"
)

// FormHandler serves published polls to voters
type FormHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	sessions *session.Store
}

func NewFormHandler(db *sql.DB, cfg cliparse.Config, sessions *session.Store) *FormHandler {
	return &FormHandler{db: db, cfg: cfg, sessions: sessions}
}

// GetPoll handles GET /polls/:slug
func (h *FormHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pwo, ok := loadPublished(w, h.db, r.PathValue("slug"))
	if !ok {
		return
	}

	middleware.JSONResponse(w, http.StatusOK, pwo)
}

// GetForm handles GET /polls/:slug/form
// Returns the untouched grid or list a new voter starts from
func (h *FormHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	pwo, ok := loadPublished(w, h.db, r.PathValue("slug"))
	if !ok {
		return
	}

	sp, err := sessionPoll(pwo)
	if err != nil {
		slog.Error("stored poll type is invalid", "poll_id", pwo.Poll.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Poll is misconfigured")
		return
	}

	grid, list := sp.Form()
	resp := models.FormResponse{
		PollType: sp.Type.String(),
		Sentinel: ranking.NoSentinel,
		Grid:     grid,
		List:     list,
	}
	if sp.Unranked() {
		resp.Sentinel = len(sp.Labels)
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// VotePage handles GET /vote/:slug
func (h *FormHandler) VotePage(w http.ResponseWriter, r *http.Request) {
	pwo, ok := loadPublished(w, h.db, r.PathValue("slug"))
	if !ok {
		return
	}

	sp, err := sessionPoll(pwo)
	if err != nil {
		slog.Error("stored poll type is invalid", "poll_id", pwo.Poll.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Poll is misconfigured")
		return
	}

	grid, list := sp.Form()
	page, err := render.RenderVotePage(render.VotePage{
		Title:       pwo.Poll.Title,
		Description: pwo.Poll.Description,
		Slug:        sp.Slug,
		PollType:    sp.Type.String(),
		Closed:      pwo.Poll.Status == models.StatusClosed,
		Grid:        grid,
		List:        list,
	})
	if err != nil {
		slog.Error("failed to render vote page", "poll_id", pwo.Poll.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to render poll")
		return
	}

	middleware.HTMLResponse(w, http.StatusOK, page)
}

// GetPreview handles GET /polls/:slug/preview
// Returns compact poll data for link previews
func (h *FormHandler) GetPreview(w http.ResponseWriter, r *http.Request) {
	shareSlug := r.PathValue("slug")
	if shareSlug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return
	}

	poll, err := db.GetPollBySlug(h.db, shareSlug)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	optionCount, err := db.CountOptions(h.db, poll.ID)
	if err != nil {
		slog.Error("failed to count options", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PollPreviewResponse{
		Title:          poll.Title,
		Status:         poll.Status,
		PollType:       poll.PollType,
		OptionCount:    optionCount,
		ActiveSessions: h.sessions.CountForPoll(poll.ID),
	})
}

// loadPublished fetches a poll and its options by share slug, writing the
// error response itself when it fails
func loadPublished(w http.ResponseWriter, conn *sql.DB, shareSlug string) (models.PollWithOptions, bool) {
	if shareSlug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return models.PollWithOptions{}, false
	}

	pwo, err := db.GetPollWithOptions(conn, shareSlug)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return models.PollWithOptions{}, false
	}
	if err != nil {
		slog.Error("failed to load poll", "share_slug", shareSlug, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return models.PollWithOptions{}, false
	}
	return pwo, true
}

// sessionPoll converts a stored poll into what the form builders need
func sessionPoll(pwo models.PollWithOptions) (session.Poll, error) {
	pollType, err := ranking.ParsePollType(pwo.Poll.PollType)
	if err != nil {
		return session.Poll{}, fmt.Errorf("poll %s: %w", pwo.Poll.ID, err)
	}

	slug := ""
	if pwo.Poll.ShareSlug != nil {
		slug = *pwo.Poll.ShareSlug
	}
	return session.Poll{
		ID:            pwo.Poll.ID,
		Slug:          slug,
		Type:          pollType,
		AllowUnranked: pwo.Poll.AllowUnranked,
		Labels:        db.OptionLabels(pwo.Options),
	}, nil
}
