// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"slices"

	"github.com/gorilla/websocket"

	"github.com/danielhkuo/quickly-rank/auth"
	"github.com/danielhkuo/quickly-rank/cliparse"
	"github.com/danielhkuo/quickly-rank/middleware"
	"github.com/danielhkuo/quickly-rank/models"
	"github.com/danielhkuo/quickly-rank/ranking"
	"github.com/danielhkuo/quickly-rank/ratelimit"
	"github.com/danielhkuo/quickly-rank/session"
)

// Websocket message types
const (
	MessageSelect   = "select"
	MessageRebuild  = "rebuild"
	MessageSnapshot = "snapshot"
	MessageError    = "error"
)

const maxMessageSize = 4096

// SessionHandler serves live ballot sessions
type SessionHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	limits   *ratelimit.Store
	sessions *session.Store
	upgrader websocket.Upgrader
}

func NewSessionHandler(db *sql.DB, cfg cliparse.Config, limits *ratelimit.Store, sessions *session.Store) *SessionHandler {
	h := &SessionHandler{db: db, cfg: cfg, limits: limits, sessions: sessions}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

type wsRequest struct {
	Type   string `json:"type"`
	Row    int    `json:"row"`
	Column int    `json:"column"`
}

type wsResponse struct {
	Type     string            `json:"type"`
	Snapshot *session.Snapshot `json:"snapshot,omitempty"`
	Message  string            `json:"message,omitempty"`
}

// CreateSession handles POST /polls/:slug/sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	pwo, ok := loadPublished(w, h.db, r.PathValue("slug"))
	if !ok {
		return
	}
	if pwo.Poll.Status != models.StatusOpen {
		middleware.ErrorResponse(w, http.StatusConflict, "Poll is closed")
		return
	}

	sp, err := sessionPoll(pwo)
	if err != nil {
		slog.Error("stored poll type is invalid", "poll_id", pwo.Poll.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Poll is misconfigured")
		return
	}

	ip := middleware.LimitKeyIP(r, h.cfg.TrustProxy)
	if !h.limits.AllowSession(ip, sp.ID) {
		slog.Warn("session rate limited", "poll_id", sp.ID, "ip_hash", auth.HashIP(ip, h.cfg.AdminKeySalt))
		middleware.ErrorResponse(w, http.StatusTooManyRequests, "Please wait before starting another ballot")
		return
	}

	sess, err := h.sessions.Create(sp)
	if err != nil {
		slog.Error("failed to create session", "poll_id", sp.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to start ballot")
		return
	}

	if deviceUUID := r.Header.Get(middleware.DeviceUUIDHeader); deviceUUID != "" {
		linkDevice(h.db, deviceUUID, sp.ID, models.RoleVoter)
	}

	snap, err := sess.Snapshot()
	if err != nil {
		sessionError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, snap)
}

// GetSession handles GET /sessions/:id
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}

	snap, err := sess.Snapshot()
	if err != nil {
		sessionError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, snap)
}

// Select handles POST /sessions/:id/select
func (h *SessionHandler) Select(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req models.SelectRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	snap, err := sess.Select(req.Row, req.Column)
	if err != nil {
		sessionError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, snap)
}

// Rebuild handles POST /sessions/:id/rebuild
func (h *SessionHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}

	snap, err := sess.Rebuild()
	if err != nil {
		sessionError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, snap)
}

// DeleteSession handles DELETE /sessions/:id
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.sessions.Delete(id); err != nil {
		sessionError(w, err)
		return
	}

	slog.Info("session deleted", "session_id", id)
	middleware.JSONResponse(w, http.StatusOK, models.ActionResponse{Action: "session_deleted"})
}

// Stream handles GET /sessions/:id/ws
// Each select or rebuild message is answered with one snapshot or error
func (h *SessionHandler) Stream(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		slog.Warn("websocket upgrade failed", "session_id", id, "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	snap, err := sess.Snapshot()
	if err != nil {
		sendError(conn, err.Error())
		return
	}
	sendSnapshot(conn, snap)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read failed", "session_id", id, "error", err)
			}
			return
		}

		var req wsRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			sendError(conn, "invalid message format")
			continue
		}

		// Re-fetch so activity keeps the session alive
		sess, err = h.sessions.Get(id)
		if err != nil {
			sendError(conn, err.Error())
			return
		}

		switch req.Type {
		case MessageSelect:
			snap, err = sess.Select(req.Row, req.Column)
		case MessageRebuild:
			snap, err = sess.Rebuild()
		default:
			sendError(conn, "unknown message type: "+req.Type)
			continue
		}

		if errors.Is(err, session.ErrClosed) {
			sendError(conn, err.Error())
			return
		}
		if err != nil {
			sendError(conn, err.Error())
			continue
		}
		sendSnapshot(conn, snap)
	}
}

func (h *SessionHandler) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := h.sessions.Get(r.PathValue("id"))
	if err != nil {
		sessionError(w, err)
		return nil, false
	}
	return sess, true
}

// checkOrigin accepts same-host requests and configured origins. With no
// configured origins every origin is accepted.
func (h *SessionHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.cfg.AllowedOrigins) == 0 {
		return true
	}
	if slices.Contains(h.cfg.AllowedOrigins, origin) {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && u.Host == r.Host
}

func sendSnapshot(conn *websocket.Conn, snap session.Snapshot) {
	if err := conn.WriteJSON(wsResponse{Type: MessageSnapshot, Snapshot: &snap}); err != nil {
		slog.Warn("websocket write failed", "error", err)
	}
}

func sendError(conn *websocket.Conn, message string) {
	if err := conn.WriteJSON(wsResponse{Type: MessageError, Message: message}); err != nil {
		slog.Warn("websocket write failed", "error", err)
	}
}

// sessionError maps session and ranking errors to HTTP responses
func sessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrClosed):
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
	case errors.Is(err, ranking.ErrOutOfRange):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("session operation failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Session error")
	}
}
