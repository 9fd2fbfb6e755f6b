// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/quickly-rank/cliparse"
	"github.com/danielhkuo/quickly-rank/handlers"
	"github.com/danielhkuo/quickly-rank/middleware"
	"github.com/danielhkuo/quickly-rank/ratelimit"
	"github.com/danielhkuo/quickly-rank/session"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, limits *ratelimit.Store, sessions *session.Store) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	pollHandler := handlers.NewPollHandler(db, cfg, limits, sessions)
	formHandler := handlers.NewFormHandler(db, cfg, sessions)
	sessionHandler := handlers.NewSessionHandler(db, cfg, limits, sessions)
	adminHandler := handlers.NewAdminHandler(db, cfg, limits, sessions)
	deviceHandler := handlers.NewDeviceHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Poll management (admin operations)
	mux.HandleFunc("POST /polls", middleware.WithLogging(pollHandler.CreatePoll))
	mux.HandleFunc("GET /polls/{id}/admin", middleware.WithLogging(pollHandler.GetPollAdmin))
	mux.HandleFunc("POST /polls/{id}/options", middleware.WithLogging(pollHandler.AddOption))
	mux.HandleFunc("POST /polls/{id}/publish", middleware.WithLogging(pollHandler.PublishPoll))
	mux.HandleFunc("POST /polls/{id}/close", middleware.WithLogging(pollHandler.ClosePoll))
	mux.HandleFunc("DELETE /polls/{id}", middleware.WithLogging(pollHandler.DeletePoll))

	// Forms (public)
	mux.HandleFunc("GET /polls/{slug}", middleware.WithLogging(formHandler.GetPoll))
	mux.HandleFunc("GET /polls/{slug}/form", middleware.WithLogging(formHandler.GetForm))
	mux.HandleFunc("GET /polls/{slug}/preview", middleware.WithLogging(formHandler.GetPreview))
	mux.HandleFunc("GET /vote/{slug}", middleware.WithLogging(formHandler.VotePage))

	// Ballot sessions (public)
	mux.HandleFunc("POST /polls/{slug}/sessions", middleware.WithLogging(sessionHandler.CreateSession))
	mux.HandleFunc("GET /sessions/{id}", middleware.WithLogging(sessionHandler.GetSession))
	mux.HandleFunc("POST /sessions/{id}/select", middleware.WithLogging(sessionHandler.Select))
	mux.HandleFunc("POST /sessions/{id}/rebuild", middleware.WithLogging(sessionHandler.Rebuild))
	mux.HandleFunc("DELETE /sessions/{id}", middleware.WithLogging(sessionHandler.DeleteSession))
	mux.HandleFunc("GET /sessions/{id}/ws", middleware.WithLogging(sessionHandler.Stream))

	// Server administration (requires X-Server-Admin-Token)
	mux.HandleFunc("GET /admin/polls", middleware.WithLogging(adminHandler.ListPolls))
	mux.HandleFunc("DELETE /admin/polls/{id}", middleware.WithLogging(adminHandler.DeletePoll))
	mux.HandleFunc("POST /admin/purge", middleware.WithLogging(adminHandler.Purge))
	mux.HandleFunc("POST /admin/reset-limits", middleware.WithLogging(adminHandler.ResetLimits))

	// Device management
	mux.HandleFunc("POST /devices/register", middleware.WithLogging(deviceHandler.Register))
	mux.HandleFunc("GET /devices/me", middleware.WithLogging(deviceHandler.GetMe))
	mux.HandleFunc("GET /devices/my-polls", middleware.WithLogging(deviceHandler.GetMyPolls))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quickly-rank API v1"))
	})

	return mux
}
