package models

import (
	"time"

	"github.com/danielhkuo/quickly-rank/ranking"
)

// Poll status constants
const (
	StatusDraft  = "draft"
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Device roles
const (
	RoleVoter = "voter"
	RoleAdmin = "admin"
)

// Platforms
const (
	PlatformIOS     = "ios"
	PlatformMacOS   = "macos"
	PlatformAndroid = "android"
	PlatformWeb     = "web"
)

// Request types

type CreatePollRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatorName string `json:"creator_name"`
	// Single, Multiple, RankedBorda, RankedDowdall, RankedScore<N>
	PollType      string   `json:"poll_type"`
	AllowUnranked bool     `json:"allow_unranked"`
	Options       []string `json:"options,omitempty"`
}

type AddOptionRequest struct {
	Label string `json:"label"`
}

type SelectRequest struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

type RegisterDeviceRequest struct {
	Platform string `json:"platform"`
}

// Response types

type CreatePollResponse struct {
	PollID   string `json:"poll_id"`
	AdminKey string `json:"admin_key"`
}

type AddOptionResponse struct {
	OptionID string `json:"option_id"`
	Position int    `json:"position"`
}

type PublishPollResponse struct {
	ShareSlug string `json:"share_slug"`
	ShareURL  string `json:"share_url"`
	VoteURL   string `json:"vote_url"`
}

type ClosePollResponse struct {
	ClosedAt time.Time `json:"closed_at"`
}

// FormResponse is a poll's initial form. Exactly one of Grid and List is set.
type FormResponse struct {
	PollType string        `json:"poll_type"`
	Sentinel int           `json:"sentinel"`
	Grid     *ranking.Grid `json:"grid,omitempty"`
	List     *ranking.List `json:"list,omitempty"`
}

type PollPreviewResponse struct {
	Title          string `json:"title"`
	Status         string `json:"status"`
	PollType       string `json:"poll_type"`
	OptionCount    int    `json:"option_count"`
	ActiveSessions int    `json:"active_sessions"`
}

type RegisterDeviceResponse struct {
	DeviceID string `json:"device_id"`
	IsNew    bool   `json:"is_new"`
}

type GetMyPollsResponse struct {
	Polls []DevicePollSummary `json:"polls"`
}

type PurgeResponse struct {
	PollsDeleted int64 `json:"polls_deleted"`
}

type ActionResponse struct {
	Action string `json:"action"`
}

// Domain types

type Poll struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	CreatorName   string     `json:"creator_name"`
	PollType      string     `json:"poll_type"`
	AllowUnranked bool       `json:"allow_unranked"`
	Status        string     `json:"status"`
	ShareSlug     *string    `json:"share_slug,omitempty"`
	ClosedAt      *time.Time `json:"closed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type Option struct {
	ID       string `json:"id"`
	PollID   string `json:"poll_id"`
	Position int    `json:"position"`
	Label    string `json:"label"`
}

type PollWithOptions struct {
	Poll    Poll     `json:"poll"`
	Options []Option `json:"options"`
}

// PollSummary is one row of the server admin poll list
type PollSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	PollType    string    `json:"poll_type"`
	Status      string    `json:"status"`
	ShareSlug   *string   `json:"share_slug,omitempty"`
	OptionCount int       `json:"option_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type DeviceInfo struct {
	ID         string    `json:"id"`
	Platform   string    `json:"platform"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

type DevicePollSummary struct {
	PollID    string    `json:"poll_id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	ShareSlug *string   `json:"share_slug,omitempty"`
	Role      string    `json:"role"`
	LinkedAt  time.Time `json:"linked_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
