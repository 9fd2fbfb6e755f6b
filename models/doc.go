// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

  - CreatePollRequest: title, description, creator_name, poll_type, allow_unranked, options
  - AddOptionRequest: label
  - SelectRequest: row, column
  - RegisterDeviceRequest: platform

# Response Types

  - CreatePollResponse: poll_id, admin_key
  - AddOptionResponse: option_id, position
  - PublishPollResponse: share_slug, share_url, vote_url
  - ClosePollResponse: closed_at
  - FormResponse: poll_type, sentinel, grid or list
  - PollPreviewResponse: title, status, option count, active sessions
  - PurgeResponse, ActionResponse, ErrorResponse

# Domain Types

  - Poll: poll metadata and lifecycle state
  - Option: ordered option with label
  - PollSummary: row in the server admin listing
  - DeviceInfo, DevicePollSummary: device tracking

# Constants

Status values:

	StatusDraft  = "draft"
	StatusOpen   = "open"
	StatusClosed = "closed"

Device roles:

	RoleVoter = "voter"
	RoleAdmin = "admin"

Platforms:

	PlatformIOS, PlatformMacOS, PlatformAndroid, PlatformWeb
*/
package models
