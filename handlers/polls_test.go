// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-rank/middleware"
	"github.com/danielhkuo/quickly-rank/models"
	"github.com/danielhkuo/quickly-rank/ratelimit"
	"github.com/danielhkuo/quickly-rank/session"
	"github.com/danielhkuo/quickly-rank/testutil"
)

// newTestPollHandler returns a handler with rate limits disabled
func newTestPollHandler(t *testing.T) (*PollHandler, *session.Store) {
	t.Helper()
	conn := testutil.SetupTestDB(t)
	sessions := session.NewStore(time.Hour)
	return NewPollHandler(conn, testutil.GetTestConfig(), ratelimit.New(0, 0), sessions), sessions
}

func TestCreatePoll(t *testing.T) {
	handler, _ := newTestPollHandler(t)

	tests := []struct {
		name           string
		requestBody    any
		expectedStatus int
		checkResponse  func(t *testing.T, resp *models.CreatePollResponse)
	}{
		{
			name: "valid ranked poll",
			requestBody: models.CreatePollRequest{
				Title:       "Lunch",
				Description: "Where should we eat?",
				CreatorName: "Alice",
				PollType:    "RankedBorda",
				Options:     []string{"Pizza", "Sushi", "Tacos"},
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *models.CreatePollResponse) {
				if resp.PollID == "" {
					t.Error("Expected non-empty poll_id")
				}
				if resp.AdminKey == "" {
					t.Error("Expected non-empty admin_key")
				}

				var status, pollType string
				err := handler.db.QueryRow("SELECT status, poll_type FROM poll WHERE id = $1", resp.PollID).Scan(&status, &pollType)
				if err != nil {
					t.Fatalf("Failed to query poll: %v", err)
				}
				if status != models.StatusDraft {
					t.Errorf("Expected status 'draft', got '%s'", status)
				}
				if pollType != "RankedBorda" {
					t.Errorf("Expected poll_type 'RankedBorda', got '%s'", pollType)
				}

				var count int
				handler.db.QueryRow("SELECT COUNT(*) FROM poll_option WHERE poll_id = $1", resp.PollID).Scan(&count)
				if count != 3 {
					t.Errorf("Expected 3 options, got %d", count)
				}
			},
		},
		{
			name: "score poll ignores allow_unranked",
			requestBody: models.CreatePollRequest{
				Title:         "Rate the talks",
				CreatorName:   "Bob",
				PollType:      "RankedScore5",
				AllowUnranked: true,
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *models.CreatePollResponse) {
				var allowUnranked bool
				err := handler.db.QueryRow("SELECT allow_unranked FROM poll WHERE id = $1", resp.PollID).Scan(&allowUnranked)
				if err != nil {
					t.Fatalf("Failed to query poll: %v", err)
				}
				if allowUnranked {
					t.Error("Expected allow_unranked to be false for score polls")
				}
			},
		},
		{
			name: "missing title",
			requestBody: models.CreatePollRequest{
				CreatorName: "Alice",
				PollType:    "Single",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "title too long",
			requestBody: models.CreatePollRequest{
				Title:       strings.Repeat("x", MaxTitleLength+1),
				CreatorName: "Alice",
				PollType:    "Single",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "missing creator name",
			requestBody: models.CreatePollRequest{
				Title:    "Test Poll",
				PollType: "Single",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown poll type",
			requestBody: models.CreatePollRequest{
				Title:       "Test Poll",
				CreatorName: "Alice",
				PollType:    "RankedCondorcet",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "score levels too large",
			requestBody: models.CreatePollRequest{
				Title:       "Test Poll",
				CreatorName: "Alice",
				PollType:    "RankedScore4000000000",
				Options:     []string{"A", "B"},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "blank option label",
			requestBody: models.CreatePollRequest{
				Title:       "Test Poll",
				CreatorName: "Alice",
				PollType:    "Multiple",
				Options:     []string{"A", "  "},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid JSON",
			requestBody:    "invalid json",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body []byte
			var err error

			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatalf("Failed to marshal request body: %v", err)
				}
			}

			req := httptest.NewRequest("POST", "/polls", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.CreatePoll(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusCreated && tt.checkResponse != nil {
				var resp models.CreatePollResponse
				testutil.AssertJSON(t, w, &resp)
				tt.checkResponse(t, &resp)
			}
		})
	}
}

func TestCreatePollRateLimited(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler := NewPollHandler(conn, testutil.GetTestConfig(), ratelimit.New(time.Hour, 0), session.NewStore(time.Hour))

	body := models.CreatePollRequest{Title: "Again", CreatorName: "Alice", PollType: "Single"}

	first := httptest.NewRecorder()
	handler.CreatePoll(first, testutil.MakeRequest("POST", "/polls", body, nil))
	testutil.AssertStatus(t, first, http.StatusCreated)

	second := httptest.NewRecorder()
	handler.CreatePoll(second, testutil.MakeRequest("POST", "/polls", body, nil))
	testutil.AssertStatus(t, second, http.StatusTooManyRequests)

	// A different client is not affected
	req := testutil.MakeRequest("POST", "/polls", body, nil)
	req.RemoteAddr = "198.51.100.7:4000"
	third := httptest.NewRecorder()
	handler.CreatePoll(third, req)
	testutil.AssertStatus(t, third, http.StatusCreated)
}

func TestCreatePollRateLimitIgnoresForwardedHeaders(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler := NewPollHandler(conn, testutil.GetTestConfig(), ratelimit.New(10*time.Minute, 30*time.Second), session.NewStore(time.Hour))
	body := models.CreatePollRequest{Title: "Spoof", CreatorName: "Mallory", PollType: "Single"}

	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		req := testutil.MakeRequest("POST", "/polls", body, map[string]string{
			"X-Forwarded-For": "127.0.0.1",
			"X-Real-IP":       "10.0.0." + strconv.Itoa(i),
		})
		req.RemoteAddr = "203.0.113.9:5555"
		w := httptest.NewRecorder()
		handler.CreatePoll(w, req)
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusCreated {
		t.Fatalf("Expected first creation to succeed, got %d", codes[0])
	}
	for i, code := range codes[1:] {
		if code != http.StatusTooManyRequests {
			t.Errorf("Request %d: expected 429, got %d", i+2, code)
		}
	}
}

func TestCreatePollRateLimitTrustedProxy(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	cfg.TrustProxy = true
	handler := NewPollHandler(conn, cfg, ratelimit.New(time.Hour, 0), session.NewStore(time.Hour))
	body := models.CreatePollRequest{Title: "Proxied", CreatorName: "Alice", PollType: "Single"}

	send := func(clientIP string) int {
		req := testutil.MakeRequest("POST", "/polls", body, map[string]string{"X-Real-IP": clientIP})
		req.RemoteAddr = "127.0.0.1:9000"
		w := httptest.NewRecorder()
		handler.CreatePoll(w, req)
		return w.Code
	}

	if code := send("198.51.100.1"); code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", code)
	}
	if code := send("198.51.100.1"); code != http.StatusTooManyRequests {
		t.Errorf("Expected proxied client to be limited, got %d", code)
	}
	if code := send("198.51.100.2"); code != http.StatusCreated {
		t.Errorf("Expected another proxied client to pass, got %d", code)
	}
}

func TestCreatePollLinksDevice(t *testing.T) {
	handler, _ := newTestPollHandler(t)
	deviceUUID := "5f0c6a6e-7a52-4a8e-9b8e-0c3b2a1d9e11"

	req := testutil.MakeRequest("POST", "/polls", models.CreatePollRequest{
		Title:       "Mine",
		CreatorName: "Alice",
		PollType:    "RankedDowdall",
	}, map[string]string{middleware.DeviceUUIDHeader: deviceUUID})
	w := httptest.NewRecorder()
	handler.CreatePoll(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.CreatePollResponse
	testutil.AssertJSON(t, w, &resp)

	var role string
	err := handler.db.QueryRow(`
		SELECT dp.role FROM device_poll dp
		JOIN device d ON d.id = dp.device_id
		WHERE d.device_uuid = $1 AND dp.poll_id = $2
	`, deviceUUID, resp.PollID).Scan(&role)
	if err != nil {
		t.Fatalf("Failed to query device link: %v", err)
	}
	if role != models.RoleAdmin {
		t.Errorf("Expected role 'admin', got '%s'", role)
	}
}

func TestAddOption(t *testing.T) {
	handler, _ := newTestPollHandler(t)
	cfg := testutil.GetTestConfig()
	pollID, adminKey, _ := testutil.CreateTestPoll(t, handler.db, cfg, models.StatusDraft, "RankedBorda", false)

	tests := []struct {
		name           string
		pollID         string
		adminKey       string
		requestBody    any
		expectedStatus int
		expectPosition int
	}{
		{
			name:           "first option",
			pollID:         pollID,
			adminKey:       adminKey,
			requestBody:    models.AddOptionRequest{Label: "Option A"},
			expectedStatus: http.StatusCreated,
			expectPosition: 0,
		},
		{
			name:           "second option follows",
			pollID:         pollID,
			adminKey:       adminKey,
			requestBody:    models.AddOptionRequest{Label: "Option B"},
			expectedStatus: http.StatusCreated,
			expectPosition: 1,
		},
		{
			name:           "invalid admin key",
			pollID:         pollID,
			adminKey:       "invalid-key",
			requestBody:    models.AddOptionRequest{Label: "Option C"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "missing label",
			pollID:         pollID,
			adminKey:       adminKey,
			requestBody:    models.AddOptionRequest{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "label too long",
			pollID:         pollID,
			adminKey:       adminKey,
			requestBody:    models.AddOptionRequest{Label: strings.Repeat("y", MaxLabelLength+1)},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/polls/"+tt.pollID+"/options", tt.requestBody,
				map[string]string{middleware.AdminKeyHeader: tt.adminKey})
			req.SetPathValue("id", tt.pollID)
			w := httptest.NewRecorder()

			handler.AddOption(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusCreated {
				var resp models.AddOptionResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.OptionID == "" {
					t.Error("Expected non-empty option_id")
				}
				if resp.Position != tt.expectPosition {
					t.Errorf("Expected position %d, got %d", tt.expectPosition, resp.Position)
				}
			}
		})
	}
}

func TestAddOptionToNonDraftPoll(t *testing.T) {
	handler, _ := newTestPollHandler(t)
	pollID, adminKey, _ := testutil.CreateTestPoll(t, handler.db, testutil.GetTestConfig(), models.StatusOpen, "Single", false)

	req := testutil.MakeRequest("POST", "/polls/"+pollID+"/options", models.AddOptionRequest{Label: "Late"},
		map[string]string{middleware.AdminKeyHeader: adminKey})
	req.SetPathValue("id", pollID)
	w := httptest.NewRecorder()

	handler.AddOption(w, req)

	testutil.AssertStatus(t, w, http.StatusConflict)
}

func TestAddOptionRespectsMaxOptions(t *testing.T) {
	handler, _ := newTestPollHandler(t)
	pollID, adminKey, _ := testutil.CreateTestPoll(t, handler.db, testutil.GetTestConfig(), models.StatusDraft, "Multiple", false)
	for i := 0; i < MaxOptions; i++ {
		testutil.AddTestOption(t, handler.db, pollID, "Option "+strconv.Itoa(i))
	}

	req := testutil.MakeRequest("POST", "/polls/"+pollID+"/options", models.AddOptionRequest{Label: "One too many"},
		map[string]string{middleware.AdminKeyHeader: adminKey})
	req.SetPathValue("id", pollID)
	w := httptest.NewRecorder()

	handler.AddOption(w, req)

	testutil.AssertStatus(t, w, http.StatusConflict)
}

func TestPublishPoll(t *testing.T) {
	handler, _ := newTestPollHandler(t)
	cfg := testutil.GetTestConfig()

	ready, readyKey, _ := testutil.CreateTestPoll(t, handler.db, cfg, models.StatusDraft, "RankedBorda", false)
	testutil.AddTestOptions(t, handler.db, ready, "A", "B")

	lonely, lonelyKey, _ := testutil.CreateTestPoll(t, handler.db, cfg, models.StatusDraft, "RankedBorda", false)
	testutil.AddTestOptions(t, handler.db, lonely, "Only")

	open, openKey, _ := testutil.CreateTestPoll(t, handler.db, cfg, models.StatusOpen, "Single", false)

	tests := []struct {
		name           string
		pollID         string
		adminKey       string
		expectedStatus int
	}{
		{"valid publish", ready, readyKey, http.StatusOK},
		{"too few options", lonely, lonelyKey, http.StatusBadRequest},
		{"already open", open, openKey, http.StatusConflict},
		{"invalid admin key", ready, "nope", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/polls/"+tt.pollID+"/publish", nil,
				map[string]string{middleware.AdminKeyHeader: tt.adminKey})
			req.SetPathValue("id", tt.pollID)
			w := httptest.NewRecorder()

			handler.PublishPoll(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusOK {
				var resp models.PublishPollResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.ShareSlug == "" {
					t.Fatal("Expected non-empty share_slug")
				}
				if resp.VoteURL != cfg.BaseURL+"/vote/"+resp.ShareSlug {
					t.Errorf("Unexpected vote_url %q", resp.VoteURL)
				}
				if resp.ShareURL != cfg.BaseURL+"/polls/"+resp.ShareSlug {
					t.Errorf("Unexpected share_url %q", resp.ShareURL)
				}
			}
		})
	}
}

func TestGetPollAdmin(t *testing.T) {
	handler, _ := newTestPollHandler(t)
	pollID, adminKey, _ := testutil.CreateTestPoll(t, handler.db, testutil.GetTestConfig(), models.StatusDraft, "RankedDowdall", true)
	testutil.AddTestOptions(t, handler.db, pollID, "First", "Second")

	req := testutil.MakeRequest("GET", "/polls/"+pollID+"/admin", nil,
		map[string]string{middleware.AdminKeyHeader: adminKey})
	req.SetPathValue("id", pollID)
	w := httptest.NewRecorder()

	handler.GetPollAdmin(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.PollWithOptions
	testutil.AssertJSON(t, w, &resp)
	if resp.Poll.ID != pollID {
		t.Errorf("Expected poll ID %s, got %s", pollID, resp.Poll.ID)
	}
	if !resp.Poll.AllowUnranked {
		t.Error("Expected allow_unranked to be true")
	}
	if len(resp.Options) != 2 || resp.Options[0].Label != "First" || resp.Options[1].Position != 1 {
		t.Errorf("Unexpected options %+v", resp.Options)
	}
}

func TestClosePoll(t *testing.T) {
	handler, _ := newTestPollHandler(t)
	cfg := testutil.GetTestConfig()

	open, openKey, _ := testutil.CreateTestPoll(t, handler.db, cfg, models.StatusOpen, "RankedBorda", false)
	draft, draftKey, _ := testutil.CreateTestPoll(t, handler.db, cfg, models.StatusDraft, "RankedBorda", false)

	tests := []struct {
		name           string
		pollID         string
		adminKey       string
		expectedStatus int
	}{
		{"close open poll", open, openKey, http.StatusOK},
		{"close again", open, openKey, http.StatusConflict},
		{"close draft", draft, draftKey, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/polls/"+tt.pollID+"/close", nil,
				map[string]string{middleware.AdminKeyHeader: tt.adminKey})
			req.SetPathValue("id", tt.pollID)
			w := httptest.NewRecorder()

			handler.ClosePoll(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}

	var status string
	handler.db.QueryRow("SELECT status FROM poll WHERE id = $1", open).Scan(&status)
	if status != models.StatusClosed {
		t.Errorf("Expected status 'closed', got '%s'", status)
	}
}

func TestDeletePollEndsSessions(t *testing.T) {
	handler, sessions := newTestPollHandler(t)
	cfg := testutil.GetTestConfig()
	pollID, adminKey, slug := testutil.CreateTestPoll(t, handler.db, cfg, models.StatusOpen, "RankedBorda", false)
	testutil.AddTestOptions(t, handler.db, pollID, "A", "B")

	sess, err := sessions.Create(testSessionPoll(pollID, slug, []string{"A", "B"}))
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	req := testutil.MakeRequest("DELETE", "/polls/"+pollID, nil,
		map[string]string{middleware.AdminKeyHeader: adminKey})
	req.SetPathValue("id", pollID)
	w := httptest.NewRecorder()

	handler.DeletePoll(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	if _, err := sessions.Get(sess.ID()); err == nil {
		t.Error("Expected session to be gone after poll deletion")
	}

	var count int
	handler.db.QueryRow("SELECT COUNT(*) FROM poll_option WHERE poll_id = $1", pollID).Scan(&count)
	if count != 0 {
		t.Errorf("Expected options to cascade, %d remain", count)
	}

	// Deleting twice reports not found
	w = httptest.NewRecorder()
	handler.DeletePoll(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}
