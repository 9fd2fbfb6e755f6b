// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-rank/middleware"
	"github.com/danielhkuo/quickly-rank/models"
	"github.com/danielhkuo/quickly-rank/ratelimit"
	"github.com/danielhkuo/quickly-rank/session"
	"github.com/danielhkuo/quickly-rank/testutil"
)

type adminFixture struct {
	handler  *AdminHandler
	limits   *ratelimit.Store
	sessions *session.Store
}

func newAdminFixture(t *testing.T, token string) adminFixture {
	t.Helper()
	conn := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	cfg.ServerAdminToken = token
	limits := ratelimit.New(time.Hour, time.Hour)
	sessions := session.NewStore(time.Hour)
	return adminFixture{
		handler:  NewAdminHandler(conn, cfg, limits, sessions),
		limits:   limits,
		sessions: sessions,
	}
}

func adminRequest(method, path, token string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(middleware.ServerAdminTokenHeader, token)
	}
	return req
}

func TestAdminAuthorization(t *testing.T) {
	tests := []struct {
		name           string
		configured     string
		given          string
		expectedStatus int
	}{
		{"valid token", testutil.TestServerAdminToken, testutil.TestServerAdminToken, http.StatusOK},
		{"wrong token", testutil.TestServerAdminToken, "guess", http.StatusUnauthorized},
		{"missing token", testutil.TestServerAdminToken, "", http.StatusUnauthorized},
		{"admin disabled", "", "anything", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAdminFixture(t, tt.configured)
			w := httptest.NewRecorder()

			f.handler.ResetLimits(w, adminRequest("POST", "/admin/reset-limits", tt.given))

			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}
}

func TestAdminListPolls(t *testing.T) {
	f := newAdminFixture(t, testutil.TestServerAdminToken)
	cfg := testutil.GetTestConfig()

	pollID, _, _ := testutil.CreateTestPoll(t, f.handler.db, cfg, models.StatusOpen, "RankedBorda", false)
	testutil.AddTestOptions(t, f.handler.db, pollID, "A", "B", "C")
	testutil.CreateTestPoll(t, f.handler.db, cfg, models.StatusDraft, "Single", false)

	t.Run("json", func(t *testing.T) {
		req := adminRequest("GET", "/admin/polls", testutil.TestServerAdminToken)
		req.Header.Set("Accept", "application/json")
		w := httptest.NewRecorder()

		f.handler.ListPolls(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
		var polls []models.PollSummary
		testutil.AssertJSON(t, w, &polls)
		if len(polls) != 2 {
			t.Fatalf("Expected 2 polls, got %d", len(polls))
		}
		for _, p := range polls {
			if p.ID == pollID && p.OptionCount != 3 {
				t.Errorf("Expected 3 options on %s, got %d", pollID, p.OptionCount)
			}
		}
	})

	t.Run("html", func(t *testing.T) {
		w := httptest.NewRecorder()

		f.handler.ListPolls(w, adminRequest("GET", "/admin/polls", testutil.TestServerAdminToken))

		testutil.AssertStatus(t, w, http.StatusOK)
		body := w.Body.String()
		if !strings.Contains(body, "2 polls") {
			t.Error("Expected poll count in page")
		}
		if !strings.Contains(body, "Test Poll") {
			t.Error("Expected poll title in page")
		}
	})
}

func TestAdminDeletePoll(t *testing.T) {
	f := newAdminFixture(t, testutil.TestServerAdminToken)
	pollID, _, slug := testutil.CreateTestPoll(t, f.handler.db, testutil.GetTestConfig(), models.StatusOpen, "RankedBorda", false)
	testutil.AddTestOptions(t, f.handler.db, pollID, "A", "B")

	sess, err := f.sessions.Create(testSessionPoll(pollID, slug, []string{"A", "B"}))
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	req := adminRequest("DELETE", "/admin/polls/"+pollID, testutil.TestServerAdminToken)
	req.SetPathValue("id", pollID)
	w := httptest.NewRecorder()
	f.handler.DeletePoll(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	if _, err := sess.Snapshot(); err != session.ErrClosed {
		t.Errorf("Expected held session to be closed, got %v", err)
	}

	w = httptest.NewRecorder()
	f.handler.DeletePoll(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestAdminPurge(t *testing.T) {
	f := newAdminFixture(t, testutil.TestServerAdminToken)
	cfg := testutil.GetTestConfig()

	for range 3 {
		pollID, _, slug := testutil.CreateTestPoll(t, f.handler.db, cfg, models.StatusOpen, "RankedBorda", false)
		testutil.AddTestOptions(t, f.handler.db, pollID, "A", "B")
		if _, err := f.sessions.Create(testSessionPoll(pollID, slug, []string{"A", "B"})); err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
	}

	w := httptest.NewRecorder()
	f.handler.Purge(w, adminRequest("POST", "/admin/purge", testutil.TestServerAdminToken))

	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.PurgeResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.PollsDeleted != 3 {
		t.Errorf("Expected 3 polls deleted, got %d", resp.PollsDeleted)
	}
	if n := f.sessions.Len(); n != 0 {
		t.Errorf("Expected no sessions after purge, got %d", n)
	}

	var count int
	f.handler.db.QueryRow("SELECT COUNT(*) FROM poll_option").Scan(&count)
	if count != 0 {
		t.Errorf("Expected options to cascade, %d remain", count)
	}
}

func TestAdminResetLimits(t *testing.T) {
	f := newAdminFixture(t, testutil.TestServerAdminToken)
	ip := "203.0.113.9"

	if !f.limits.AllowCreate(ip) {
		t.Fatal("Expected first creation to be allowed")
	}
	if f.limits.AllowCreate(ip) {
		t.Fatal("Expected second creation to be limited")
	}

	w := httptest.NewRecorder()
	f.handler.ResetLimits(w, adminRequest("POST", "/admin/reset-limits", testutil.TestServerAdminToken))
	testutil.AssertStatus(t, w, http.StatusOK)

	if !f.limits.AllowCreate(ip) {
		t.Error("Expected creation to be allowed after reset")
	}
}
