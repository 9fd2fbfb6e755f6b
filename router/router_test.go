// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-rank/models"
	"github.com/danielhkuo/quickly-rank/ratelimit"
	"github.com/danielhkuo/quickly-rank/session"
	"github.com/danielhkuo/quickly-rank/testutil"
)

func newTestRouter(t *testing.T) (*http.ServeMux, func() (pollID, adminKey, slug string)) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg, ratelimit.New(time.Minute, time.Minute), session.NewStore(time.Minute))

	seed := func() (string, string, string) {
		pollID, adminKey, slug := testutil.CreateTestPoll(t, db, cfg, models.StatusOpen, "RankedBorda", false)
		testutil.AddTestOptions(t, db, pollID, "A", "B", "C")
		return pollID, adminKey, slug
	}
	return mux, seed
}

func TestHealthEndpoint(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	expected := "quickly-rank API v1"
	if w.Body.String() != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}
}

func TestRouteExistence(t *testing.T) {
	mux, _ := newTestRouter(t)

	// 400, 401, 404 are all valid responses depending on handler logic
	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/"},

		// Poll management
		{"POST", "/polls"},
		{"GET", "/polls/test-id/admin"},
		{"POST", "/polls/test-id/options"},
		{"POST", "/polls/test-id/publish"},
		{"POST", "/polls/test-id/close"},
		{"DELETE", "/polls/test-id"},

		// Forms
		{"GET", "/polls/test-slug"},
		{"GET", "/polls/test-slug/form"},
		{"GET", "/polls/test-slug/preview"},
		{"GET", "/vote/test-slug"},

		// Sessions
		{"POST", "/polls/test-slug/sessions"},
		{"GET", "/sessions/test-session"},
		{"POST", "/sessions/test-session/select"},
		{"POST", "/sessions/test-session/rebuild"},
		{"DELETE", "/sessions/test-session"},
		{"GET", "/sessions/test-session/ws"},

		// Admin
		{"GET", "/admin/polls"},
		{"DELETE", "/admin/polls/test-id"},
		{"POST", "/admin/purge"},
		{"POST", "/admin/reset-limits"},

		// Devices
		{"POST", "/devices/register"},
		{"GET", "/devices/me"},
		{"GET", "/devices/my-polls"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code == http.StatusMethodNotAllowed {
				t.Errorf("Route %s %s returned 405, expected route handler to exist", tc.method, tc.path)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	mux, _ := newTestRouter(t)

	testCases := []struct {
		method string
		path   string
	}{
		{"POST", "/health"},
		{"DELETE", "/polls/test-id/admin"},
		{"PUT", "/polls/test-id/options"},
		{"PUT", "/sessions/test-session/select"},
		{"DELETE", "/admin/purge"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected 405 for %s %s, got %d", tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestPathParameterExtraction(t *testing.T) {
	mux, seed := newTestRouter(t)
	pollID, adminKey, slug := seed()

	t.Run("poll ID extraction", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/polls/"+pollID+"/admin", nil)
		req.Header.Set("X-Admin-Key", adminKey)
		w := httptest.NewRecorder()

		mux.ServeHTTP(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
	})

	t.Run("share slug extraction", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/polls/"+slug+"/form", nil)
		w := httptest.NewRecorder()

		mux.ServeHTTP(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
	})
}

func TestSessionFlowThroughRouter(t *testing.T) {
	mux, seed := newTestRouter(t)
	_, _, slug := seed()

	// Loopback callers are never rate limited
	req := httptest.NewRequest("POST", "/polls/"+slug+"/sessions", nil)
	req.RemoteAddr = "127.0.0.1:5000"
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var snap session.Snapshot
	testutil.AssertJSON(t, w, &snap)

	req = testutil.MakeRequest("POST", "/sessions/"+snap.SessionID+"/select", models.SelectRequest{Row: 0, Column: 2}, nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	testutil.AssertJSON(t, w, &snap)
	if snap.Form != "0=2&1=1&2=0" {
		t.Errorf("expected swapped form, got %q", snap.Form)
	}
}
