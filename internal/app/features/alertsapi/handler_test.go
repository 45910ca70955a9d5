package alertsapi

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/drivershield/shield360/internal/app/store/alerts"
	"github.com/drivershield/shield360/internal/app/system/auth"
	"github.com/drivershield/shield360/internal/app/system/persist"
	"github.com/drivershield/shield360/internal/testutil"
)

func newTestHandler(t *testing.T) (*Handler, *alerts.Log) {
	t.Helper()
	file, err := persist.NewFile(filepath.Join(t.TempDir(), "alerts.json"), zap.NewNop())
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}
	log, err := alerts.NewLog(file, 500, zap.NewNop())
	if err != nil {
		t.Fatalf("NewLog() error = %v", err)
	}
	return NewHandler(log, nil, zap.NewNop()), log
}

func seedAlerts(t *testing.T, log *alerts.Log, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if _, err := log.Append(alerts.Incoming{Driver: "seed"}); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
}

func TestListHandler_NewestFirst(t *testing.T) {
	h, log := newTestHandler(t)
	seedAlerts(t, log, 3)

	req := testutil.NewAuthenticatedRequest("GET", "/api/alerts", testutil.SignedInContact())
	rec := testutil.NewRecorder()

	h.ListHandler(rec, req)

	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		Alerts []alerts.Alert `json:"alerts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response decode error = %v", err)
	}
	if len(resp.Alerts) != 3 {
		t.Fatalf("alerts = %d, want 3", len(resp.Alerts))
	}
	if resp.Alerts[0].ID != 3 || resp.Alerts[2].ID != 1 {
		t.Errorf("order = %d..%d, want newest first", resp.Alerts[0].ID, resp.Alerts[2].ID)
	}
}

func TestListHandler_LimitQuery(t *testing.T) {
	h, log := newTestHandler(t)
	seedAlerts(t, log, 5)

	tests := []struct {
		query string
		want  int
	}{
		{"limit=2", 2},
		{"limit=0", 5},
		{"limit=-3", 5},
		{"limit=abc", 5},
		{"", 5},
	}
	for _, tt := range tests {
		req := testutil.NewAuthenticatedRequest("GET", "/api/alerts?"+tt.query, testutil.SignedInContact())
		rec := testutil.NewRecorder()

		h.ListHandler(rec, req)

		var resp struct {
			Alerts []alerts.Alert `json:"alerts"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("response decode error = %v", err)
		}
		if len(resp.Alerts) != tt.want {
			t.Errorf("query %q: alerts = %d, want %d", tt.query, len(resp.Alerts), tt.want)
		}
	}
}

func TestListHandler_EmptyFeedIsEmptyArray(t *testing.T) {
	h, _ := newTestHandler(t)

	req := testutil.NewAuthenticatedRequest("GET", "/api/alerts", testutil.SignedInContact())
	rec := testutil.NewRecorder()

	h.ListHandler(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"alerts":[]`)
}

func TestClearHandler(t *testing.T) {
	h, log := newTestHandler(t)
	seedAlerts(t, log, 4)

	req := testutil.NewAuthenticatedRequest("POST", "/api/alerts/clear", testutil.SignedInContact())
	rec := testutil.NewRecorder()

	h.ClearHandler(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"ok":true`)
	if log.Count() != 0 {
		t.Errorf("Count() = %d, want 0", log.Count())
	}
}

func TestRoutes_RequireSession(t *testing.T) {
	h, _ := newTestHandler(t)
	sm, err := auth.NewSessionManager("this-is-a-32-character-long-key!", "", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager() error = %v", err)
	}
	router := Routes(h, sm)

	req := testutil.NewRequest("GET", "/")
	req.Header.Set("Accept", "application/json")
	rec := testutil.NewRecorder()

	router.ServeHTTP(rec, req)

	rec.AssertStatus(t, http.StatusUnauthorized)
}
