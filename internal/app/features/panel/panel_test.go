package panel

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/drivershield/shield360/internal/app/system/auth"
	"github.com/drivershield/shield360/internal/testutil"
)

func newTestRoutes(t *testing.T) http.Handler {
	t.Helper()
	sm, err := auth.NewSessionManager("this-is-a-32-character-long-key!", "", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager() error = %v", err)
	}
	return Routes(NewHandler(sm, zap.NewNop()))
}

func TestPanel_SignedInRedirectsToPage(t *testing.T) {
	routes := newTestRoutes(t)

	req := testutil.NewAuthenticatedRequest("GET", "/panel", testutil.SignedInContact())
	rec := testutil.NewRecorder()

	routes.ServeHTTP(rec, req)

	rec.AssertRedirect(t, "/static/panel.html")
}

func TestPanel_BrowserWithoutSessionGoesToLogin(t *testing.T) {
	routes := newTestRoutes(t)

	req := testutil.NewRequest("GET", "/panel")
	req.Header.Set("Accept", "text/html")
	rec := testutil.NewRecorder()

	routes.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "/login") {
		t.Errorf("Location = %q, want /login redirect", loc)
	}
}

func TestPanel_APICallerGets401(t *testing.T) {
	routes := newTestRoutes(t)

	req := testutil.NewRequest("GET", "/panel")
	req.Header.Set("Accept", "application/json")
	rec := testutil.NewRecorder()

	routes.ServeHTTP(rec, req)

	rec.AssertStatus(t, http.StatusUnauthorized)
}
