package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestNewSessionManager(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name       string
		sessionKey string
		secure     bool
		wantErr    bool
	}{
		{
			name:       "valid key dev mode",
			sessionKey: "this-is-a-32-character-long-key!",
			secure:     false,
			wantErr:    false,
		},
		{
			name:       "valid key prod mode",
			sessionKey: "this-is-a-32-character-long-key!",
			secure:     true,
			wantErr:    false,
		},
		{
			name:       "empty key",
			sessionKey: "",
			secure:     false,
			wantErr:    true,
		},
		{
			name:       "weak key dev mode",
			sessionKey: "short",
			secure:     false,
			wantErr:    false, // Warning but allowed in dev
		},
		{
			name:       "weak key prod mode",
			sessionKey: "short",
			secure:     true,
			wantErr:    true, // Error in prod
		},
		{
			name:       "default key prod mode",
			sessionKey: "dev-only-session-key-not-for-production",
			secure:     true,
			wantErr:    true, // Default keys not allowed in prod
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm, err := NewSessionManager(tt.sessionKey, "test-session", "", time.Hour, tt.secure, logger)

			if tt.wantErr {
				if err == nil {
					t.Error("NewSessionManager() expected error, got nil")
				}
			} else {
				if err != nil {
					t.Errorf("NewSessionManager() error = %v", err)
				}
				if sm == nil {
					t.Error("NewSessionManager() returned nil")
				}
			}
		})
	}
}

func TestSessionManager_SessionName(t *testing.T) {
	logger := zap.NewNop()

	sm, err := NewSessionManager("this-is-a-32-character-long-key!", "", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager() error = %v", err)
	}
	if sm.SessionName() != "shield360-session" {
		t.Errorf("SessionName() = %q, want default", sm.SessionName())
	}

	sm2, err := NewSessionManager("this-is-a-32-character-long-key!", "custom", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager() error = %v", err)
	}
	if sm2.SessionName() != "custom" {
		t.Errorf("SessionName() = %q, want %q", sm2.SessionName(), "custom")
	}
}

func TestCurrentContact(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)

	// Request without contact
	c, ok := CurrentContact(req)
	if ok {
		t.Error("CurrentContact() should return false for request without contact")
	}
	if c != nil {
		t.Error("CurrentContact() should return nil for request without contact")
	}

	// Request with contact
	testContact := &SessionContact{
		ID:    7,
		Name:  "Test Contact",
		Login: "test@example.com",
	}
	reqWithContact := WithTestContact(req, testContact)

	c, ok = CurrentContact(reqWithContact)
	if !ok {
		t.Error("CurrentContact() should return true for request with contact")
	}
	if c == nil {
		t.Fatal("CurrentContact() should not return nil for request with contact")
	}
	if c.ID != testContact.ID {
		t.Errorf("CurrentContact() ID = %d, want %d", c.ID, testContact.ID)
	}
	if c.Name != testContact.Name {
		t.Errorf("CurrentContact() Name = %q, want %q", c.Name, testContact.Name)
	}
}

func TestRequireSignedIn(t *testing.T) {
	logger := zap.NewNop()
	sm, _ := NewSessionManager("this-is-a-32-character-long-key!", "", "", time.Hour, false, logger)

	called := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	protected := sm.RequireSignedIn(handler)

	t.Run("unauthenticated HTML", func(t *testing.T) {
		called = false
		req := httptest.NewRequest("GET", "/panel", nil)
		req.Header.Set("Accept", "text/html")
		rec := httptest.NewRecorder()

		protected.ServeHTTP(rec, req)

		if called {
			t.Error("Handler should not be called for unauthenticated request")
		}
		if rec.Code != http.StatusSeeOther {
			t.Errorf("Status = %d, want %d (redirect)", rec.Code, http.StatusSeeOther)
		}
		location := rec.Header().Get("Location")
		if !strings.HasPrefix(location, "/login") {
			t.Errorf("Location = %q, should redirect to login", location)
		}
	})

	t.Run("unauthenticated API", func(t *testing.T) {
		called = false
		req := httptest.NewRequest("GET", "/api/alerts", nil)
		req.Header.Set("Accept", "application/json")
		rec := httptest.NewRecorder()

		protected.ServeHTTP(rec, req)

		if called {
			t.Error("Handler should not be called for unauthenticated request")
		}
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("authenticated", func(t *testing.T) {
		called = false
		req := httptest.NewRequest("GET", "/api/alerts", nil)
		req = WithTestContact(req, &SessionContact{ID: 1, Name: "Test"})
		rec := httptest.NewRecorder()

		protected.ServeHTTP(rec, req)

		if !called {
			t.Error("Handler should be called for authenticated request")
		}
		if rec.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", rec.Code, http.StatusOK)
		}
	})
}

type staticFetcher struct {
	contacts map[int64]*SessionContact
}

func (f *staticFetcher) FetchContact(_ context.Context, contactID int64) *SessionContact {
	return f.contacts[contactID]
}

func TestLoadSessionContact_RoundTrip(t *testing.T) {
	logger := zap.NewNop()
	sm, _ := NewSessionManager("this-is-a-32-character-long-key!", "", "", time.Hour, false, logger)
	sm.SetContactFetcher(&staticFetcher{contacts: map[int64]*SessionContact{
		3: {ID: 3, Name: "Maria", Login: "maria"},
	}})

	// Sign in and capture the cookie.
	loginReq := httptest.NewRequest("POST", "/api/login", nil)
	loginRec := httptest.NewRecorder()
	token, err := sm.CreateSession(loginRec, loginReq, 3, "Maria", "maria", "")
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if token == "" {
		t.Fatal("CreateSession() returned empty token")
	}
	cookies := loginRec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("CreateSession() set no cookie")
	}

	// Replay the cookie through the middleware.
	var got *SessionContact
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = CurrentContact(r)
	})
	req := httptest.NewRequest("GET", "/api/alerts", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	sm.LoadSessionContact(inner).ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("middleware did not inject contact")
	}
	if got.ID != 3 || got.Login != "maria" {
		t.Errorf("contact = %+v, want id 3 login maria", got)
	}
	if got.Token != token {
		t.Errorf("token = %q, want the one minted at login", got.Token)
	}
}

func TestLoadSessionContact_RemovedContactInvalidated(t *testing.T) {
	logger := zap.NewNop()
	sm, _ := NewSessionManager("this-is-a-32-character-long-key!", "", "", time.Hour, false, logger)
	sm.SetContactFetcher(&staticFetcher{contacts: map[int64]*SessionContact{}})

	loginReq := httptest.NewRequest("POST", "/api/login", nil)
	loginRec := httptest.NewRecorder()
	if _, err := sm.CreateSession(loginRec, loginReq, 9, "Gone", "gone", ""); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	var got *SessionContact
	var ok bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = CurrentContact(r)
	})
	req := httptest.NewRequest("GET", "/api/alerts", nil)
	for _, c := range loginRec.Result().Cookies() {
		req.AddCookie(c)
	}
	sm.LoadSessionContact(inner).ServeHTTP(httptest.NewRecorder(), req)

	if ok || got != nil {
		t.Error("removed contact should not be injected into context")
	}
}

func TestGenerateSessionToken(t *testing.T) {
	t1, err := GenerateSessionToken()
	if err != nil {
		t.Fatalf("GenerateSessionToken() error = %v", err)
	}
	t2, err := GenerateSessionToken()
	if err != nil {
		t.Fatalf("GenerateSessionToken() error = %v", err)
	}
	if t1 == t2 {
		t.Error("tokens should be unique")
	}
	if len(t1) < 40 {
		t.Errorf("token too short: %d chars", len(t1))
	}
}
