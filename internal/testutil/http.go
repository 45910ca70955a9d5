package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/drivershield/shield360/internal/app/system/auth"
)

// TestContact represents contact data for testing HTTP handlers.
type TestContact struct {
	ID    int64
	Name  string
	Login string
}

// SignedInContact returns a TestContact for gated-route tests.
func SignedInContact() TestContact {
	return TestContact{
		ID:    1,
		Name:  "Test Contact",
		Login: "contact@test.com",
	}
}

// WithContact adds a contact to the request context for testing
// authenticated handlers. This bypasses the session middleware and injects
// the contact directly.
func WithContact(r *http.Request, contact TestContact) *http.Request {
	sessionContact := &auth.SessionContact{
		ID:    contact.ID,
		Name:  contact.Name,
		Login: contact.Login,
	}
	return auth.WithTestContact(r, sessionContact)
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewJSONRequest creates an HTTP request carrying a JSON body.
func NewJSONRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewAuthenticatedRequest creates an HTTP request with a contact in context.
func NewAuthenticatedRequest(method, target string, contact TestContact) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return WithContact(req, contact)
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d", r.Code, expected)
	}
}

// AssertRedirect checks for a redirect to the expected location.
func (r *ResponseRecorder) AssertRedirect(t interface{ Errorf(string, ...any) }, expectedLocation string) {
	if r.Code != http.StatusSeeOther && r.Code != http.StatusFound && r.Code != http.StatusMovedPermanently {
		t.Errorf("expected redirect status, got %d", r.Code)
	}
	location := r.Header().Get("Location")
	if location != expectedLocation {
		t.Errorf("redirect location: got %q, want %q", location, expectedLocation)
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	body := r.Body.String()
	if !strings.Contains(body, expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}
