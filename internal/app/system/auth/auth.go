package auth

// Terminology: Contact Identifiers
//   - ContactID / contactID / contact_id: The incrementing integer that uniquely identifies a contact record
//   - Login / login: The human-readable string contacts type to sign in

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// Session error classification for logging and monitoring.
type sessionErrorType int

const (
	sessionErrUnknown sessionErrorType = iota
	sessionErrExpired                  // timestamp expired - normal
	sessionErrTampered                 // MAC invalid - potential attack
	sessionErrCorrupted                // decode/decrypt failed - corruption or key rotation
	sessionErrBackend                  // store/backend failure
)

const (
	isAuthKey       = "is_authenticated"
	contactIDKey    = "contact_id"
	contactName     = "contact_name"
	contactLogin    = "contact_login"
	sessionTokenKey = "session_token"
)

// SessionManager encapsulates session store and configuration.
// It provides middleware and utilities for session-based authentication.
// Use NewSessionManager to create an instance.
type SessionManager struct {
	store          *sessions.CookieStore
	logger         *zap.Logger
	name           string
	contactFetcher ContactFetcher
}

// NewSessionManager creates a new SessionManager with the provided configuration.
//
// Parameters:
//   - sessionKey: signing key for cookies (must be ≥32 chars in production)
//   - name: session cookie name (defaults to "shield360-session" if empty)
//   - domain: cookie domain (empty means current host)
//   - maxAge: session cookie lifetime (e.g., 24*time.Hour)
//   - secure: if true, cookies are Secure (for HTTPS production)
//   - logger: zap logger for session error logging
//
// Returns an error if sessionKey is empty or too weak for production mode.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, &SessionConfigError{Message: "session key is empty; provide ≥32 random chars"}
	}

	isWeak := len(sessionKey) < 32 || isDefaultKey(sessionKey)

	if secure {
		// In production mode, require a strong key - fail startup if weak
		if isWeak {
			return nil, &SessionConfigError{
				Message: "session key is too weak for production; provide ≥32 random chars (not the default dev key)",
			}
		}
	} else if isWeak {
		// In dev mode, warn but allow weak keys
		logger.Warn("session key is weak; 32+ random chars required in production",
			zap.Int("length", len(sessionKey)),
			zap.Bool("is_default", isDefaultKey(sessionKey)))
	}

	if name == "" {
		name = "shield360-session"
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}

	// SameSite=Lax allows cookies on same-site requests and top-level
	// navigations while blocking cross-site POST requests. The panic
	// endpoint itself is cookie-less, so Lax costs it nothing.
	opts.SameSite = http.SameSiteLaxMode

	store.Options = opts

	logger.Info("session manager initialized",
		zap.Bool("secure", secure),
		zap.String("name", name),
		zap.String("domain", domain))

	return &SessionManager{
		store:  store,
		logger: logger,
		name:   name,
	}, nil
}

// SessionConfigError is returned when session configuration is invalid.
type SessionConfigError struct {
	Message string
}

func (e *SessionConfigError) Error() string {
	return e.Message
}

// SessionName returns the configured session cookie name.
func (sm *SessionManager) SessionName() string {
	return sm.name
}

// Store returns the underlying session store.
func (sm *SessionManager) Store() *sessions.CookieStore {
	return sm.store
}

// GetSession retrieves the session for the request.
func (sm *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	return sm.store.Get(r, sm.name)
}

// SetContactFetcher sets the ContactFetcher used by LoadSessionContact to
// fetch fresh contact data on each request. This must be called after the
// registry has been built.
func (sm *SessionManager) SetContactFetcher(cf ContactFetcher) {
	sm.contactFetcher = cf
}

// ContactFetcher fetches fresh contact data from the registry.
// Implementations should return nil if the contact no longer exists,
// which invalidates the session.
type ContactFetcher interface {
	// FetchContact retrieves a contact by id. Returns nil if the contact
	// has been removed or any other condition that should invalidate the
	// session.
	FetchContact(ctx context.Context, contactID int64) *SessionContact
}

// SessionContact represents the authenticated contact in the request
// context. This data is fetched fresh from the registry on each request so
// removed contacts lose access immediately.
type SessionContact struct {
	ID    int64
	Name  string
	Login string
	Token string // Session token for session management
}

// SessionToken returns the session token for this contact's current session.
func (c *SessionContact) SessionToken() string {
	return c.Token
}

type ctxKey string

const currentContactKey ctxKey = "currentContact"

// CurrentContact returns the contact & "found?" flag from the request context.
func CurrentContact(r *http.Request) (*SessionContact, bool) {
	c, ok := r.Context().Value(currentContactKey).(*SessionContact)
	return c, ok
}

// LoadSessionContact returns middleware that injects the contact into
// context if signed in. If a ContactFetcher is configured, fresh contact
// data is fetched from the registry on each request so removals take effect
// immediately.
func (sm *SessionManager) LoadSessionContact(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sm.store.Get(r, sm.name)
		if err != nil {
			// Classify the session error for appropriate logging.
			errType, errCategory := classifySessionError(err)
			switch errType {
			case sessionErrExpired:
				sm.logger.Debug("session expired, starting fresh session",
					zap.String("category", errCategory),
					zap.String("path", r.URL.Path))
			case sessionErrTampered:
				sm.logger.Warn("session MAC validation failed (possible tampering)",
					zap.String("category", errCategory),
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.String("user_agent", r.UserAgent()))
			case sessionErrCorrupted:
				sm.logger.Info("session decode failed, starting fresh session",
					zap.String("category", errCategory),
					zap.String("path", r.URL.Path))
			case sessionErrBackend:
				sm.logger.Error("session store error, starting fresh session",
					zap.Error(err),
					zap.String("path", r.URL.Path))
			default:
				sm.logger.Warn("session error, starting fresh session",
					zap.Error(err),
					zap.String("category", errCategory),
					zap.String("path", r.URL.Path))
			}
		}

		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			contactID := getInt64(sess, contactIDKey)
			sessionToken := getString(sess, sessionTokenKey)

			// If we have a ContactFetcher, get fresh data from the registry
			if sm.contactFetcher != nil && contactID != 0 {
				c := sm.contactFetcher.FetchContact(r.Context(), contactID)
				if c != nil {
					// Contact still registered - inject session token and context
					c.Token = sessionToken
					r = withContact(r, c)
				} else {
					// Contact removed - clear session
					sm.logger.Info("session invalidated: contact no longer registered",
						zap.Int64("contact_id", contactID),
						zap.String("path", r.URL.Path))
					sess.Values[isAuthKey] = false
					delete(sess.Values, contactIDKey)
					_ = sess.Save(r, w) // Best effort to clear
				}
			} else if contactID != 0 {
				// Fallback: no ContactFetcher configured, use session data
				c := &SessionContact{
					ID:    contactID,
					Name:  getString(sess, contactName),
					Login: getString(sess, contactLogin),
					Token: sessionToken,
				}
				r = withContact(r, c)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn returns middleware that ensures there is a contact in context.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentContact(r); ok {
			next.ServeHTTP(w, r)
			return
		}

		// Browser/HTML: go to login and preserve return
		if wantsHTML(r) {
			ret := url.QueryEscape(currentURI(r))
			http.Redirect(w, r, "/login?return="+ret, http.StatusSeeOther)
			return
		}

		// Non-HTML (API) callers: plain 401
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})
}

func withContact(r *http.Request, c *SessionContact) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentContactKey, c))
}

// WithTestContact injects a SessionContact into the request context for testing.
func WithTestContact(r *http.Request, c *SessionContact) *http.Request {
	return withContact(r, c)
}

// getString safely extracts a string from a session value.
func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

// getInt64 safely extracts an int64 from a session value. Gob round-trips
// preserve int64, but JSON-serialized stores hand back float64 or string.
func getInt64(s *sessions.Session, key string) int64 {
	switch v := s.Values[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	}
	return 0
}

func wantsHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html")
}

func currentURI(r *http.Request) string {
	u := *r.URL
	return u.RequestURI()
}

// isDefaultKey checks if the session key appears to be a default/placeholder value.
func isDefaultKey(key string) bool {
	lower := strings.ToLower(key)
	patterns := []string{
		"dev-only",
		"change-me",
		"placeholder",
		"default",
		"example",
		"insecure",
		"test-key",
		"secret123",
		"password",
	}
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// classifySessionError categorizes a session/cookie error for appropriate logging.
func classifySessionError(err error) (sessionErrorType, string) {
	if err == nil {
		return sessionErrUnknown, "none"
	}

	errStr := strings.ToLower(err.Error())

	if scErr, ok := err.(securecookie.Error); ok {
		if !scErr.IsDecode() {
			return sessionErrBackend, "backend"
		}

		switch {
		case strings.Contains(errStr, "expired timestamp"):
			return sessionErrExpired, "expired"
		case strings.Contains(errStr, "mac") || strings.Contains(errStr, "hash"):
			return sessionErrTampered, "mac_invalid"
		case strings.Contains(errStr, "decrypt"):
			return sessionErrCorrupted, "decrypt_failed"
		case strings.Contains(errStr, "base64") || strings.Contains(errStr, "decode"):
			return sessionErrCorrupted, "decode_failed"
		default:
			return sessionErrCorrupted, "decode_other"
		}
	}

	return sessionErrBackend, "unknown"
}

// CreateSession establishes a session for the contact.
// If token is empty, a new token will be generated.
func (sm *SessionManager) CreateSession(w http.ResponseWriter, r *http.Request, contactID int64, name, login, token string) (string, error) {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		// Create new session if can't get existing
		sess, _ = sm.store.New(r, sm.name)
	}

	// Use provided token or generate a new one
	if token == "" {
		token, err = GenerateSessionToken()
		if err != nil {
			return "", err
		}
	}

	sess.Values[isAuthKey] = true
	sess.Values[contactIDKey] = contactID
	sess.Values[contactName] = name
	sess.Values[contactLogin] = login
	sess.Values[sessionTokenKey] = token

	if err := sess.Save(r, w); err != nil {
		return "", err
	}
	return token, nil
}

// GetSessionToken returns the session token from the current request.
func (sm *SessionManager) GetSessionToken(r *http.Request) string {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		return ""
	}
	return getString(sess, sessionTokenKey)
}

// GenerateSessionToken generates a random URL-safe token for session tracking.
func GenerateSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// DestroySession terminates the contact's session.
func (sm *SessionManager) DestroySession(w http.ResponseWriter, r *http.Request) {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		return
	}

	sess.Values[isAuthKey] = false
	delete(sess.Values, contactIDKey)
	delete(sess.Values, contactName)
	delete(sess.Values, contactLogin)
	delete(sess.Values, sessionTokenKey)

	sess.Options.MaxAge = -1
	_ = sess.Save(r, w)
}
