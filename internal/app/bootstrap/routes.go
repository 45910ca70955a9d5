// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"

	alertsapifeature "github.com/drivershield/shield360/internal/app/features/alertsapi"
	contactsapifeature "github.com/drivershield/shield360/internal/app/features/contactsapi"
	healthfeature "github.com/drivershield/shield360/internal/app/features/health"
	panelfeature "github.com/drivershield/shield360/internal/app/features/panel"
	panicapifeature "github.com/drivershield/shield360/internal/app/features/panicapi"
	sessionapifeature "github.com/drivershield/shield360/internal/app/features/sessionapi"
	"github.com/drivershield/shield360/internal/app/store/contacts"
	"github.com/drivershield/shield360/internal/app/system/auditlog"
	"github.com/drivershield/shield360/internal/app/system/auth"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, store setup, and Startup hooks
// have completed.
//
// Route authentication model:
//   - /api/panic: open, CSRF-exempt, permissive CORS. The button must
//     fire from any phone without a session.
//   - /api/contacts list/register: open (enrollment page needs no
//     session); removal is gated.
//   - /api/alerts, /panel: session-gated.
//   - /api/login, /api/logout: open, CSRF-exempt, JSON only.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Set up the ContactFetcher so LoadSessionContact fetches fresh
	// contact data on each request. A removed contact loses access on the
	// very next request.
	sessionMgr.SetContactFetcher(newContactFetcher(deps.Contacts))

	// Audit logger for security-relevant events.
	auditLogger := auditlog.New(logger, appCfg.AuditLog)

	r := chi.NewRouter()

	// ── Global middleware ────────────────────────────────────────────────

	// Request timeout middleware: prevents requests from hanging indefinitely.
	r.Use(chimw.Timeout(30 * time.Second))

	// CORS middleware: must be early in the chain to handle preflight requests.
	r.Use(middleware.CORSFromConfig(coreCfg))

	// Security headers middleware: adds X-Frame-Options, X-Content-Type-Options, etc.
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// Session middleware: loads SessionContact into context if signed in.
	// Cookie-less API callers simply have no session, which is fine.
	r.Use(sessionMgr.LoadSessionContact)

	r.Use(newCSRFMiddleware(appCfg, secure, logger))

	// ── Routes ───────────────────────────────────────────────────────────

	// Panic button: open, works from any origin.
	panicHandler := panicapifeature.NewHandler(deps.Alerts, auditLogger, logger)
	r.Mount("/api/panic", panicapifeature.Routes(panicHandler))

	// Alert feed: signed-in contacts only.
	alertsHandler := alertsapifeature.NewHandler(deps.Alerts, auditLogger, logger)
	r.Mount("/api/alerts", alertsapifeature.Routes(alertsHandler, sessionMgr))

	// Contact registry: list/register open, removal gated.
	contactsHandler := contactsapifeature.NewHandler(deps.Contacts, auditLogger, logger)
	r.Mount("/api/contacts", contactsapifeature.Routes(contactsHandler, sessionMgr))

	// Login/logout.
	sessionHandler := sessionapifeature.NewHandler(deps.Contacts, sessionMgr, auditLogger, logger)
	r.Mount("/api", sessionapifeature.Routes(sessionHandler))

	// Health check endpoints for load balancers and orchestrators.
	healthHandler := healthfeature.NewHandler(deps.DataDir, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	// Alert panel behind the session gate.
	panelHandler := panelfeature.NewHandler(sessionMgr, logger)
	r.Mount("/panel", panelfeature.Routes(panelHandler))

	// Static pages (button, enrollment, login, panel) with pre-compressed
	// file support (gzip/brotli).
	r.Handle("/static/*", fileserver.Handler("/static", appCfg.StaticDir))
	r.Get("/", servePage(appCfg.StaticDir, "index.html"))
	r.Get("/login", servePage(appCfg.StaticDir, "login.html"))

	return r, nil
}

// newCSRFMiddleware builds CSRF protection with a path-based exemption for
// the JSON API. The panic button and the enrollment page post without a
// CSRF token; their endpoints are either open by design or guarded by the
// session cookie's SameSite=Lax. Browser routes stay protected.
func newCSRFMiddleware(appCfg AppConfig, secure bool, logger *zap.Logger) func(http.Handler) http.Handler {
	csrfOpts := []csrf.Option{
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.CookieName("shield360_csrf"),
		csrf.FieldName("csrf_token"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			logger.Warn("CSRF validation failed",
				zap.String("path", req.URL.Path),
				zap.String("method", req.Method),
				zap.String("reason", csrf.FailureReason(req).Error()),
			)
			http.Error(w, "CSRF token invalid or missing", http.StatusForbidden)
		})),
	}
	// In dev mode, trust localhost origins for CSRF validation.
	if !secure {
		csrfOpts = append(csrfOpts, csrf.TrustedOrigins([]string{
			"localhost:8080",
			"localhost:3000",
			"127.0.0.1:8080",
			"127.0.0.1:3000",
		}))
	}
	if appCfg.SessionDomain != "" {
		csrfOpts = append(csrfOpts, csrf.Domain(appCfg.SessionDomain))
	}
	csrfProtect := csrf.Protect([]byte(appCfg.CSRFKey), csrfOpts...)

	return func(next http.Handler) http.Handler {
		csrfHandler := csrfProtect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if strings.HasPrefix(req.URL.Path, "/api/") {
				next.ServeHTTP(w, req)
				return
			}
			csrfHandler.ServeHTTP(w, req)
		})
	}
}

// servePage serves a single static page from the assets directory.
func servePage(dir, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, dir+"/"+name)
	}
}

// registryFetcher adapts the contact registry to the auth.ContactFetcher
// interface.
type registryFetcher struct {
	registry *contacts.Registry
}

func newContactFetcher(registry *contacts.Registry) auth.ContactFetcher {
	return &registryFetcher{registry: registry}
}

func (f *registryFetcher) FetchContact(_ context.Context, contactID int64) *auth.SessionContact {
	c, ok := f.registry.GetByID(contactID)
	if !ok {
		return nil
	}
	return &auth.SessionContact{ID: c.ID, Name: c.Name, Login: c.Login}
}
