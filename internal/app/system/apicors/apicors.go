// Package apicors provides permissive CORS middleware for the JSON API
// endpoints that do not rely on cookies.
//
// The panic endpoint in particular may be called from an installed PWA
// or a page served from another origin, and it must never be blocked by
// a preflight failure.
package apicors

import (
	"net/http"
)

// Middleware returns CORS middleware for cookie-less API endpoints.
//
// It allows any origin, does not allow credentials, allows common API
// methods and headers, and answers preflight OPTIONS requests.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Accept")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
