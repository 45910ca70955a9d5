// Package normalize provides helper functions for consistent string
// normalization across the application. Use these helpers instead of
// scattered strings.ToLower and strings.TrimSpace calls to ensure
// consistent behavior.
package normalize

import "strings"

// Login normalizes a login identity by trimming whitespace and
// converting to lowercase. This is the canonical form used for
// storage. Use text.Fold() for the case-insensitive uniqueness key.
func Login(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name normalizes a display name by trimming whitespace.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Label normalizes an alert label (driver name, occurrence) by
// trimming whitespace. Empty labels are handled by the alert log's
// fallback placeholders, not here.
func Label(s string) string {
	return strings.TrimSpace(s)
}

// QueryParam normalizes a query parameter by trimming whitespace.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
