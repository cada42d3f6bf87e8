package domain

import (
	"strings"

	"SiteJSON_Frontend/internal/models"
)

// Normalize canonicalizes a user-entered string into a bare domain:
// trim, lowercase, strip scheme and leading www., truncate at the first
// path separator. The result must be non-empty and contain a dot.
//
// Normalize is total and idempotent; invalid input returns
// models.ErrInvalidDomain without any network activity.
func Normalize(input string) (string, error) {
	d := strings.ToLower(strings.TrimSpace(input))

	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "www.")

	if i := strings.IndexByte(d, '/'); i >= 0 {
		d = d[:i]
	}

	if d == "" || !strings.Contains(d, ".") {
		return "", models.ErrInvalidDomain
	}

	return d, nil
}
