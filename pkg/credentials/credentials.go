// Package credentials reads the OAuth credentials file written by the Claude
// desktop and CLI tools and answers questions about the token it holds.
//
// The file is a JSON object whose "claudeAiOauth" member carries the token:
//
//	{"claudeAiOauth": {"accessToken": "...", "expiresAt": 1767225600000, ...}}
//
// expiresAt is a Unix timestamp in milliseconds. A token is valid while the
// current time in milliseconds is strictly less than expiresAt.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"
)

var (
	// ErrNotFound is returned when the credentials file does not exist.
	ErrNotFound = errors.New("credentials: file not found")
	// ErrNoOAuth is returned when the file has no claudeAiOauth object.
	ErrNoOAuth = errors.New("credentials: no claudeAiOauth entry")
)

// Credentials is the claudeAiOauth record.
type Credentials struct {
	AccessToken      string   `json:"accessToken"`
	RefreshToken     string   `json:"refreshToken,omitempty"`
	ExpiresAt        int64    `json:"expiresAt"`
	Scopes           []string `json:"scopes,omitempty"`
	SubscriptionType string   `json:"subscriptionType,omitempty"`
	RateLimitTier    string   `json:"rateLimitTier,omitempty"`
}

type file struct {
	ClaudeAiOauth *Credentials `json:"claudeAiOauth"`
}

// Load reads and parses the credentials file at path.
func Load(path string) (Credentials, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from trusted config
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Credentials{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}

		return Credentials{}, fmt.Errorf("credentials: read %s: %w", path, err)
	}

	return Parse(data)
}

// Parse decodes a credentials document.
func Parse(data []byte) (Credentials, error) {
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return Credentials{}, fmt.Errorf("credentials: parse: %w", err)
	}

	if f.ClaudeAiOauth == nil {
		return Credentials{}, ErrNoOAuth
	}

	return *f.ClaudeAiOauth, nil
}

// Valid reports whether the credentials are unexpired at now. It does not
// look at AccessToken.
func (c Credentials) Valid(now time.Time) bool {
	return now.UnixMilli() < c.ExpiresAt
}

// ExpiresAtTime returns the expiry as a time.Time.
func (c Credentials) ExpiresAtTime() time.Time {
	return time.UnixMilli(c.ExpiresAt)
}

// Remaining returns the time left before expiry, or zero once expired.
func (c Credentials) Remaining(now time.Time) time.Duration {
	d := c.ExpiresAtTime().Sub(now)
	if d < 0 {
		return 0
	}

	return d
}

// DaysRemaining returns the whole days left before expiry.
func (c Credentials) DaysRemaining(now time.Time) int {
	return int(c.Remaining(now) / (24 * time.Hour))
}

// TokenPrefix returns the first n characters of the access token followed
// by an ellipsis, for display.
func (c Credentials) TokenPrefix(n int) string {
	if n <= 0 || c.AccessToken == "" {
		return ""
	}

	if len(c.AccessToken) <= n {
		return c.AccessToken
	}

	return c.AccessToken[:n] + "..."
}

// HasScope reports whether the token was granted scope.
func (c Credentials) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}
