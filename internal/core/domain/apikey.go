package domain

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

// DefaultRateLimit is the per-key request budget applied when a
// creation request does not set one. Declared on every key, enforced
// nowhere yet.
const DefaultRateLimit = 600

type APIKey struct {
	ID          string
	Key         string
	Name        string
	Description string
	Active      bool
	RateLimit   int
	ExpiresAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Expired reports whether the key carries an expiration timestamp that
// lies before now. Keys without an expiration never expire.
func (k APIKey) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && k.ExpiresAt.Before(now)
}
