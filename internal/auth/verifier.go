// Package auth verifies administrator bearer tokens.
package auth

import (
	"errors"
	"fmt"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// ErrNotAdmin marks a token that verified fine but does not carry an
// isAdmin=true claim.
var ErrNotAdmin = errors.New("admin access only")

const adminClaim = "isAdmin"

// AdminVerifier checks HS256 signatures with a process-wide secret and
// admits only claim sets whose isAdmin claim is boolean true.
type AdminVerifier struct {
	key []byte
}

// NewAdminVerifier fails when the secret is empty. A deployment
// without a signing secret must die at startup rather than accept
// unverifiable tokens.
func NewAdminVerifier(secret string) (*AdminVerifier, error) {
	if secret == "" {
		return nil, errors.New("JWT_SECRET n'est pas défini")
	}
	return &AdminVerifier{key: []byte(secret)}, nil
}

// Verify validates signature and registered time claims, then requires
// isAdmin to be explicitly true. Absent, false, or non-boolean claims
// all fail the same way.
func (v *AdminVerifier) Verify(token string) (jwt.Token, error) {
	parsed, err := jwt.Parse([]byte(token),
		jwt.WithKey(jwa.HS256, v.key),
		jwt.WithValidate(true))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claim, ok := parsed.Get(adminClaim)
	if !ok {
		return nil, ErrNotAdmin
	}
	if isAdmin, ok := claim.(bool); !ok || !isAdmin {
		return nil, ErrNotAdmin
	}
	return parsed, nil
}
