// Package auth provides the admin identity check for catalog mutations.
package auth

import (
	"crypto/subtle"
	"errors"
)

// DefaultAdminID is the admin identity used when none is configured.
const DefaultAdminID = "1287498729198"

// Sentinel errors for authorization failures.
var (
	ErrNotAdmin     = errors.New("caller is not the admin")
	ErrEmptyAdminID = errors.New("admin identifier must not be empty")
)

// Authorizer decides whether a caller may mutate the catalog.
type Authorizer interface {
	Authorize(callerID string) error
}

// StaticAdmin authorizes exactly one caller identifier. The comparison is
// plain string equality, done in constant time.
type StaticAdmin struct {
	id []byte
}

// NewStaticAdmin creates a StaticAdmin for id.
func NewStaticAdmin(id string) (*StaticAdmin, error) {
	if id == "" {
		return nil, ErrEmptyAdminID
	}
	return &StaticAdmin{id: []byte(id)}, nil
}

// Authorize returns ErrNotAdmin unless callerID equals the admin identifier.
func (a *StaticAdmin) Authorize(callerID string) error {
	if subtle.ConstantTimeCompare([]byte(callerID), a.id) != 1 {
		return ErrNotAdmin
	}
	return nil
}
