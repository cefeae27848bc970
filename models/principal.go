package models

import (
	"errors"
	"fmt"
)

// ErrInvalidPrincipal is returned when a principal lacks a user ID or carries an unknown role
var ErrInvalidPrincipal = errors.New("invalid principal")

// Principal is the authenticated identity extracted from a verified token.
// It is a value type: copies handed to request contexts cannot be mutated by downstream handlers.
type Principal struct {
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
}

// NewPrincipal builds a Principal, enforcing that both fields are populated
func NewPrincipal(userID string, role Role) (Principal, error) {
	p := Principal{UserID: userID, Role: role}
	if err := p.Validate(); err != nil {
		return Principal{}, err
	}
	return p, nil
}

// Validate checks the principal invariants
func (p Principal) Validate() error {
	if p.UserID == "" {
		return fmt.Errorf("%w: user ID is required", ErrInvalidPrincipal)
	}
	if !p.Role.Valid() {
		return fmt.Errorf("%w: role %q is not recognised", ErrInvalidPrincipal, p.Role)
	}
	return nil
}
