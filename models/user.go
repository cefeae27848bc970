package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account that can log in to the onboarding portal
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates a new User instance
func NewUser(email, passwordHash string, role Role) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Principal returns the identity a token issued for this user should carry
func (u *User) Principal() Principal {
	return Principal{UserID: u.ID.String(), Role: u.Role}
}

// IsManager returns true if the user reviews onboarding submissions
func (u *User) IsManager() bool {
	return u.Role == RoleManager
}
