package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Sumit07M/bg-verification-project/models"
)

// SessionSlot is the storage slot holding the cached session
const SessionSlot = "session"

// ErrCorruptSession is returned when the cached session cannot be decoded
var ErrCorruptSession = errors.New("corrupt cached session")

// Session is the client-side cache written at login.
// Nothing in it is trusted by the server; the token is re-verified on every request.
type Session struct {
	Token     string           `json:"token"`
	User      models.Principal `json:"user"`
	ExpiresAt time.Time        `json:"expiresAt,omitempty"`
}

// LoadSession reads the cached session. A missing slot yields (nil, nil).
func LoadSession(ctx context.Context, store SessionStore) (*Session, error) {
	raw, found, err := store.Get(ctx, SessionSlot)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSession, err)
	}
	return &s, nil
}

// SaveSession writes s to the session slot
func SaveSession(ctx context.Context, store SessionStore, s Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return store.Put(ctx, SessionSlot, raw)
}

// ClearSession removes the cached session
func ClearSession(ctx context.Context, store SessionStore) error {
	return store.Delete(ctx, SessionSlot)
}
