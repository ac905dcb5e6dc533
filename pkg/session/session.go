// Package session implements server-side session storage. The cookie handed to
// the browser carries only an opaque identifier; the user it maps to lives in
// the store and is resolved on every request.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a token does not resolve to a live session
var ErrNotFound = errors.New("session not found")

// Store persists session tokens and the user they belong to
type Store interface {
	// Create starts a session for the user and returns its opaque token
	Create(ctx context.Context, userID uint, ttl time.Duration) (string, error)

	// Resolve returns the user a token belongs to, or ErrNotFound
	Resolve(ctx context.Context, token string) (uint, error)

	// Delete ends a session; deleting an unknown token is not an error
	Delete(ctx context.Context, token string) error
}
