package session

import (
	"context"
)

// Store defines the minimal interface for session storage backends. The
// contract is deliberately small: an opaque keyed map with a TTL that
// refreshes on every write. A Load that finds nothing returns (nil, nil);
// the lifecycle engine treats an absent session and an empty session the
// same way, as a fresh start.
type Store interface {
	// Load retrieves the session for a user, or (nil, nil) when none exists.
	Load(ctx context.Context, userID string) (*Session, error)

	// Create stores a brand-new session, stamping CreatedAt.
	Create(ctx context.Context, userID string, s *Session) error

	// Save overwrites the session and refreshes its TTL.
	Save(ctx context.Context, userID string, s *Session) error

	// Clear removes the session. Clearing an absent session is not an error.
	Clear(ctx context.Context, userID string) error
}
