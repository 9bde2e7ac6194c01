package types

import (
	"context"
	"time"
)

// SessionStore loads and saves sessions. Implementations keep a serialized
// copy, so a loaded Session never aliases stored state; concurrent saves of
// the same session are last-write-wins. Callers that need stronger
// guarantees serialize requests per session.
type SessionStore interface {
	// Load returns the session with the given id.
	// Returns an error wrapping ErrNotFound if the session is unknown.
	Load(ctx context.Context, id string) (*Session, error)

	// Save creates or replaces the stored session.
	Save(ctx context.Context, s *Session) error

	// Delete removes a session. Deleting an unknown session is not an error.
	Delete(ctx context.Context, id string) error

	// List returns a summary of every stored session, most recently
	// updated first.
	List(ctx context.Context) ([]SessionInfo, error)

	// Prune deletes sessions last updated before cutoff and returns the
	// number removed.
	Prune(ctx context.Context, cutoff time.Time) (int, error)

	// Close releases store resources. Idempotent. Other methods return
	// ErrStoreClosed afterwards.
	Close() error
}

// SessionInfo summarizes a stored session.
type SessionInfo struct {
	SessionID string    `json:"session_id"`
	Lists     int       `json:"lists"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Info returns the summary of s.
func (s *Session) Info() SessionInfo {
	return SessionInfo{
		SessionID: s.ID,
		Lists:     s.ListCount(),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
