// Package memory implements an in-process SessionStore. Sessions live as
// long as the process.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mesh-intelligence/todos/pkg/types"
)

var _ types.SessionStore = (*Store)(nil)

// Store keeps session records in a map guarded by a mutex.
type Store struct {
	mu      sync.RWMutex
	closed  bool
	records map[string]types.SessionRecord
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{records: make(map[string]types.SessionRecord)}
}

// Load rebuilds the stored session.
func (s *Store) Load(ctx context.Context, id string) (*types.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, types.ErrStoreClosed
	}
	rec, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, types.ErrNotFound)
	}
	return types.SessionFromRecord(rec)
}

// Save stores a snapshot of sess.
func (s *Store) Save(ctx context.Context, sess *types.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if sess == nil || sess.ID == "" {
		return types.ErrInvalidID
	}
	rec := sess.Record()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return types.ErrStoreClosed
	}
	s.records[sess.ID] = rec
	return nil
}

// Delete removes a session.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return types.ErrStoreClosed
	}
	delete(s.records, id)
	return nil
}

// List summarizes the stored sessions, most recently updated first.
func (s *Store) List(ctx context.Context) ([]types.SessionInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, types.ErrStoreClosed
	}
	out := make([]types.SessionInfo, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, types.SessionInfo{
			SessionID: rec.SessionID,
			Lists:     len(rec.Lists),
			CreatedAt: rec.CreatedAt,
			UpdatedAt: rec.UpdatedAt,
		})
	}
	slices.SortFunc(out, func(a, b types.SessionInfo) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.SessionID, b.SessionID)
	})
	return out, nil
}

// Prune deletes sessions last updated before cutoff.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, types.ErrStoreClosed
	}
	n := 0
	for id, rec := range s.records {
		if rec.UpdatedAt.Before(cutoff) {
			delete(s.records, id)
			n++
		}
	}
	return n, nil
}

// Close drops all sessions. Idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.records = nil
	return nil
}
