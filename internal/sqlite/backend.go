// Package sqlite implements the SQLite session store. Each session is one
// row holding its JSON record; list counts and timestamps are kept in
// columns for listing and pruning.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/todos/pkg/types"
)

// DatabaseFile is the name of the SQLite file inside the data directory.
const DatabaseFile = "todos.db"

var _ types.SessionStore = (*Backend)(nil)

// Backend implements types.SessionStore on SQLite. The zero value is not
// usable; create one with NewBackend and call Attach.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	retry    retryConfig
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{retry: defaultRetryConfig}
}

// Open creates a backend and attaches it to dataDir.
func Open(dataDir string) (*Backend, error) {
	b := NewBackend()
	if err := b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dataDir}); err != nil {
		return nil, err
	}
	return b, nil
}

// Attach opens (or creates) the database in config.DataDir and applies the
// schema. Creates DataDir if it does not exist.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if config.Backend != types.BackendSQLite {
		return fmt.Errorf("sqlite backend given %q: %w", config.Backend, types.ErrBackendUnknown)
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	dsn := filepath.Join(dataDir, DatabaseFile) +
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := migrate(db); err != nil {
		db.Close()
		return fmt.Errorf("migrate: %w", err)
	}

	b.db = db
	b.config = config
	b.attached = true
	return nil
}

// Detach closes the database. Idempotent. After Detach, all operations
// return ErrStoreClosed.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false
	if b.db != nil {
		err := b.db.Close()
		b.db = nil
		return err
	}
	return nil
}

// Close is Detach, for the SessionStore interface.
func (b *Backend) Close() error {
	return b.Detach()
}

// DataDir returns the attached data directory.
func (b *Backend) DataDir() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config.DataDir
}

// Load rebuilds the session with the given id.
func (b *Backend) Load(ctx context.Context, id string) (*types.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreClosed
	}
	if id == "" {
		return nil, fmt.Errorf("session %q: %w", id, types.ErrNotFound)
	}

	var raw string
	err := b.db.QueryRowContext(ctx,
		"SELECT record FROM sessions WHERE session_id = ?", id,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", id, err)
	}

	rec, err := decodeRecord([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", id, err)
	}
	return types.SessionFromRecord(rec)
}

// Save upserts the session row.
func (b *Backend) Save(ctx context.Context, s *types.Session) error {
	if s == nil || s.ID == "" {
		return types.ErrInvalidID
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.ErrStoreClosed
	}
	return b.saveRecord(ctx, s.Record())
}

// saveRecord writes rec, retrying transient contention errors.
// The caller must hold b.mu.
func (b *Backend) saveRecord(ctx context.Context, rec types.SessionRecord) error {
	raw, err := encodeRecord(rec)
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", rec.SessionID, err)
	}

	err = retryOp(ctx, b.retry, func() error {
		_, err := b.db.ExecContext(ctx, upsertSession,
			rec.SessionID, string(raw), len(rec.Lists),
			rec.CreatedAt.UnixNano(), rec.UpdatedAt.UnixNano(),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("saving session %s: %w", rec.SessionID, err)
	}
	return nil
}

// Delete removes the session row.
func (b *Backend) Delete(ctx context.Context, id string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.ErrStoreClosed
	}
	err := retryOp(ctx, b.retry, func() error {
		_, err := b.db.ExecContext(ctx, "DELETE FROM sessions WHERE session_id = ?", id)
		return err
	})
	if err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	return nil
}

// List summarizes stored sessions, most recently updated first.
func (b *Backend) List(ctx context.Context) ([]types.SessionInfo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreClosed
	}

	rows, err := b.db.QueryContext(ctx,
		"SELECT session_id, list_count, created_at, updated_at FROM sessions ORDER BY updated_at DESC, session_id",
	)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	infos := []types.SessionInfo{}
	for rows.Next() {
		var info types.SessionInfo
		var created, updated int64
		if err := rows.Scan(&info.SessionID, &info.Lists, &created, &updated); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		info.CreatedAt = time.Unix(0, created).UTC()
		info.UpdatedAt = time.Unix(0, updated).UTC()
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return infos, nil
}

// Prune deletes sessions last updated before cutoff.
func (b *Backend) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return 0, types.ErrStoreClosed
	}

	var n int64
	err := retryOp(ctx, b.retry, func() error {
		res, err := b.db.ExecContext(ctx,
			"DELETE FROM sessions WHERE updated_at < ?", cutoff.UnixNano(),
		)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("pruning sessions: %w", err)
	}
	return int(n), nil
}
