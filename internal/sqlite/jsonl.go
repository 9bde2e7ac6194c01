package sqlite

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/todos/pkg/types"
)

// ExportJSONL writes every stored session record to path, one JSON record
// per line, and returns the number of records written. The file is replaced
// atomically.
func (b *Backend) ExportJSONL(ctx context.Context, path string) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return 0, types.ErrStoreClosed
	}

	rows, err := b.db.QueryContext(ctx, "SELECT record FROM sessions ORDER BY session_id")
	if err != nil {
		return 0, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return 0, fmt.Errorf("scanning record: %w", err)
		}
		records = append(records, json.RawMessage(raw))
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterating sessions: %w", err)
	}

	if err := writeJSONL(path, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// ImportJSONL upserts every valid session record in path and returns the
// number imported. Malformed lines and records that do not rebuild into a
// session are skipped.
func (b *Backend) ImportJSONL(ctx context.Context, path string) (int, error) {
	lines, err := readJSONL(path)
	if err != nil {
		return 0, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return 0, types.ErrStoreClosed
	}

	n := 0
	for _, line := range lines {
		rec, err := decodeRecord(line)
		if err != nil {
			continue
		}
		sess, err := types.SessionFromRecord(rec)
		if err != nil {
			continue
		}
		if err := b.saveRecord(ctx, sess.Record()); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// readJSONL reads a JSONL file and returns each non-empty, parseable line as
// a json.RawMessage. Malformed lines are skipped.
func readJSONL(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []json.RawMessage
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 || !json.Valid(line) {
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, nil
}

// writeJSONL atomically writes records to a JSONL file using the temp-file,
// fsync, rename pattern.
func writeJSONL(path string, records []json.RawMessage) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			return fail(fmt.Errorf("writing record: %w", err))
		}
		if err := w.WriteByte('\n'); err != nil {
			return fail(fmt.Errorf("writing newline: %w", err))
		}
	}
	if err := w.Flush(); err != nil {
		return fail(fmt.Errorf("flushing buffer: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("syncing temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
