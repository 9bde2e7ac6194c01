package sqlite

import (
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/todos/pkg/types"
)

// encodeRecord serializes a session record for the record column and for
// JSONL export lines.
func encodeRecord(rec types.SessionRecord) ([]byte, error) {
	if rec.Lists == nil {
		rec.Lists = []types.ListRecord{}
	}
	return json.Marshal(rec)
}

// decodeRecord parses a stored record. A record without a session id is
// rejected with ErrInvalidRecord.
func decodeRecord(data []byte) (types.SessionRecord, error) {
	var rec types.SessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return types.SessionRecord{}, fmt.Errorf("%w: %w", types.ErrInvalidRecord, err)
	}
	if rec.SessionID == "" {
		return types.SessionRecord{}, fmt.Errorf("%w: missing session_id", types.ErrInvalidRecord)
	}
	return rec, nil
}
