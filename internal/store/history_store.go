package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// historyKey is the object key of the append-only run history log,
// stored as one JSON document per line.
const historyKey = "data/history.jsonl"

type historyStore struct {
	objects ObjectStore
}

// NewHistoryStore creates a HistoryStore backed by the given object
// store.
func NewHistoryStore(objects ObjectStore) HistoryStore {
	return &historyStore{objects: objects}
}

// Append implements HistoryStore.Append.
func (s *historyStore) Append(ctx context.Context, entry HistoryEntry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode history entry: %w", err)
	}

	existing, err := s.objects.Get(ctx, historyKey)
	if err != nil && err != ErrObjectNotFound {
		return fmt.Errorf("failed to read history log: %w", err)
	}

	var buf bytes.Buffer
	buf.Write(existing)
	buf.Write(line)
	buf.WriteByte('\n')

	if err := s.objects.Put(ctx, historyKey, buf.Bytes(), "application/x-ndjson"); err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}
	return nil
}

// List implements HistoryStore.List.
func (s *historyStore) List(ctx context.Context) ([]HistoryEntry, error) {
	data, err := s.objects.Get(ctx, historyKey)
	if err != nil {
		if err == ErrObjectNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history log: %w", err)
	}

	var entries []HistoryEntry
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var entry HistoryEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, fmt.Errorf("failed to decode history entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
