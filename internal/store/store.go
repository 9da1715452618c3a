package store

import (
	"context"
	"time"

	"github.com/stockpix/stockpix/internal/domain"
)

// ObjectInfo describes one stored object returned by List.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStore is the uniform adapter over the remote object store. All
// pipeline keys live under a configured prefix; callers pass keys
// relative to the bucket root.
type ObjectStore interface {
	// Get downloads an object. Returns ErrObjectNotFound if the key
	// does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put uploads an object, overwriting any existing content.
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Copy performs a server-side copy from src to dst.
	Copy(ctx context.Context, src, dst string) error

	// List returns the objects under the prefix, ordered by key.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// Delete removes an object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether the key is present.
	Exists(ctx context.Context, key string) (bool, error)
}

// URLSigner issues short-lived download URLs for gallery rendering and
// export delivery.
type URLSigner interface {
	// PresignGet returns a URL granting temporary read access to key.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// ManifestStore owns the authoritative status document of each run.
type ManifestStore interface {
	// Load deserializes the persisted manifest for the run. Returns
	// ErrManifestNotFound when no document exists.
	Load(ctx context.Context, runID string) (*domain.RunManifest, error)

	// Save atomically replaces the run's status document. Returns
	// ErrVersionConflict when the persisted document is newer than the
	// manifest the caller loaded. On success the manifest's version is
	// advanced in place.
	Save(ctx context.Context, manifest *domain.RunManifest) error

	// ListRuns enumerates the run IDs with a persisted manifest,
	// newest first.
	ListRuns(ctx context.Context) ([]string, error)
}

// HistoryEntry is one appended record of a completed generation run.
type HistoryEntry struct {
	Timestamp    time.Time        `json:"timestamp"`
	RunID        string           `json:"run_id"`
	Params       domain.RunParams `json:"params"`
	OutputPrefix string           `json:"output_prefix"`
}

// HistoryStore appends and reads the run history log.
type HistoryStore interface {
	// Append adds one entry to the history log.
	Append(ctx context.Context, entry HistoryEntry) error

	// List returns all entries in append order.
	List(ctx context.Context) ([]HistoryEntry, error)
}
