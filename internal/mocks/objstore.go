package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stockpix/stockpix/internal/store"
)

// MemoryObjectStore implements store.ObjectStore and store.URLSigner
// against an in-memory map. Fault hooks let test cases fail individual
// operations for specific keys.
type MemoryObjectStore struct {
	mu      sync.Mutex
	objects map[string]memObject

	// PutErr, GetErr, CopyErr are optional fault hooks. When set, they
	// are consulted before the operation; a non-nil return aborts it.
	PutErr  func(key string) error
	GetErr  func(key string) error
	CopyErr func(src, dst string) error
}

type memObject struct {
	data        []byte
	contentType string
	modified    time.Time
}

// NewMemoryObjectStore creates an empty in-memory object store.
func NewMemoryObjectStore() *MemoryObjectStore {
	return &MemoryObjectStore{objects: make(map[string]memObject)}
}

// Get implements store.ObjectStore.
func (m *MemoryObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		if err := m.GetErr(key); err != nil {
			return nil, err
		}
	}
	obj, ok := m.objects[key]
	if !ok {
		return nil, store.ErrObjectNotFound
	}
	return append([]byte(nil), obj.data...), nil
}

// Put implements store.ObjectStore.
func (m *MemoryObjectStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		if err := m.PutErr(key); err != nil {
			return err
		}
	}
	m.objects[key] = memObject{
		data:        append([]byte(nil), data...),
		contentType: contentType,
		modified:    time.Now().UTC(),
	}
	return nil
}

// Copy implements store.ObjectStore.
func (m *MemoryObjectStore) Copy(ctx context.Context, src, dst string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CopyErr != nil {
		if err := m.CopyErr(src, dst); err != nil {
			return err
		}
	}
	obj, ok := m.objects[src]
	if !ok {
		return store.ErrObjectNotFound
	}
	obj.data = append([]byte(nil), obj.data...)
	obj.modified = time.Now().UTC()
	m.objects[dst] = obj
	return nil
}

// List implements store.ObjectStore.
func (m *MemoryObjectStore) List(ctx context.Context, prefix string) ([]store.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var infos []store.ObjectInfo
	for key, obj := range m.objects {
		if strings.HasPrefix(key, prefix) {
			infos = append(infos, store.ObjectInfo{
				Key:          key,
				Size:         int64(len(obj.data)),
				LastModified: obj.modified,
			})
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

// Delete implements store.ObjectStore.
func (m *MemoryObjectStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// Exists implements store.ObjectStore.
func (m *MemoryObjectStore) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok, nil
}

// PresignGet implements store.URLSigner with a deterministic fake URL.
func (m *MemoryObjectStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://example.test/" + key, nil
}

// Keys returns the stored keys in sorted order.
func (m *MemoryObjectStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for key := range m.objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
