package archive

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"sort"
	"sync"

	"github.com/yanqian/ai-tripplanner/internal/domain/export"
)

// MemoryStore keeps archives in memory. Useful for tests and local dev.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Put implements export.Archive.
func (s *MemoryStore) Put(_ context.Context, key string, data []byte, _ string) (export.StoredObject, error) {
	stored := append([]byte(nil), data...)
	hash := md5.Sum(stored)
	s.mu.Lock()
	s.blobs[key] = stored
	s.mu.Unlock()
	return export.StoredObject{Key: key, Size: int64(len(stored)), ETag: hex.EncodeToString(hash[:])}, nil
}

// Get returns a stored blob.
func (s *MemoryStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[key]
	return data, ok
}

// Keys lists stored keys in order.
func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.blobs))
	for k := range s.blobs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var _ export.Archive = (*MemoryStore)(nil)
