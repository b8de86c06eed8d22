package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/macrolens/diettracker/internal/domain"
)

// MemoryStore is a thread-safe in-memory key-value store with an optional byte quota
type MemoryStore struct {
	data       map[string]string
	quotaBytes int
	mutex      sync.RWMutex
}

var _ domain.KeyValueStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store. quotaBytes <= 0 means unlimited.
func NewMemoryStore(quotaBytes int) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]string),
		quotaBytes: quotaBytes,
	}
}

// Get retrieves the value of key
func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	value, exists := s.data[key]
	if !exists {
		return "", domain.ErrKeyNotFound
	}
	return value, nil
}

// Set stores value under key, failing with ErrQuotaExceeded when the store would outgrow its quota
func (s *MemoryStore) Set(ctx context.Context, key string, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.quotaBytes > 0 {
		size := s.sizeLocked() - s.entrySize(key) + len(key) + len(value)
		if size > s.quotaBytes {
			return fmt.Errorf("%w: %d of %d bytes", domain.ErrQuotaExceeded, size, s.quotaBytes)
		}
	}

	s.data[key] = value
	return nil
}

// Delete removes key; deleting a missing key is not an error
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.data, key)
	return nil
}

// Exists checks if key has been written
func (s *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	_, exists := s.data[key]
	return exists, nil
}

// Size returns the current number of keys in the store
func (s *MemoryStore) Size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.data)
}

// Bytes returns the stored keys and values in bytes
func (s *MemoryStore) Bytes() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.sizeLocked()
}

// Clear removes all keys from the store
func (s *MemoryStore) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.data = make(map[string]string)
}

// Close is a no-op so MemoryStore satisfies the same lifecycle as the SQL stores
func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) sizeLocked() int {
	total := 0
	for k, v := range s.data {
		total += len(k) + len(v)
	}
	return total
}

func (s *MemoryStore) entrySize(key string) int {
	value, exists := s.data[key]
	if !exists {
		return 0
	}
	return len(key) + len(value)
}
