// Package memory provides a process-local SnapshotStore used for tests and
// ephemeral deployments. Snapshots are held as encoded bucket payloads so
// callers never share memory with the stored state.
package memory

import (
	"context"
	"errors"
	"sync"

	"haccpcore/pkg/domain"
)

var _ domain.SnapshotStore = (*Store)(nil)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("memory store closed")

// Store keeps the encoded snapshot for one store key.
type Store struct {
	mu     sync.RWMutex
	key    string
	data   map[string][]byte
	saves  int
	closed bool
}

// NewStore returns an empty store addressing key. An empty key selects
// domain.DefaultStoreKey.
func NewStore(key string) *Store {
	if key == "" {
		key = domain.DefaultStoreKey
	}
	return &Store{key: key}
}

// Key returns the snapshot key this store addresses.
func (s *Store) Key() string { return s.key }

// Load decodes the snapshot stored under the key.
func (s *Store) Load(_ context.Context) (domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return domain.Snapshot{}, ErrClosed
	}
	if s.data == nil {
		return domain.Snapshot{}, nil
	}
	return domain.DecodeBuckets(s.data)
}

// Save encodes and stores the snapshot, replacing any previous one.
func (s *Store) Save(_ context.Context, snapshot domain.Snapshot) error {
	payloads, err := snapshot.EncodeBuckets()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.data = payloads
	s.saves++
	return nil
}

// Saves reports how many snapshots were written.
func (s *Store) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// Close marks the store closed.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
