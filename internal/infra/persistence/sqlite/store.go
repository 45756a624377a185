// Package sqlite persists HACCP snapshots in an embedded SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"haccpcore/pkg/domain"
)

var _ domain.SnapshotStore = (*Store)(nil)

// DefaultPath is used when no path is configured.
const DefaultPath = "haccp.db"

// Store writes each snapshot bucket as a JSON payload row keyed by
// (store_key, bucket). Every Save replaces all buckets in one transaction.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
	key  string
}

// NewStore opens (creating when needed) the database at path and addresses
// the snapshot under key.
func NewStore(ctx context.Context, path, key string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if key == "" {
		key = domain.DefaultStoreKey
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS state (
		store_key TEXT NOT NULL,
		bucket TEXT NOT NULL,
		payload BLOB NOT NULL,
		PRIMARY KEY (store_key, bucket)
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &Store{db: db, path: path, key: key}, nil
}

// Load reads every bucket stored under the key.
func (s *Store) Load(ctx context.Context) (domain.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT bucket, payload FROM state WHERE store_key = ?`, s.key)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()
	payloads := make(map[string][]byte, len(domain.SnapshotBuckets))
	for rows.Next() {
		var (
			bucket  string
			payload []byte
		)
		if err := rows.Scan(&bucket, &payload); err != nil {
			return domain.Snapshot{}, fmt.Errorf("scan: %w", err)
		}
		payloads[bucket] = payload
	}
	if err := rows.Err(); err != nil {
		return domain.Snapshot{}, fmt.Errorf("iterate state: %w", err)
	}
	return domain.DecodeBuckets(payloads)
}

// Save upserts every bucket of the snapshot.
func (s *Store) Save(ctx context.Context, snapshot domain.Snapshot) (retErr error) {
	payloads, err := snapshot.EncodeBuckets()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, bucket := range domain.SnapshotBuckets {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO state(store_key,bucket,payload) VALUES(?,?,?) ON CONFLICT(store_key,bucket) DO UPDATE SET payload=excluded.payload`,
			s.key, bucket, payloads[bucket]); err != nil {
			return fmt.Errorf("upsert %s: %w", bucket, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close closes the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
