// Package redis persists HACCP snapshots as a Redis hash per store key, one
// field per bucket.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"haccpcore/pkg/domain"
)

var _ domain.SnapshotStore = (*Store)(nil)

// Store reads and writes the snapshot hash.
type Store struct {
	client *redis.Client
	key    string
	owned  bool
}

// NewStore parses url, connects and verifies the connection.
func NewStore(ctx context.Context, url, key string) (*Store, error) {
	if url == "" {
		return nil, errors.New("redis url is required")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	s := NewStoreWithClient(client, key)
	s.owned = true
	return s, nil
}

// NewStoreWithClient wraps an existing client. Close leaves the client open.
func NewStoreWithClient(client *redis.Client, key string) *Store {
	if key == "" {
		key = domain.DefaultStoreKey
	}
	return &Store{client: client, key: key}
}

// Load reads every bucket field of the hash.
func (s *Store) Load(ctx context.Context) (domain.Snapshot, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("hgetall %s: %w", s.key, err)
	}
	payloads := make(map[string][]byte, len(fields))
	for bucket, payload := range fields {
		payloads[bucket] = []byte(payload)
	}
	return domain.DecodeBuckets(payloads)
}

// Save writes all bucket fields in one MULTI/EXEC.
func (s *Store) Save(ctx context.Context, snapshot domain.Snapshot) error {
	payloads, err := snapshot.EncodeBuckets()
	if err != nil {
		return err
	}
	values := make([]any, 0, len(payloads)*2)
	for _, bucket := range domain.SnapshotBuckets {
		values = append(values, bucket, payloads[bucket])
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.key, values...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("hset %s: %w", s.key, err)
	}
	return nil
}

// Close closes the client when the store created it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}
