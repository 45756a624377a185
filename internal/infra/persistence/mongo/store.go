// Package mongo persists HACCP snapshots as one MongoDB document per store key.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"haccpcore/pkg/domain"
)

var _ domain.SnapshotStore = (*Store)(nil)

// Defaults applied when configuration leaves them empty.
const (
	DefaultDatabase   = "haccp"
	DefaultCollection = "snapshots"
)

// Config selects the server and collection holding snapshots.
type Config struct {
	URI        string
	Database   string
	Collection string
	Key        string
	Timeout    time.Duration
}

// snapshotDocument is the stored shape: bucket payloads keep the JSON
// encoding shared with the other backends.
type snapshotDocument struct {
	Key       string            `bson:"_id"`
	Buckets   map[string][]byte `bson:"buckets"`
	UpdatedAt time.Time         `bson:"updatedAt"`
}

// Store reads and replaces the snapshot document.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
	key        string
	timeout    time.Duration
}

// NewStore connects to cfg.URI and verifies the connection.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongo uri is required")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Key == "" {
		cfg.Key = domain.DefaultStoreKey
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Store{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		key:        cfg.Key,
		timeout:    cfg.Timeout,
	}, nil
}

// Load returns the stored snapshot, or an empty one when no document exists.
func (s *Store) Load(ctx context.Context) (domain.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	var doc snapshotDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": s.key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Snapshot{}, nil
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("find snapshot: %w", err)
	}
	return fromDocument(doc)
}

// Save replaces the snapshot document, inserting it on first write.
func (s *Store) Save(ctx context.Context, snapshot domain.Snapshot) error {
	doc, err := toDocument(s.key, snapshot, time.Now().UTC())
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	_, err = s.collection.ReplaceOne(ctx, bson.M{"_id": s.key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func toDocument(key string, snapshot domain.Snapshot, now time.Time) (snapshotDocument, error) {
	buckets, err := snapshot.EncodeBuckets()
	if err != nil {
		return snapshotDocument{}, err
	}
	return snapshotDocument{Key: key, Buckets: buckets, UpdatedAt: now}, nil
}

func fromDocument(doc snapshotDocument) (domain.Snapshot, error) {
	return domain.DecodeBuckets(doc.Buckets)
}
