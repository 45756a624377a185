package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"haccpcore/pkg/domain"
)

func TestDocumentRoundTripThroughBSON(t *testing.T) {
	now := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	snap := domain.Snapshot{
		Plans: []domain.HACCPPlan{{ID: "p1", Name: "Cold Storage", Product: "Salads"}},
		CorrectiveActionLogs: []domain.CorrectiveActionLog{{
			ID: "ca1", CCPID: "p1-ccp-0", MonitoringLogID: "m1", FollowUpRequired: true,
		}},
	}
	doc, err := toDocument("haccp-storage:r1", snap, now)
	require.NoError(t, err)
	assert.Equal(t, "haccp-storage:r1", doc.Key)
	assert.Len(t, doc.Buckets, len(domain.SnapshotBuckets))

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)
	var decoded snapshotDocument
	require.NoError(t, bson.Unmarshal(raw, &decoded))

	loaded, err := fromDocument(decoded)
	require.NoError(t, err)
	require.Len(t, loaded.Plans, 1)
	assert.Equal(t, "Cold Storage", loaded.Plans[0].Name)
	require.Len(t, loaded.CorrectiveActionLogs, 1)
	assert.Equal(t, "m1", loaded.CorrectiveActionLogs[0].MonitoringLogID)
	assert.True(t, decoded.UpdatedAt.Equal(now))
}

func TestNewStoreRequiresURI(t *testing.T) {
	_, err := NewStore(context.Background(), Config{})
	require.Error(t, err)
}

// TestLiveRoundTrip runs against a real server when HACCP_TEST_MONGO_URI is set.
func TestLiveRoundTrip(t *testing.T) {
	uri := os.Getenv("HACCP_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("HACCP_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	store, err := NewStore(ctx, Config{URI: uri, Database: "haccp_test", Key: "haccp-storage:live-test"})
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Save(ctx, domain.Snapshot{Plans: []domain.HACCPPlan{{ID: "live"}}}))
	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.Plans, 1)
	assert.Equal(t, "live", loaded.Plans[0].ID)
}
