package dynamodb

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/AlotfyDev/ArchiNote/domain/core/aggregates"
	"github.com/AlotfyDev/ArchiNote/domain/core/entities"
	"github.com/AlotfyDev/ArchiNote/domain/core/valueobjects"
	pkgerrors "github.com/AlotfyDev/ArchiNote/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeDynamoDB stores items keyed by PK/SK and can be told to fail
type fakeDynamoDB struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
	fail  error
	calls int
}

func newFakeDynamoDB() *fakeDynamoDB {
	return &fakeDynamoDB{items: make(map[string]map[string]types.AttributeValue)}
}

func itemKey(key map[string]types.AttributeValue) string {
	pk := key["PK"].(*types.AttributeValueMemberS).Value
	sk := key["SK"].(*types.AttributeValueMemberS).Value
	return pk + "|" + sk
}

func (f *fakeDynamoDB) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail != nil {
		return nil, f.fail
	}
	f.items[itemKey(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamoDB) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail != nil {
		return nil, f.fail
	}
	return &dynamodb.GetItemOutput{Item: f.items[itemKey(in.Key)]}, nil
}

func (f *fakeDynamoDB) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail != nil {
		return nil, f.fail
	}
	delete(f.items, itemKey(in.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func sampleSnapshot(t *testing.T) aggregates.Snapshot {
	t.Helper()
	o := aggregates.NewOrchestrator(nil, zap.NewNop())
	require.NoError(t, o.AddNode(entities.NewNodeWithID("svc", valueobjects.NodeTypeArchitecture, "service")))
	require.NoError(t, o.AddNode(entities.NewNodeWithID("db", valueobjects.NodeTypeArchitecture, "database")))
	_, err := o.AddWeightedEdge("svc", "db", valueobjects.RelationshipUses, 0.9, "reads")
	require.NoError(t, err)
	snap, err := o.Snapshot()
	require.NoError(t, err)
	return snap
}

func TestSnapshotStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newFakeDynamoDB()
	store := NewSnapshotStore(client, "archinote", zap.NewNop())

	require.NoError(t, store.Save(ctx, "g1", sampleSnapshot(t)))

	raw := client.items["GRAPH#g1|SNAPSHOT"]
	require.NotNil(t, raw)
	assert.Equal(t, "2", raw["NodeCount"].(*types.AttributeValueMemberN).Value)
	assert.Equal(t, "GraphSnapshot", raw["EntityType"].(*types.AttributeValueMemberS).Value)

	loaded, err := store.Load(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, loaded.Nodes, 2)
	require.Len(t, loaded.Edges, 1)
	assert.Equal(t, "db", loaded.Nodes[0].ID)
	assert.InDelta(t, 0.9, loaded.Edges[0].Strength, 1e-9)

	require.NoError(t, store.Delete(ctx, "g1"))
	_, err = store.Load(ctx, "g1")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeGraphNotFound, pkgerrors.GetAppError(err).Code)
}

func TestSnapshotStore_Validation(t *testing.T) {
	store := NewSnapshotStore(newFakeDynamoDB(), "archinote", nil)
	err := store.Save(context.Background(), "", sampleSnapshot(t))
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestSnapshotStore_CircuitBreaker(t *testing.T) {
	ctx := context.Background()
	client := newFakeDynamoDB()
	client.fail = errors.New("throttled")
	store := NewSnapshotStore(client, "archinote", zap.NewNop())

	for i := 0; i < 5; i++ {
		_, err := store.Load(ctx, "g1")
		require.Error(t, err)
		assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeDatabase))
	}
	assert.Equal(t, gobreaker.StateOpen, store.BreakerState())

	// Open breaker rejects without touching the table
	calls := client.calls
	_, err := store.Load(ctx, "g1")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnavailable))
	assert.Equal(t, calls, client.calls)
}
