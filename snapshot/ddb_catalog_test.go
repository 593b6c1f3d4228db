package snapshot

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rallenh/keydex/blobstore"
	"github.com/stretchr/testify/require"
)

// mockDDBClient is an in-memory DynamoDB mock.
type mockDDBClient struct {
	mu    sync.RWMutex
	items map[string]map[string]types.AttributeValue // catalog_key:version -> item
}

func newMockDDBClient() *mockDDBClient {
	return &mockDDBClient{items: make(map[string]map[string]types.AttributeValue)}
}

func (m *mockDDBClient) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	catalogKey := params.Item["catalog_key"].(*types.AttributeValueMemberS).Value
	version := params.Item["version"].(*types.AttributeValueMemberN).Value
	key := catalogKey + ":" + version

	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists(version)" {
		if _, exists := m.items[key]; exists {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}
		}
	}

	m.items[key] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDDBClient) Query(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	catalogKey := params.ExpressionAttributeValues[":key"].(*types.AttributeValueMemberS).Value

	var items []map[string]types.AttributeValue
	for _, item := range m.items {
		if item["catalog_key"].(*types.AttributeValueMemberS).Value == catalogKey {
			items = append(items, item)
		}
	}

	// Descending by version, like ScanIndexForward=false over a numeric sort key.
	sort.Slice(items, func(i, j int) bool {
		var vi, vj uint64
		fmt.Sscanf(items[i]["version"].(*types.AttributeValueMemberN).Value, "%d", &vi)
		fmt.Sscanf(items[j]["version"].(*types.AttributeValueMemberN).Value, "%d", &vj)
		return vi > vj
	})

	if params.Limit != nil && int(*params.Limit) < len(items) {
		items = items[:*params.Limit]
	}
	return &dynamodb.QueryOutput{Items: items}, nil
}

func TestDDBCatalog(t *testing.T) {
	ctx := context.Background()
	cat := NewDDBCatalog(newMockDDBClient(), "keydex-snapshots")

	// 1. Empty catalog
	_, err := cat.Latest(ctx, "table/orders")
	require.ErrorIs(t, err, ErrNoSnapshot)

	// 2. Sequential commits advance the latest pointer
	require.NoError(t, cat.Commit(ctx, "table/orders", Entry{Version: 1, Name: "snap-1"}))
	require.NoError(t, cat.Commit(ctx, "table/orders", Entry{Version: 2, Name: "snap-2"}))

	latest, err := cat.Latest(ctx, "table/orders")
	require.NoError(t, err)
	require.Equal(t, Entry{Version: 2, Name: "snap-2"}, latest)

	// 3. Re-committing an existing version is a conflict
	err = cat.Commit(ctx, "table/orders", Entry{Version: 2, Name: "snap-2b"})
	require.ErrorIs(t, err, ErrConcurrentCommit)

	// 4. Keys partition the version space
	require.NoError(t, cat.Commit(ctx, "table/invoices", Entry{Version: 1, Name: "other-1"}))
	latest, err = cat.Latest(ctx, "table/invoices")
	require.NoError(t, err)
	require.EqualValues(t, 1, latest.Version)
}

func TestDDBCatalog_WithPublisher(t *testing.T) {
	ctx := context.Background()
	// The publisher works identically against the DynamoDB-backed catalog.
	p := NewPublisher(
		blobstore.NewMemoryStore(),
		NewDDBCatalog(newMockDDBClient(), "keydex-snapshots"),
	)

	entry, err := Publish(ctx, p, "orders", []int{1, 2}, true)
	require.NoError(t, err)
	require.EqualValues(t, 1, entry.Version)

	entry, err = Publish(ctx, p, "orders", []int{1, 2, 3}, true)
	require.NoError(t, err)
	require.EqualValues(t, 2, entry.Version)

	src, err := Current[int](ctx, p, "orders")
	require.NoError(t, err)
	keys, _, err := src.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, keys)
}
