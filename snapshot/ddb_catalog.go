package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DDBClient is the subset of the DynamoDB API the catalog uses.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DDBCatalog is a Catalog backed by a DynamoDB table, giving snapshot commits
// the compare-and-swap semantics object stores lack. Concurrent writers race
// on a conditional put of the next version; the loser gets
// ErrConcurrentCommit and retries against the new latest.
//
// Table schema:
//   - Partition key: catalog_key (string)
//   - Sort key: version (number), monotonically increasing
//
// Create the table with:
//
//	aws dynamodb create-table \
//	  --table-name keydex-snapshots \
//	  --attribute-definitions AttributeName=catalog_key,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=catalog_key,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type DDBCatalog struct {
	client    DDBClient
	tableName string
}

// NewDDBCatalog creates a catalog over the given table.
func NewDDBCatalog(client DDBClient, tableName string) *DDBCatalog {
	return &DDBCatalog{client: client, tableName: tableName}
}

// Latest queries the highest committed version for key.
func (c *DDBCatalog) Latest(ctx context.Context, key string) (Entry, error) {
	resp, err := c.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("catalog_key = :key"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":key": &types.AttributeValueMemberS{Value: key},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return Entry{}, fmt.Errorf("query catalog: %w", err)
	}
	if len(resp.Items) == 0 {
		return Entry{}, ErrNoSnapshot
	}

	item := resp.Items[0]
	versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return Entry{}, errors.New("invalid version attribute in catalog item")
	}
	nameAttr, ok := item["snapshot_name"].(*types.AttributeValueMemberS)
	if !ok {
		return Entry{}, errors.New("invalid snapshot_name attribute in catalog item")
	}

	var version uint64
	if _, err := fmt.Sscanf(versionAttr.Value, "%d", &version); err != nil {
		return Entry{}, fmt.Errorf("parse catalog version: %w", err)
	}
	return Entry{Version: version, Name: nameAttr.Value}, nil
}

// Commit writes entry with a conditional put that fails if its version was
// already committed by another writer.
func (c *DDBCatalog) Commit(ctx context.Context, key string, entry Entry) error {
	_, err := c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item: map[string]types.AttributeValue{
			"catalog_key":   &types.AttributeValueMemberS{Value: key},
			"version":       &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", entry.Version)},
			"snapshot_name": &types.AttributeValueMemberS{Value: entry.Name},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrConcurrentCommit
		}
		return fmt.Errorf("commit catalog entry: %w", err)
	}
	return nil
}
