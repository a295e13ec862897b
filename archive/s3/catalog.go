package s3

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/softsim/trajan/archive"
)

// ErrConcurrentPublish is returned when another publisher claimed the same
// catalog version first. The caller should re-read Latest and retry.
var ErrConcurrentPublish = errors.New("s3: concurrent publish detected")

// DynamoDBClient is the DynamoDB API surface the catalog needs.
// *dynamodb.Client satisfies it.
type DynamoDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Entry is one published catalog row.
type Entry struct {
	// Version is the monotonically increasing publish counter.
	Version uint64

	// Name is the store key of the published snapshot.
	Name string
}

// Catalog tracks the latest published snapshot per archive URI in DynamoDB.
// S3 has no compare-and-swap, so concurrent publishers racing on a bare
// "latest" object would silently overwrite each other; a conditional write
// on the version sort key makes the race detectable instead.
//
// Table schema: partition key base_uri (S), sort key version (N), plus a
// snapshot_key (S) attribute. Create with:
//
//	aws dynamodb create-table \
//	  --table-name trajan-catalog \
//	  --attribute-definitions AttributeName=base_uri,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=base_uri,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type Catalog struct {
	client    DynamoDBClient
	tableName string
	baseURI   string
}

// NewCatalog creates a catalog over the given table. baseURI identifies the
// archive, conventionally "s3://bucket/prefix".
func NewCatalog(client DynamoDBClient, tableName, baseURI string) *Catalog {
	return &Catalog{
		client:    client,
		tableName: tableName,
		baseURI:   baseURI,
	}
}

// Latest returns the most recently published entry. With nothing published
// it returns archive.ErrNotFound.
func (c *Catalog) Latest(ctx context.Context) (Entry, error) {
	resp, err := c.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("base_uri = :uri"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uri": &types.AttributeValueMemberS{Value: c.baseURI},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return Entry{}, fmt.Errorf("s3: catalog query: %w", err)
	}
	if len(resp.Items) == 0 {
		return Entry{}, archive.ErrNotFound
	}

	item := resp.Items[0]
	versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return Entry{}, errors.New("s3: catalog row has no numeric version")
	}
	keyAttr, ok := item["snapshot_key"].(*types.AttributeValueMemberS)
	if !ok {
		return Entry{}, errors.New("s3: catalog row has no snapshot_key")
	}

	var version uint64
	if _, err := fmt.Sscanf(versionAttr.Value, "%d", &version); err != nil {
		return Entry{}, fmt.Errorf("s3: parse catalog version: %w", err)
	}
	return Entry{Version: version, Name: keyAttr.Value}, nil
}

// Publish records name as the next catalog version and returns that
// version. A racing publisher that claims the version first surfaces as
// ErrConcurrentPublish.
func (c *Catalog) Publish(ctx context.Context, name string) (uint64, error) {
	latest, err := c.Latest(ctx)
	if err != nil && !errors.Is(err, archive.ErrNotFound) {
		return 0, err
	}
	next := latest.Version + 1

	_, err = c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item: map[string]types.AttributeValue{
			"base_uri":     &types.AttributeValueMemberS{Value: c.baseURI},
			"version":      &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", next)},
			"snapshot_key": &types.AttributeValueMemberS{Value: name},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var cond *types.ConditionalCheckFailedException
		if errors.As(err, &cond) {
			return 0, ErrConcurrentPublish
		}
		return 0, fmt.Errorf("s3: catalog publish: %w", err)
	}
	return next, nil
}
