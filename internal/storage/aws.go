package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the subset of the DynamoDB client the table uses.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// DynamoTable is a DynamoDB table with a string partition key "id" and a
// global secondary index per Index.
type DynamoTable struct {
	client  DynamoAPI
	name    string
	indexes []Index
}

// NewDynamoTable creates a table on an existing client.
func NewDynamoTable(client DynamoAPI, name string, indexes ...Index) *DynamoTable {
	return &DynamoTable{client: client, name: name, indexes: indexes}
}

// NewDynamoClient builds a DynamoDB client from the default AWS config chain.
// An empty profile uses the ambient credentials (IAM role on ECS/Lambda).
// A non-empty endpoint points the client at DynamoDB Local.
func NewDynamoClient(ctx context.Context, region, profile, endpoint string) (*dynamodb.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

func (t *DynamoTable) Put(ctx context.Context, item any) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return storeErr("put", t.name, fmt.Errorf("marshaling item: %w", err))
	}
	if id, ok := av["id"].(*types.AttributeValueMemberS); !ok || id.Value == "" {
		return storeErr("put", t.name, ErrMissingID)
	}

	_, err = t.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(t.name),
		Item:      av,
	})
	return storeErr("put", t.name, err)
}

func (t *DynamoTable) Get(ctx context.Context, id string, out any) (bool, error) {
	result, err := t.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(t.name),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return false, storeErr("get", t.name, err)
	}
	if len(result.Item) == 0 {
		return false, nil
	}
	if err := attributevalue.UnmarshalMap(result.Item, out); err != nil {
		return false, storeErr("get", t.name, fmt.Errorf("unmarshaling item: %w", err))
	}
	return true, nil
}

// Query reads every page of the index for value.
func (t *DynamoTable) Query(ctx context.Context, index Index, value string, out any) error {
	paginator := dynamodb.NewQueryPaginator(t.client, &dynamodb.QueryInput{
		TableName:              aws.String(t.name),
		IndexName:              aws.String(index.Name),
		KeyConditionExpression: aws.String("#k = :v"),
		ExpressionAttributeNames: map[string]string{
			"#k": index.Attribute,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: value},
		},
	})

	var items []map[string]types.AttributeValue
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return storeErr("query", t.name, err)
		}
		items = append(items, page.Items...)
	}

	if len(items) == 0 {
		return storeErr("query", t.name, decodeList(nil, out))
	}
	if err := attributevalue.UnmarshalListOfMaps(items, out); err != nil {
		return storeErr("query", t.name, fmt.Errorf("unmarshaling items: %w", err))
	}
	return nil
}

func (t *DynamoTable) Ping(ctx context.Context) error {
	_, err := t.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(t.name),
	})
	return storeErr("ping", t.name, err)
}

func (t *DynamoTable) Close() error { return nil }
