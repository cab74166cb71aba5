package storage

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/golden-ipa/internal/domain"
)

// fakeDynamo is an in-memory DynamoDB that pages query results.
type fakeDynamo struct {
	items    map[string]map[string]types.AttributeValue
	pageSize int
	queries  int
	err      error
	lastGet  *dynamodb.GetItemInput
	lastQry  *dynamodb.QueryInput
}

func newFakeDynamo(pageSize int) *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]types.AttributeValue), pageSize: pageSize}
}

func stringAttr(item map[string]types.AttributeValue, name string) string {
	if s, ok := item[name].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (f *fakeDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.items[stringAttr(in.Item, "id")] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.lastGet = in
	if f.err != nil {
		return nil, f.err
	}
	return &dynamodb.GetItemOutput{Item: f.items[stringAttr(in.Key, "id")]}, nil
}

func (f *fakeDynamo) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.queries++
	f.lastQry = in
	if f.err != nil {
		return nil, f.err
	}
	attr := in.ExpressionAttributeNames["#k"]
	want := stringAttr(in.ExpressionAttributeValues, ":v")

	var ids []string
	for id, item := range f.items {
		if stringAttr(item, attr) == want {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	start := 0
	if in.ExclusiveStartKey != nil {
		after := stringAttr(in.ExclusiveStartKey, "id")
		start = sort.SearchStrings(ids, after) + 1
	}
	end := min(start+f.pageSize, len(ids))

	out := &dynamodb.QueryOutput{}
	for _, id := range ids[start:end] {
		out.Items = append(out.Items, f.items[id])
	}
	if end < len(ids) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: ids[end-1]}}
	}
	return out, nil
}

func (f *fakeDynamo) DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dynamodb.DescribeTableOutput{Table: &types.TableDescription{TableName: in.TableName}}, nil
}

func TestDynamoTable(t *testing.T) {
	exerciseTable(t, NewDynamoTable(newFakeDynamo(10), DefaultOrdersTable, OrderIndexes...))
}

func TestDynamoTableQueryPages(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo(2)
	repo := NewOrders(NewDynamoTable(fake, DefaultOrdersTable, OrderIndexes...))

	for _, id := range []string{"o-1", "o-2", "o-3", "o-4", "o-5"} {
		require.NoError(t, repo.Create(ctx, domain.Order{ID: id, CustomerID: "c-1", ProductID: "p", Quantity: 1}))
	}

	orders, err := repo.ListByCustomer(ctx, "c-1")
	require.NoError(t, err)
	assert.Len(t, orders, 5)
	assert.Equal(t, 3, fake.queries)

	assert.Equal(t, domain.CustomerIDIndex, aws.ToString(fake.lastQry.IndexName))
	assert.Equal(t, "customerId", fake.lastQry.ExpressionAttributeNames["#k"])
	assert.Equal(t, DefaultOrdersTable, aws.ToString(fake.lastQry.TableName))
}

func TestDynamoTableGetUsesIDKey(t *testing.T) {
	fake := newFakeDynamo(10)
	repo := NewCustomers(NewDynamoTable(fake, DefaultCustomersTable))

	_, err := repo.Get(context.Background(), "c-9")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "c-9", stringAttr(fake.lastGet.Key, "id"))
	assert.Equal(t, DefaultCustomersTable, aws.ToString(fake.lastGet.TableName))
}

func TestDynamoTableFailure(t *testing.T) {
	fake := newFakeDynamo(10)
	fake.err = errors.New("ProvisionedThroughputExceededException")
	table := NewDynamoTable(fake, DefaultOrdersTable, OrderIndexes...)
	ctx := context.Background()

	assert.ErrorIs(t, table.Put(ctx, domain.Order{ID: "o-1"}), ErrStore)

	_, err := table.Get(ctx, "o-1", &domain.Order{})
	assert.ErrorIs(t, err, ErrStore)

	var orders []domain.Order
	assert.ErrorIs(t, table.Query(ctx, OrderIndexes[0], "c-1", &orders), ErrStore)
	assert.Equal(t, 1, fake.queries, "failures are not retried")

	assert.ErrorIs(t, table.Ping(ctx), ErrStore)
}
