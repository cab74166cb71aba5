// Package storage is the persistence layer of the domain APIs: a small
// key-value Table abstraction with DynamoDB, Redis, PostgreSQL and
// in-memory backends, and typed repositories for customers and orders.
package storage

import (
	"context"
	"fmt"

	"github.com/ignite/golden-ipa/internal/config"
	"github.com/ignite/golden-ipa/internal/pkg/logger"
)

// Default table names, matching the deployed stacks.
const (
	DefaultCustomersTable = "ipa-customers-table"
	DefaultOrdersTable    = "ipa-orders-table"
)

// Open creates the Table selected by cfg.Storage.Type. The table name is
// cfg.Storage.TableName, or defaultName when unset.
func Open(ctx context.Context, cfg *config.Config, defaultName string, indexes ...Index) (Table, error) {
	name := cfg.Storage.TableName
	if name == "" {
		name = defaultName
	}

	var (
		table Table
		err   error
	)
	switch cfg.Storage.Type {
	case "dynamodb", "aws":
		client, cerr := NewDynamoClient(ctx, cfg.AWS.Region, cfg.AWS.GetProfile(), cfg.AWS.DynamoDBEndpoint)
		if cerr != nil {
			return nil, fmt.Errorf("initializing DynamoDB: %w", cerr)
		}
		table = NewDynamoTable(client, name, indexes...)
	case "redis":
		table, err = OpenRedis(ctx, cfg.Storage.RedisURL, name, indexes...)
	case "postgres":
		table, err = OpenPostgres(ctx, cfg.Storage.DatabaseURL, name, indexes...)
	case "memory":
		table = NewMemoryTable(name)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Storage.Type)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("storage opened", "type", cfg.Storage.Type, "table", name)
	return table, nil
}
