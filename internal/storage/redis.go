package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

// RedisTable stores each item as a JSON string under "<table>:<id>" and
// keeps one set of ids per indexed value under "<table>:idx:<index>:<value>".
type RedisTable struct {
	client  *redis.Client
	name    string
	indexes []Index
}

// NewRedisTable creates a table on an existing client.
func NewRedisTable(client *redis.Client, name string, indexes ...Index) *RedisTable {
	return &RedisTable{client: client, name: name, indexes: indexes}
}

// OpenRedis connects to redisURL and verifies the connection.
func OpenRedis(ctx context.Context, redisURL, name string, indexes ...Index) (*RedisTable, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return NewRedisTable(client, name, indexes...), nil
}

func (t *RedisTable) itemKey(id string) string {
	return t.name + ":" + id
}

func (t *RedisTable) indexKey(index Index, value string) string {
	return fmt.Sprintf("%s:idx:%s:%s", t.name, index.Name, value)
}

// Put writes the item and its index memberships in one MULTI/EXEC.
func (t *RedisTable) Put(ctx context.Context, item any) error {
	doc, err := encode(item)
	if err != nil {
		return storeErr("put", t.name, err)
	}

	pipe := t.client.TxPipeline()
	pipe.Set(ctx, t.itemKey(doc.id), doc.data, 0)
	for _, idx := range t.indexes {
		if v, ok := doc.attr(idx.Attribute); ok {
			pipe.SAdd(ctx, t.indexKey(idx, v), doc.id)
		}
	}
	_, err = pipe.Exec(ctx)
	return storeErr("put", t.name, err)
}

func (t *RedisTable) Get(ctx context.Context, id string, out any) (bool, error) {
	data, err := t.client.Get(ctx, t.itemKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, storeErr("get", t.name, err)
	}
	return true, storeErr("get", t.name, json.Unmarshal(data, out))
}

// Query reads the index set and fetches its members with MGET. Members
// that no longer exist, or whose attribute has since changed, are skipped.
func (t *RedisTable) Query(ctx context.Context, index Index, value string, out any) error {
	ids, err := t.client.SMembers(ctx, t.indexKey(index, value)).Result()
	if err != nil {
		return storeErr("query", t.name, err)
	}
	if len(ids) == 0 {
		return storeErr("query", t.name, decodeList(nil, out))
	}

	sort.Strings(ids)
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = t.itemKey(id)
	}
	vals, err := t.client.MGet(ctx, keys...).Result()
	if err != nil {
		return storeErr("query", t.name, err)
	}

	blobs := make([][]byte, 0, len(vals))
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		doc, err := decode([]byte(s))
		if err != nil {
			return storeErr("query", t.name, err)
		}
		if attr, ok := doc.attr(index.Attribute); !ok || attr != value {
			continue
		}
		blobs = append(blobs, doc.data)
	}
	return storeErr("query", t.name, decodeList(blobs, out))
}

func (t *RedisTable) Ping(ctx context.Context) error {
	return storeErr("ping", t.name, t.client.Ping(ctx).Err())
}

func (t *RedisTable) Close() error {
	return t.client.Close()
}
