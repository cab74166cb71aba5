package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// PostgresTable keeps items as JSONB documents in a two-column table
// (id TEXT PRIMARY KEY, data JSONB). Indexes are expression indexes on
// data->>'attribute'.
type PostgresTable struct {
	db      *sql.DB
	name    string
	ident   string
	indexes []Index
}

// NewPostgresTable creates the table and its indexes if they do not exist.
func NewPostgresTable(ctx context.Context, db *sql.DB, name string, indexes ...Index) (*PostgresTable, error) {
	t := &PostgresTable{db: db, name: name, ident: pq.QuoteIdentifier(name), indexes: indexes}

	if _, err := db.ExecContext(ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (id TEXT PRIMARY KEY, data JSONB NOT NULL)`, t.ident,
	)); err != nil {
		return nil, storeErr("create table", name, err)
	}
	for _, idx := range indexes {
		if _, err := db.ExecContext(ctx, fmt.Sprintf(
			`CREATE INDEX IF NOT EXISTS %s ON %s ((data->>%s))`,
			pq.QuoteIdentifier(name+"_"+idx.Name), t.ident, pq.QuoteLiteral(idx.Attribute),
		)); err != nil {
			return nil, storeErr("create index", name, err)
		}
	}
	return t, nil
}

// OpenPostgres opens databaseURL with the lib/pq driver and prepares the table.
func OpenPostgres(ctx context.Context, databaseURL, name string, indexes ...Index) (*PostgresTable, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	t, err := NewPostgresTable(ctx, db, name, indexes...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return t, nil
}

func (t *PostgresTable) Put(ctx context.Context, item any) error {
	doc, err := encode(item)
	if err != nil {
		return storeErr("put", t.name, err)
	}
	_, err = t.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, data) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data
	`, t.ident), doc.id, string(doc.data))
	return storeErr("put", t.name, err)
}

func (t *PostgresTable) Get(ctx context.Context, id string, out any) (bool, error) {
	var data []byte
	err := t.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT data FROM %s WHERE id = $1`, t.ident), id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, storeErr("get", t.name, err)
	}
	return true, storeErr("get", t.name, json.Unmarshal(data, out))
}

func (t *PostgresTable) Query(ctx context.Context, index Index, value string, out any) error {
	rows, err := t.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT data FROM %s WHERE data->>%s = $1 ORDER BY id`, t.ident, pq.QuoteLiteral(index.Attribute)),
		value,
	)
	if err != nil {
		return storeErr("query", t.name, err)
	}
	defer rows.Close()

	var blobs [][]byte
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return storeErr("query", t.name, err)
		}
		blobs = append(blobs, data)
	}
	if err := rows.Err(); err != nil {
		return storeErr("query", t.name, err)
	}
	return storeErr("query", t.name, decodeList(blobs, out))
}

func (t *PostgresTable) Ping(ctx context.Context) error {
	return storeErr("ping", t.name, t.db.PingContext(ctx))
}

func (t *PostgresTable) Close() error {
	return t.db.Close()
}
