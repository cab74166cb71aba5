package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// Table is one logical key-value table keyed by the "id" attribute, with
// optional secondary indexes on other top-level attributes.
//
// Items are plain structs carrying json (and dynamodbav) tags. Put is
// unconditional and last-write-wins.
type Table interface {
	Put(ctx context.Context, item any) error
	// Get decodes the item with the given id into out and reports whether it exists.
	Get(ctx context.Context, id string, out any) (bool, error)
	// Query decodes every item whose index attribute equals value into out,
	// which must point to a slice. No match yields an empty slice.
	Query(ctx context.Context, index Index, value string, out any) error
	Ping(ctx context.Context) error
	Close() error
}

// Index is a secondary index on one string attribute.
type Index struct {
	Name      string
	Attribute string
}

// document is an item flattened to JSON together with its top-level attributes.
type document struct {
	id    string
	data  []byte
	attrs map[string]any
}

func encode(item any) (document, error) {
	data, err := json.Marshal(item)
	if err != nil {
		return document{}, fmt.Errorf("encode item: %w", err)
	}
	return decode(data)
}

func decode(data []byte) (document, error) {
	var attrs map[string]any
	if err := json.Unmarshal(data, &attrs); err != nil {
		return document{}, fmt.Errorf("item is not a JSON object: %w", err)
	}
	id, _ := attrs["id"].(string)
	if id == "" {
		return document{}, ErrMissingID
	}
	return document{id: id, data: data, attrs: attrs}, nil
}

// attr returns a non-empty string attribute.
func (d document) attr(name string) (string, bool) {
	v, ok := d.attrs[name].(string)
	return v, ok && v != ""
}

// decodeList unmarshals JSON objects into out as one array, so an empty
// input still produces an empty, non-nil slice.
func decodeList(blobs [][]byte, out any) error {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, b := range blobs {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return json.Unmarshal(buf.Bytes(), out)
}
