package logger

import (
	"context"

	"github.com/google/uuid"
)

// Entry is a logger bound to a fixed set of fields. Every inbound call gets
// one via Correlation so that all lines it emits share a correlationId.
type Entry struct {
	fields []interface{}
}

// Correlation starts a correlation context for one inbound call.
func Correlation(operation string) *Entry {
	return &Entry{fields: []interface{}{
		"correlationId", uuid.NewString(),
		"operation", operation,
	}}
}

// With returns a copy of the entry carrying additional key-value pairs.
func (e *Entry) With(fields ...interface{}) *Entry {
	merged := make([]interface{}, 0, len(e.fields)+len(fields))
	merged = append(merged, e.fields...)
	merged = append(merged, fields...)
	return &Entry{fields: merged}
}

// CorrelationID returns the entry's correlation id, or "" if it has none.
func (e *Entry) CorrelationID() string {
	for i := 0; i < len(e.fields)-1; i += 2 {
		if e.fields[i] == "correlationId" {
			id, _ := e.fields[i+1].(string)
			return id
		}
	}
	return ""
}

func (e *Entry) Debug(msg string, fields ...interface{}) { Debug(msg, e.merge(fields)...) }
func (e *Entry) Info(msg string, fields ...interface{})  { Info(msg, e.merge(fields)...) }
func (e *Entry) Warn(msg string, fields ...interface{})  { Warn(msg, e.merge(fields)...) }
func (e *Entry) Error(msg string, fields ...interface{}) { Error(msg, e.merge(fields)...) }

func (e *Entry) merge(fields []interface{}) []interface{} {
	return e.With(fields...).fields
}

type entryKey struct{}

// WithEntry stores the entry in ctx.
func WithEntry(ctx context.Context, e *Entry) context.Context {
	return context.WithValue(ctx, entryKey{}, e)
}

// From returns the entry stored in ctx, or a fresh uncorrelated one.
func From(ctx context.Context) *Entry {
	if e, ok := ctx.Value(entryKey{}).(*Entry); ok && e != nil {
		return e
	}
	return &Entry{}
}
