package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrStore marks any failure of the underlying store.
	ErrStore = errors.New("store operation failed")
	// ErrMissingID is returned when an item has no string "id" attribute.
	ErrMissingID = errors.New("item has no id attribute")
	// ErrUnknownBackend is returned by Open for an unsupported storage type.
	ErrUnknownBackend = errors.New("unknown storage type")
)

// StoreError wraps a backend failure with the operation and table it hit.
type StoreError struct {
	Op    string
	Table string
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

func (e *StoreError) Unwrap() []error {
	return []error{ErrStore, e.Err}
}

func storeErr(op, table string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Table: table, Err: err}
}
