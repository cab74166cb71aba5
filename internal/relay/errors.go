package relay

import (
	"errors"
	"fmt"
)

// ErrDomainCall marks any failed call to a domain API.
var ErrDomainCall = errors.New("domain call failed")

// Category classifies where a domain call failed.
type Category string

const (
	// CategoryRequest: the request could not be built (bad base URL, missing path argument, unencodable body).
	CategoryRequest Category = "request"
	// CategorySigning: credentials could not be retrieved or the request could not be signed.
	CategorySigning Category = "signing"
	// CategoryTransport: no HTTP response was received.
	CategoryTransport Category = "transport"
	// CategoryStatus: the domain API answered with a non-2xx status.
	CategoryStatus Category = "status"
	// CategoryDecode: a 2xx body did not decode into the expected type.
	CategoryDecode Category = "decode"
)

// DomainCallError describes a failed domain call. StatusCode is set only
// for CategoryStatus, Message carries the domain API's response body or
// the underlying cause.
type DomainCallError struct {
	Operation  string
	StatusCode int
	Category   Category
	Message    string
	Err        error
}

func (e *DomainCallError) Error() string {
	if e.Category == CategoryStatus {
		return fmt.Sprintf("%s: domain API returned %d: %s", e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s failure: %s", e.Operation, e.Category, e.Message)
}

func (e *DomainCallError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrDomainCall, e.Err}
	}
	return []error{ErrDomainCall}
}

func callErr(op string, cat Category, err error) *DomainCallError {
	return &DomainCallError{Operation: op, Category: cat, Message: err.Error(), Err: err}
}
