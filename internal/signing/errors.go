package signing

import (
	"errors"
	"fmt"
)

// Sentinel errors for request signing and verification.
var (
	// ErrSigning is returned when a request cannot be signed.
	ErrSigning = errors.New("request signing failed")
	// ErrInvalidSignature marks a missing, malformed, stale or mismatching signature.
	ErrInvalidSignature = errors.New("invalid request signature")
	// ErrUntrustedCaller marks a well-formed signature from a credential or scope
	// the receiving service does not recognise.
	ErrUntrustedCaller = errors.New("untrusted caller")
)

// SigningError describes why a descriptor could not be signed.
type SigningError struct {
	Reason string
	Err    error
}

func (e *SigningError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("signing: %s: %v", e.Reason, e.Err)
	}
	return "signing: " + e.Reason
}

func (e *SigningError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrSigning, e.Err}
	}
	return []error{ErrSigning}
}

// VerificationError describes why an inbound signature was rejected.
type VerificationError struct {
	Reason string
	kind   error
}

func (e *VerificationError) Error() string { return "signature verification: " + e.Reason }

func (e *VerificationError) Unwrap() error { return e.kind }

func invalid(reason string) error {
	return &VerificationError{Reason: reason, kind: ErrInvalidSignature}
}

func untrusted(reason string) error {
	return &VerificationError{Reason: reason, kind: ErrUntrustedCaller}
}
