// Package signing authenticates internal service-to-service calls with AWS
// Signature Version 4.
//
// The experience layer signs every request it relays to a domain API with
// Signer; the domain APIs recompute the signature with Verifier against the
// credentials they trust. Neither side keeps process-wide credential state:
// credentials are passed in on every call.
package signing
