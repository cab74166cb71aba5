package signing

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
)

// Header names written by the signer.
const (
	HeaderAuthorization = "Authorization"
	HeaderDate          = "X-Amz-Date"
	HeaderSecurityToken = "X-Amz-Security-Token"
)

// DefaultService is the signing name of API Gateway execute-api endpoints.
const DefaultService = "execute-api"

// Descriptor is the unsigned intent of an internal call. Hostname is the
// value of the host header and may carry a port. Header must not contain
// Host; it is derived from Hostname.
type Descriptor struct {
	Method   string
	Hostname string
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte
}

// SignedRequest is a Descriptor whose Header carries the signature and its
// supporting date and credential headers.
type SignedRequest struct {
	Descriptor
	SignedAt time.Time
}

// Authorization returns the signature header value.
func (r *SignedRequest) Authorization() string {
	return r.Header.Get(HeaderAuthorization)
}

// Signer signs descriptors with SigV4. It holds no credentials and is safe
// for concurrent use.
type Signer struct {
	v4 *v4.Signer
}

// NewSigner creates a Signer.
func NewSigner() *Signer {
	return &Signer{v4: v4.NewSigner()}
}

// Sign computes the signature of d for the given credentials, target
// service and region at instant at. Signing the same descriptor with the
// same credentials at the same instant always yields the same signature.
func (s *Signer) Sign(ctx context.Context, d Descriptor, creds aws.Credentials, service, region string, at time.Time) (*SignedRequest, error) {
	switch {
	case creds.AccessKeyID == "":
		return nil, &SigningError{Reason: "access key id is missing"}
	case creds.SecretAccessKey == "":
		return nil, &SigningError{Reason: "secret access key is missing"}
	case region == "":
		return nil, &SigningError{Reason: "region is missing"}
	case service == "":
		return nil, &SigningError{Reason: "service name is missing"}
	case d.Hostname == "":
		return nil, &SigningError{Reason: "descriptor hostname is missing"}
	case d.Method == "":
		return nil, &SigningError{Reason: "descriptor method is missing"}
	}

	req, err := d.toHTTP(ctx)
	if err != nil {
		return nil, &SigningError{Reason: "build request", Err: err}
	}
	if err := s.v4.SignHTTP(ctx, creds, req, PayloadHash(d.Body), service, region, at); err != nil {
		return nil, &SigningError{Reason: "compute signature", Err: err}
	}

	signed := d
	signed.Header = req.Header.Clone()
	signed.Body = append([]byte(nil), d.Body...)
	return &SignedRequest{Descriptor: signed, SignedAt: at.UTC().Truncate(time.Second)}, nil
}

// PayloadHash is the hex SHA-256 of body, as used in the canonical request.
func PayloadHash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// toHTTP builds the request the v4 signer works on. The scheme is
// irrelevant to the signature.
func (d Descriptor) toHTTP(ctx context.Context) (*http.Request, error) {
	u := &url.URL{Scheme: "https", Host: d.Hostname, RawQuery: d.RawQuery}
	if err := setPath(u, d.Path); err != nil {
		return nil, err
	}

	var body io.Reader
	if len(d.Body) > 0 {
		body = bytes.NewReader(d.Body)
	}
	req, err := http.NewRequestWithContext(ctx, d.Method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Host = d.Hostname
	if d.Header != nil {
		req.Header = d.Header.Clone()
	}
	req.Header.Del("Host")
	return req, nil
}

// setPath accepts an already escaped path and keeps its escaping.
func setPath(u *url.URL, escaped string) error {
	if escaped == "" {
		escaped = "/"
	}
	p, err := url.PathUnescape(escaped)
	if err != nil {
		return err
	}
	u.Path = p
	u.RawPath = escaped
	return nil
}
