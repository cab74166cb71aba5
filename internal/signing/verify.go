package signing

import (
	"crypto/subtle"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
)

const (
	algorithm     = "AWS4-HMAC-SHA256"
	amzDateFormat = "20060102T150405Z"
	scopeTerminal = "aws4_request"
)

// Credential is an access key pair a receiving service trusts, with the
// name it reports for the caller.
type Credential struct {
	Name            string
	AccessKeyID     string
	SecretAccessKey string
}

// Caller identifies the sender of a verified request.
type Caller struct {
	Name        string
	AccessKeyID string
}

// Verifier checks inbound SigV4 signatures by recomputing them with the
// trusted secret for the presented access key.
type Verifier struct {
	v4      *v4.Signer
	service string
	region  string
	maxSkew time.Duration
	trusted map[string]Credential
}

// NewVerifier creates a Verifier for the given signing scope.
func NewVerifier(service, region string, maxSkew time.Duration, trusted []Credential) *Verifier {
	keys := make(map[string]Credential, len(trusted))
	for _, c := range trusted {
		keys[c.AccessKeyID] = c
	}
	return &Verifier{
		v4:      v4.NewSigner(),
		service: service,
		region:  region,
		maxSkew: maxSkew,
		trusted: keys,
	}
}

// Verify authenticates r, whose body has already been read into body.
// The returned error wraps ErrInvalidSignature or ErrUntrustedCaller.
func (v *Verifier) Verify(r *http.Request, body []byte, now time.Time) (Caller, error) {
	auth, err := parseAuthorization(r.Header.Get(HeaderAuthorization))
	if err != nil {
		return Caller{}, err
	}

	signedAt, err := time.Parse(amzDateFormat, r.Header.Get(HeaderDate))
	if err != nil {
		return Caller{}, invalid("missing or malformed " + HeaderDate)
	}
	if skew := now.Sub(signedAt); skew > v.maxSkew || -skew > v.maxSkew {
		return Caller{}, invalid("signing time outside accepted window")
	}
	if auth.date != signedAt.Format("20060102") {
		return Caller{}, invalid("credential scope date does not match " + HeaderDate)
	}
	if auth.service != v.service || auth.region != v.region {
		return Caller{}, untrusted("credential scope " + auth.region + "/" + auth.service + " not accepted")
	}

	cred, ok := v.trusted[auth.accessKeyID]
	if !ok {
		return Caller{}, untrusted("unknown access key")
	}

	expected, err := v.recompute(r, body, auth.signedHeaders, cred, signedAt)
	if err != nil {
		return Caller{}, err
	}
	if expected.signedHeaderList != auth.signedHeaderList ||
		subtle.ConstantTimeCompare([]byte(expected.signature), []byte(auth.signature)) != 1 {
		return Caller{}, invalid("signature mismatch")
	}

	return Caller{Name: cred.Name, AccessKeyID: cred.AccessKeyID}, nil
}

// recompute signs a copy of r carrying only the headers the caller signed.
// Host, Content-Length and X-Amz-Date are regenerated by the signer.
func (v *Verifier) recompute(r *http.Request, body []byte, signed []string, cred Credential, at time.Time) (authorization, error) {
	u := &url.URL{
		Scheme:   "https",
		Host:     r.Host,
		Path:     r.URL.Path,
		RawPath:  r.URL.RawPath,
		RawQuery: r.URL.RawQuery,
	}
	req := &http.Request{
		Method:        r.Method,
		URL:           u,
		Host:          r.Host,
		Header:        make(http.Header),
		ContentLength: int64(len(body)),
	}
	req = req.WithContext(r.Context())

	creds := aws.Credentials{AccessKeyID: cred.AccessKeyID, SecretAccessKey: cred.SecretAccessKey}
	for _, name := range signed {
		switch name {
		case "host", "content-length", "x-amz-date", "authorization":
			continue
		case "x-amz-security-token":
			creds.SessionToken = r.Header.Get(HeaderSecurityToken)
			continue
		}
		values := r.Header.Values(name)
		if len(values) == 0 {
			return authorization{}, invalid("signed header " + name + " is missing")
		}
		req.Header[http.CanonicalHeaderKey(name)] = append([]string(nil), values...)
	}

	if err := v.v4.SignHTTP(r.Context(), creds, req, PayloadHash(body), v.service, v.region, at); err != nil {
		return authorization{}, invalid("recompute signature: " + err.Error())
	}
	return parseAuthorization(req.Header.Get(HeaderAuthorization))
}

type authorization struct {
	accessKeyID      string
	date             string
	region           string
	service          string
	signedHeaders    []string
	signedHeaderList string
	signature        string
}

// parseAuthorization reads
// "AWS4-HMAC-SHA256 Credential=AKID/20240101/region/service/aws4_request, SignedHeaders=a;b, Signature=hex".
func parseAuthorization(header string) (authorization, error) {
	if header == "" {
		return authorization{}, invalid("missing " + HeaderAuthorization + " header")
	}
	rest, ok := strings.CutPrefix(header, algorithm+" ")
	if !ok {
		return authorization{}, invalid("unsupported signing algorithm")
	}

	var a authorization
	for _, part := range strings.Split(rest, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return authorization{}, invalid("malformed " + HeaderAuthorization + " header")
		}
		switch key {
		case "Credential":
			scope := strings.Split(value, "/")
			if len(scope) != 5 || scope[4] != scopeTerminal {
				return authorization{}, invalid("malformed credential scope")
			}
			a.accessKeyID, a.date, a.region, a.service = scope[0], scope[1], scope[2], scope[3]
		case "SignedHeaders":
			a.signedHeaderList = value
			a.signedHeaders = strings.Split(value, ";")
		case "Signature":
			a.signature = value
		}
	}

	if a.accessKeyID == "" || a.signedHeaderList == "" || a.signature == "" {
		return authorization{}, invalid("incomplete " + HeaderAuthorization + " header")
	}
	return a, nil
}
