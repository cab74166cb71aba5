// Package relay is the experience layer's client for the private domain
// APIs. Each call builds a request from an Endpoint, signs it with SigV4,
// sends it once and decodes the JSON answer.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/ignite/golden-ipa/internal/metrics"
	"github.com/ignite/golden-ipa/internal/pkg/logger"
	"github.com/ignite/golden-ipa/internal/signing"
)

// HeaderConsumerID identifies the calling layer to the domain APIs.
const HeaderConsumerID = "X-Consumer-Id"

// DefaultConsumerID is sent when no consumer id is configured.
const DefaultConsumerID = "experience-layer-bff"

// maxErrorBody bounds how much of a failed response is kept in the error.
const maxErrorBody = 4 << 10

// HTTPDoer is the interface for executing HTTP requests.
// *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures a Client.
type Options struct {
	Credentials aws.CredentialsProvider
	Doer        HTTPDoer // defaults to an *http.Client with Timeout
	Timeout     time.Duration
	ConsumerID  string
	Service     string // signing service, defaults to execute-api
	Region      string
	Metrics     *metrics.Relay
	Now         func() time.Time
}

// Client sends signed requests to domain APIs. It holds no per-call state
// and is safe for concurrent use.
type Client struct {
	doer       HTTPDoer
	signer     *signing.Signer
	creds      aws.CredentialsProvider
	consumerID string
	service    string
	region     string
	metrics    *metrics.Relay
	now        func() time.Time
}

// NewClient creates a Client.
func NewClient(opts Options) *Client {
	doer := opts.Doer
	if doer == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		doer = &http.Client{Timeout: timeout}
	}
	consumer := opts.ConsumerID
	if consumer == "" {
		consumer = DefaultConsumerID
	}
	service := opts.Service
	if service == "" {
		service = signing.DefaultService
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Client{
		doer:       doer,
		signer:     signing.NewSigner(),
		creds:      opts.Credentials,
		consumerID: consumer,
		service:    service,
		region:     opts.Region,
		metrics:    opts.Metrics,
		now:        now,
	}
}

// Call performs ep against the domain API at baseURL and decodes a 2xx
// JSON answer into T. body is JSON-encoded when non-nil. The request is
// sent exactly once and is not cancelled when ctx is; the client timeout
// bounds it. Every failure is a *DomainCallError.
func Call[T any](ctx context.Context, c *Client, ep Endpoint, baseURL string, pathArgs map[string]string, body any) (T, error) {
	var out T
	start := time.Now()
	log := logger.From(ctx).With("domainOperation", ep.Operation)

	err := c.do(ctx, ep, baseURL, pathArgs, body, &out, log)

	outcome := metrics.OutcomeSuccess
	var dce *DomainCallError
	if errors.As(err, &dce) {
		outcome = string(dce.Category)
	}
	c.metrics.ObserveCall(ep.Operation, outcome, time.Since(start))

	if err != nil {
		log.Warn("domain call failed", "error", err.Error(), "durationMs", time.Since(start).Milliseconds())
		var zero T
		return zero, err
	}
	log.Info("domain call succeeded", "durationMs", time.Since(start).Milliseconds())
	return out, nil
}

func (c *Client) do(ctx context.Context, ep Endpoint, baseURL string, pathArgs map[string]string, body any, out any, log *logger.Entry) error {
	desc, target, err := c.describe(ep, baseURL, pathArgs, body)
	if err != nil {
		return callErr(ep.Operation, CategoryRequest, err)
	}

	if c.creds == nil {
		return callErr(ep.Operation, CategorySigning, errors.New("no credentials provider configured"))
	}
	creds, err := c.creds.Retrieve(ctx)
	if err != nil {
		return callErr(ep.Operation, CategorySigning, fmt.Errorf("retrieving credentials: %w", err))
	}
	signed, err := c.signer.Sign(ctx, desc, creds, c.service, c.region, c.now())
	if err != nil {
		return callErr(ep.Operation, CategorySigning, err)
	}

	var reqBody io.Reader
	if len(signed.Body) > 0 {
		reqBody = bytes.NewReader(signed.Body)
	}
	req, err := http.NewRequestWithContext(context.WithoutCancel(ctx), signed.Method, target.String(), reqBody)
	if err != nil {
		return callErr(ep.Operation, CategoryRequest, err)
	}
	req.Host = signed.Hostname
	req.Header = signed.Header.Clone()

	log.Info("domain call", "method", signed.Method, "host", signed.Hostname, "path", signed.Path)

	resp, err := c.doer.Do(req)
	if err != nil {
		return callErr(ep.Operation, CategoryTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		dce := &DomainCallError{
			Operation:  ep.Operation,
			StatusCode: resp.StatusCode,
			Category:   CategoryStatus,
		}
		msg, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if err != nil {
			dce.Message = "reading error body: " + err.Error()
			dce.Err = err
			return dce
		}
		dce.Message = strings.TrimSpace(string(msg))
		return dce
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return callErr(ep.Operation, CategoryDecode, fmt.Errorf("decoding %d response: %w", resp.StatusCode, err))
	}
	return nil
}

// describe builds the unsigned descriptor and the URL it is sent to.
func (c *Client) describe(ep Endpoint, baseURL string, pathArgs map[string]string, body any) (signing.Descriptor, *url.URL, error) {
	path, err := ep.Expand(pathArgs)
	if err != nil {
		return signing.Descriptor{}, nil, err
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return signing.Descriptor{}, nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return signing.Descriptor{}, nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}

	escaped := joinPath(base.EscapedPath(), path)
	unescaped, err := url.PathUnescape(escaped)
	if err != nil {
		return signing.Descriptor{}, nil, err
	}
	target := &url.URL{Scheme: base.Scheme, Host: base.Host, Path: unescaped, RawPath: escaped}

	header := make(http.Header)
	header.Set("Accept", "application/json")
	header.Set(HeaderConsumerID, c.consumerID)

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return signing.Descriptor{}, nil, fmt.Errorf("encoding body: %w", err)
		}
		header.Set("Content-Type", "application/json")
	}

	return signing.Descriptor{
		Method:   ep.Method,
		Hostname: base.Host,
		Path:     escaped,
		Header:   header,
		Body:     payload,
	}, target, nil
}
