package domainapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"time"

	"github.com/ignite/golden-ipa/internal/config"
	"github.com/ignite/golden-ipa/internal/pkg/httputil"
	"github.com/ignite/golden-ipa/internal/pkg/logger"
	"github.com/ignite/golden-ipa/internal/signing"
)

// maxBodyBytes bounds every request body a domain API reads.
const maxBodyBytes = 1 << 20

// Authenticator admits only internal callers: requests from the allowed
// private networks that carry a valid SigV4 signature from a trusted
// credential. Either check is skipped when not configured.
type Authenticator struct {
	networks []netip.Prefix
	verifier *signing.Verifier
	now      func() time.Time
}

// NewAuthenticator builds an Authenticator from configuration.
func NewAuthenticator(cfg config.AuthConfig) (*Authenticator, error) {
	a := &Authenticator{now: time.Now}

	for _, cidr := range cfg.AllowedCIDRs {
		prefix, err := netip.ParsePrefix(cidr)
		if err != nil {
			return nil, fmt.Errorf("auth: invalid allowed CIDR %q: %w", cidr, err)
		}
		a.networks = append(a.networks, prefix.Masked())
	}

	if cfg.Enabled {
		if len(cfg.TrustedCallers) == 0 {
			return nil, errors.New("auth: enabled without trusted callers")
		}
		trusted := make([]signing.Credential, 0, len(cfg.TrustedCallers))
		for _, c := range cfg.TrustedCallers {
			trusted = append(trusted, signing.Credential{
				Name:            c.Name,
				AccessKeyID:     c.AccessKeyID,
				SecretAccessKey: c.SecretAccessKey,
			})
		}
		a.verifier = signing.NewVerifier(cfg.Service, cfg.Region, cfg.MaxClockSkew(), trusted)
	}
	return a, nil
}

// Middleware enforces the network origin and then the signature.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(a.networks) > 0 && !a.privateOrigin(r) {
			logger.Warn("request from outside private network refused", "remoteAddr", r.RemoteAddr, "path", r.URL.Path)
			httputil.Forbidden(w, "forbidden")
			return
		}

		if a.verifier == nil {
			next.ServeHTTP(w, r)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			httputil.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		caller, err := a.verifier.Verify(r, body, a.now())
		if err != nil {
			logger.Warn("request signature refused", "error", err.Error(), "path", r.URL.Path)
			if errors.Is(err, signing.ErrUntrustedCaller) {
				httputil.Forbidden(w, "forbidden")
				return
			}
			httputil.Unauthorized(w, "unauthorized")
			return
		}

		next.ServeHTTP(w, r.WithContext(withCaller(r.Context(), caller)))
	})
}

// privateOrigin checks the TCP peer. Forwarded headers are ignored.
func (a *Authenticator) privateOrigin(r *http.Request) bool {
	ap, err := netip.ParseAddrPort(r.RemoteAddr)
	if err != nil {
		return false
	}
	addr := ap.Addr().Unmap()
	for _, n := range a.networks {
		if n.Contains(addr) {
			return true
		}
	}
	return false
}

type callerKey struct{}

func withCaller(ctx context.Context, c signing.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFrom returns the verified caller of the request, if any.
func CallerFrom(ctx context.Context) (signing.Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(signing.Caller)
	return c, ok
}
