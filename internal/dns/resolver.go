// Package dns resolves domains to IPv4 addresses through a DNS-over-HTTPS
// JSON API (the dns.google "resolve" dialect).
package dns

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/netip"
	"net/url"

	"github.com/avast/retry-go/v4"
	mdns "github.com/miekg/dns"
)

// ErrNoRecords is returned when a response carries no usable A records.
var ErrNoRecords = errors.New("no A records found")

// DecodeError reports a response body that is not valid JSON.
type DecodeError struct {
	Domain string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response for %s: %v", e.Domain, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// response is the subset of the JSON resolve API the tool reads.
type response struct {
	Status int      `json:"Status"`
	Answer []answer `json:"Answer"`
}

type answer struct {
	Name string `json:"name"`
	Type uint16 `json:"type"`
	TTL  uint32 `json:"TTL"`
	Data string `json:"data"`
}

// Resolver resolves domain names through an HTTP JSON DNS endpoint.
type Resolver struct {
	Endpoint string // e.g. "https://dns.google/resolve"
	Client   *http.Client
	Attempts uint // 1 = no retry
	Logger   *slog.Logger
}

// NewResolver creates a resolver that queries the given endpoint. A nil
// client means http.DefaultClient; a nil logger discards.
func NewResolver(endpoint string, client *http.Client, logger *slog.Logger) *Resolver {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{
		Endpoint: endpoint,
		Client:   client,
		Attempts: 1,
		Logger:   logger,
	}
}

// Resolve returns the IPv4 addresses from the answer section, in response
// order. Entries that are not IPv4 addresses (CNAME targets, AAAA records)
// are skipped. ErrNoRecords is returned, wrapped, when nothing is left.
func (r *Resolver) Resolve(ctx context.Context, domain string) ([]string, error) {
	attempts := r.Attempts
	if attempts == 0 {
		attempts = 1
	}
	return retry.DoWithData(
		func() ([]string, error) { return r.resolveOnce(ctx, domain) },
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransient),
		retry.OnRetry(func(n uint, err error) {
			r.Logger.Warn("resolve failed, retrying", "domain", domain, "attempt", n+1, "error", err)
		}),
	)
}

// ResolveAll resolves every domain in order and concatenates the results.
// Domains without A records are logged and skipped; any other error aborts.
func (r *Resolver) ResolveAll(ctx context.Context, domains []string) ([]string, error) {
	var ips []string
	for _, d := range domains {
		got, err := r.Resolve(ctx, d)
		if errors.Is(err, ErrNoRecords) {
			r.Logger.Warn("domain has no A records", "domain", d, "error", err)
			continue
		}
		if err != nil {
			return nil, err
		}
		ips = append(ips, got...)
	}
	return ips, nil
}

func (r *Resolver) resolveOnce(ctx context.Context, domain string) ([]string, error) {
	u, err := r.queryURL(domain)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", domain, err)
	}
	req.Header.Set("Accept", "application/dns-json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", domain, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: read body: %w", domain, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("resolve %s: status %d", domain, resp.StatusCode)
	}

	var parsed response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &DecodeError{Domain: domain, Err: err}
	}

	// NOERROR and NXDOMAIN are answers; anything else (SERVFAIL, REFUSED)
	// is a failed lookup.
	if parsed.Status != mdns.RcodeSuccess && parsed.Status != mdns.RcodeNameError {
		return nil, fmt.Errorf("resolve %s: rcode %s", domain, rcodeName(parsed.Status))
	}

	ips := make([]string, 0, len(parsed.Answer))
	for _, a := range parsed.Answer {
		addr, err := netip.ParseAddr(a.Data)
		if err != nil || !addr.Is4() {
			r.Logger.Debug("skipping non-IPv4 answer",
				"domain", domain, "type", typeName(a.Type), "data", a.Data)
			continue
		}
		ips = append(ips, a.Data)
	}

	r.Logger.Debug("resolved", "domain", domain, "rcode", rcodeName(parsed.Status), "ips", ips)

	if len(ips) == 0 {
		return nil, fmt.Errorf("%s (rcode %s): %w", domain, rcodeName(parsed.Status), ErrNoRecords)
	}
	return ips, nil
}

func (r *Resolver) queryURL(domain string) (string, error) {
	u, err := url.Parse(r.Endpoint)
	if err != nil {
		return "", fmt.Errorf("resolver endpoint %q: %w", r.Endpoint, err)
	}
	q := u.Query()
	q.Set("name", domain)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// isTransient reports whether a failed lookup is worth repeating.
func isTransient(err error) bool {
	var decodeErr *DecodeError
	return !errors.Is(err, ErrNoRecords) && !errors.As(err, &decodeErr)
}

func typeName(t uint16) string {
	if s, ok := mdns.TypeToString[t]; ok {
		return s
	}
	return fmt.Sprintf("TYPE%d", t)
}

func rcodeName(rcode int) string {
	if s, ok := mdns.RcodeToString[rcode]; ok {
		return s
	}
	return fmt.Sprintf("RCODE%d", rcode)
}
