// Package breach checks passwords against the Pwned Passwords corpus using a
// k-anonymity range query: only the first five hex characters of the SHA-1
// digest leave the process.
package breach

import (
	"bufio"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.pwnedpasswords.com"
	DefaultTimeout = 5 * time.Second

	// CommonThreshold is the breach count above which a password is
	// considered common.
	CommonThreshold = 1000

	prefixLen = 5
	suffixLen = 35

	maxBodyBytes = 4 << 20
	userAgent    = "safestudy-breach-checker"
)

// Reasons reported in Result.Reason. The underlying error is only logged.
const (
	ReasonTimeout     = "timeout"
	ReasonCanceled    = "canceled"
	ReasonUpstream    = "upstream_error"
	ReasonMalformed   = "malformed_response"
	ReasonUnavailable = "unavailable"
)

var (
	ErrUnexpectedStatus  = errors.New("unexpected response status")
	ErrMalformedResponse = errors.New("malformed range response")
)

// Status is the three-way outcome shown to users.
type Status string

const (
	StatusBreached     Status = "breached"
	StatusNotBreached  Status = "not_breached"
	StatusUndetermined Status = "undetermined"
)

// Result is the outcome of one lookup. LookupFailed means the corpus could
// not be consulted; it must not be read as "not breached".
type Result struct {
	Breached     bool   `json:"breached"`
	Count        int64  `json:"count"`
	LookupFailed bool   `json:"lookup_failed"`
	Reason       string `json:"reason,omitempty"`
}

// Status collapses the result into breached, not_breached or undetermined.
func (r Result) Status() Status {
	switch {
	case r.LookupFailed:
		return StatusUndetermined
	case r.Breached:
		return StatusBreached
	default:
		return StatusNotBreached
	}
}

// Common reports whether the password shows up in so many breaches that
// it belongs on every attacker's wordlist.
func (r Result) Common() bool {
	return r.Breached && r.Count > CommonThreshold
}

// Checker queries a range endpoint compatible with api.pwnedpasswords.com.
// It holds no per-call state and is safe for concurrent use.
type Checker struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	limiter *rate.Limiter
}

// Option configures a Checker.
type Option func(*Checker)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(ch *Checker) { ch.client = c }
}

// WithTimeout bounds every lookup.
func WithTimeout(d time.Duration) Option {
	return func(ch *Checker) { ch.timeout = d }
}

// WithRateLimit caps outbound lookups per second across all callers.
func WithRateLimit(rps float64, burst int) Option {
	return func(ch *Checker) { ch.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// NewChecker returns a Checker for baseURL. An empty baseURL selects the
// public service.
func NewChecker(baseURL string, opts ...Option) *Checker {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Checker{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fingerprint returns the upper-case SHA-1 hex digest of password split
// into the 5-character range prefix and the 35-character suffix.
func Fingerprint(password string) (prefix, suffix string) {
	sum := sha1.Sum([]byte(password))
	digest := strings.ToUpper(hex.EncodeToString(sum[:]))
	return digest[:prefixLen], digest[prefixLen:]
}

// Check looks password up in the corpus. It never returns an error: any
// failure is reported as LookupFailed with Breached false.
func (c *Checker) Check(ctx context.Context, password string) Result {
	prefix, suffix := Fingerprint(password)

	count, err := c.lookup(ctx, prefix, suffix)
	if err != nil {
		slog.WarnContext(ctx, "breach lookup failed", "prefix", prefix, "error", err)
		return Result{LookupFailed: true, Reason: failureReason(err)}
	}

	slog.DebugContext(ctx, "breach lookup", "prefix", prefix, "breached", count > 0)
	return Result{Breached: count > 0, Count: count}
}

// CheckMany runs Check for each password with at most concurrency lookups
// in flight. Results are in input order.
func (c *Checker) CheckMany(ctx context.Context, passwords []string, concurrency int) []Result {
	results := make([]Result, len(passwords))
	if concurrency < 1 {
		concurrency = 1
	}

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, pw := range passwords {
		g.Go(func() error {
			results[i] = c.Check(ctx, pw)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, context.Canceled):
		return ReasonCanceled
	case errors.Is(err, ErrUnexpectedStatus):
		return ReasonUpstream
	case errors.Is(err, ErrMalformedResponse):
		return ReasonMalformed
	default:
		return ReasonUnavailable
	}
}

// lookup returns the breach count for suffix within the prefix range, or 0
// when it is absent.
func (c *Checker) lookup(ctx context.Context, prefix, suffix string) (int64, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/range/"+prefix, nil)
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Add-Padding", "true")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("requesting range: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	return scanRange(io.LimitReader(resp.Body, maxBodyBytes), suffix)
}

// scanRange reads SUFFIX:COUNT lines until suffix is found. Padding entries
// carry a zero count and never match.
func scanRange(r io.Reader, suffix string) (int64, error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		hash, countStr, ok := strings.Cut(line, ":")
		if !ok || len(hash) != suffixLen {
			return 0, fmt.Errorf("%w: %q", ErrMalformedResponse, line)
		}
		count, err := strconv.ParseInt(countStr, 10, 64)
		if err != nil || count < 0 {
			return 0, fmt.Errorf("%w: %q", ErrMalformedResponse, line)
		}

		if count > 0 && strings.EqualFold(hash, suffix) {
			return count, nil
		}
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("reading range: %w", err)
	}
	return 0, nil
}
