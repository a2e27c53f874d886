package djedi

import (
	"context"
	"math"
	"net/http"
	"sync"
	"time"
)

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// Limit defines a simple rate limit: RPS with a burst capacity. A
// non-positive RPS disables limiting.
type Limit struct {
	RPS   float64
	Burst int
}

// TransportOptions configures the rate-limited, metered transport.
type TransportOptions struct {
	Limit   Limit
	Clock   Clock
	Metrics *Metrics

	// Host-specific limits (by req.URL.Host). If missing, Limit applies.
	HostLimits map[string]Limit
}

// DefaultLimit keeps a migration from hammering an admin instance.
var DefaultLimit = Limit{RPS: 10, Burst: 10}

const pollInterval = 5 * time.Millisecond

// tokenBucket is a per-host rate limiter with fractional tokens.
type tokenBucket struct {
	mu     sync.Mutex
	rps    float64
	burst  float64
	tokens float64
	last   time.Time
	clock  Clock
}

func newTokenBucket(lim Limit, clock Clock) *tokenBucket {
	burst := float64(max(1, lim.Burst))
	return &tokenBucket{
		rps:    lim.RPS,
		burst:  burst,
		tokens: burst,
		last:   clock.Now(),
		clock:  clock,
	}
}

func (tb *tokenBucket) refillLocked(now time.Time) {
	delta := now.Sub(tb.last).Seconds() * tb.rps
	if delta > 0 {
		tb.tokens = math.Min(tb.burst, tb.tokens+delta)
		tb.last = now
	}
}

// Wait blocks until a token is available or ctx is done.
func (tb *tokenBucket) Wait(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		tb.mu.Lock()
		tb.refillLocked(tb.clock.Now())
		if tb.tokens >= 1 {
			tb.tokens--
			tb.mu.Unlock()
			return nil
		}
		wait := time.Duration((1 - tb.tokens) / tb.rps * float64(time.Second))
		tb.mu.Unlock()

		// sleep in small steps so cancellation is observed
		deadline := tb.clock.Now().Add(max(wait, pollInterval))
		for tb.clock.Now().Before(deadline) {
			if err := ctx.Err(); err != nil {
				return err
			}
			tb.clock.Sleep(pollInterval)
		}
	}
}

// LimiterTransport wraps a base RoundTripper with host-based rate limiting
// and request metrics. It never retries.
type LimiterTransport struct {
	Base     http.RoundTripper
	Opts     TransportOptions
	limMu    sync.Mutex
	limiters map[string]*tokenBucket
}

func NewLimiterTransport(opts TransportOptions) *LimiterTransport {
	return &LimiterTransport{Opts: opts, limiters: make(map[string]*tokenBucket)}
}

// getLimiter returns nil when the host is not limited.
func (t *LimiterTransport) getLimiter(host string) *tokenBucket {
	t.limMu.Lock()
	defer t.limMu.Unlock()
	if tb, ok := t.limiters[host]; ok {
		return tb
	}
	lim := t.Opts.Limit
	if v, ok := t.Opts.HostLimits[host]; ok {
		lim = v
	}
	var tb *tokenBucket
	if lim.RPS > 0 {
		tb = newTokenBucket(lim, t.clock())
	}
	t.limiters[host] = tb
	return tb
}

func (t *LimiterTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *LimiterTransport) clock() Clock {
	if t.Opts.Clock != nil {
		return t.Opts.Clock
	}
	return realClock{}
}

func (t *LimiterTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if lim := t.getLimiter(req.URL.Host); lim != nil {
		if err := lim.Wait(req.Context()); err != nil {
			return nil, err
		}
	}
	if t.Opts.Metrics != nil {
		t.Opts.Metrics.IncRequest(req.URL.Host, req.Method)
	}
	resp, err := t.base().RoundTrip(req)
	if err != nil {
		if t.Opts.Metrics != nil {
			t.Opts.Metrics.IncTransportError()
		}
		return nil, err
	}
	if t.Opts.Metrics != nil {
		t.Opts.Metrics.IncStatus(resp.StatusCode)
	}
	return resp, nil
}

// NewHTTPClient returns a client routed through a LimiterTransport.
// A zero timeout means no client timeout.
func NewHTTPClient(opts TransportOptions, timeout time.Duration) *http.Client {
	return &http.Client{Transport: NewLimiterTransport(opts), Timeout: timeout}
}
