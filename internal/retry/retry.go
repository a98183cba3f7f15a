// Package retry reruns an operation that fails with a transient error,
// sleeping an exponentially growing, jittered delay between attempts.
package retry

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// Policy decides how often and how long to wait before rerunning a call.
// The zero value is not usable; build one with New.
type Policy struct {
	base      time.Duration
	ceiling   time.Duration
	factor    float64
	retries   int
	jitter    float64
	transient func(error) bool
	notify    func(retry int, err error)
}

type Option func(*Policy)

// WithBackoff sets the first delay and the largest delay.
func WithBackoff(base, ceiling time.Duration) Option {
	return func(p *Policy) { p.base, p.ceiling = base, ceiling }
}

// WithFactor sets how much the delay grows per retry.
func WithFactor(f float64) Option {
	return func(p *Policy) { p.factor = f }
}

// WithRetries caps the reruns after the first call.
func WithRetries(n int) Option {
	return func(p *Policy) { p.retries = n }
}

// WithJitter spreads each delay by up to ±j of its length, 0 ≤ j ≤ 1.
func WithJitter(j float64) Option {
	return func(p *Policy) { p.jitter = j }
}

// WithTransient limits reruns to errors for which fn is true. Without it
// every error is transient.
func WithTransient(fn func(error) bool) Option {
	return func(p *Policy) { p.transient = fn }
}

// WithNotify is called before each rerun with its 1-based number and the
// error that caused it.
func WithNotify(fn func(retry int, err error)) Option {
	return func(p *Policy) { p.notify = fn }
}

// New returns a Policy: 5 retries starting at 5ms, doubling up to 500ms,
// with 10% jitter.
func New(opts ...Option) *Policy {
	p := &Policy{
		base:    5 * time.Millisecond,
		ceiling: 500 * time.Millisecond,
		factor:  2,
		retries: 5,
		jitter:  0.1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Do calls fn until it succeeds, fails permanently, runs out of retries
// or ctx is done. It returns fn's last error, or ctx.Err() when the wait
// was cut short.
func (p *Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	for n := 0; ; n++ {
		err := fn(ctx)
		if err == nil || n >= p.retries || (p.transient != nil && !p.transient(err)) {
			return err
		}
		if p.notify != nil {
			p.notify(n+1, err)
		}

		wait := time.NewTimer(p.delay(n))
		select {
		case <-ctx.Done():
			wait.Stop()
			return ctx.Err()
		case <-wait.C:
		}
	}
}

// delay is the wait before rerun n+1.
func (p *Policy) delay(n int) time.Duration {
	d := float64(p.base) * math.Pow(p.factor, float64(n))
	if d > float64(p.ceiling) {
		d = float64(p.ceiling)
	}
	d += (rand.Float64()*2 - 1) * p.jitter * d
	if d < 0 {
		return 0
	}
	return time.Duration(d)
}
