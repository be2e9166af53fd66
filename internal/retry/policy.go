// Package retry computes backoff delays and re-runs operations that fail
// transiently.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Backoff selects how the delay grows between attempts.
type Backoff string

const (
	BackoffFixed       Backoff = "fixed"
	BackoffLinear      Backoff = "linear"
	BackoffExponential Backoff = "exponential"
)

// Valid reports whether b names a known backoff mode.
func (b Backoff) Valid() bool {
	switch b {
	case BackoffFixed, BackoffLinear, BackoffExponential:
		return true
	default:
		return false
	}
}

// Policy holds retry settings. It is immutable after construction.
type Policy struct {
	Mode       Backoff
	Initial    time.Duration // base delay
	Max        time.Duration // cap for growth
	MaxRetries int           // attempts after the first failure
}

// DefaultPolicy is linear, 1s initial, 30s cap, no retries.
func DefaultPolicy() Policy {
	return Policy{Mode: BackoffLinear, Initial: time.Second, Max: 30 * time.Second}
}

// NewPolicy builds a policy from raw config fields; zero or unknown values fall back to defaults.
func NewPolicy(mode Backoff, initial, maxDelay time.Duration, maxRetries int) Policy {
	p := DefaultPolicy()
	if maxRetries > 0 {
		p.MaxRetries = maxRetries
	}
	if initial > 0 {
		p.Initial = initial
	}
	if maxDelay > 0 {
		p.Max = maxDelay
	}
	if mode.Valid() {
		p.Mode = mode
	}
	if p.Initial > p.Max {
		p.Initial = p.Max
	}
	return p
}

// Delay returns the wait before retry number retryCount (first retry => 1).
func (p Policy) Delay(retryCount int) time.Duration {
	if retryCount <= 0 {
		return 0
	}
	var d time.Duration
	switch p.Mode {
	case BackoffFixed:
		return p.Initial
	case BackoffExponential:
		shift := retryCount - 1
		if shift > 30 {
			return p.Max
		}
		d = p.Initial * (1 << shift)
	default:
		d = time.Duration(retryCount) * p.Initial
	}
	if d > p.Max || d <= 0 {
		return p.Max
	}
	return d
}

// Validate reports a policy that cannot be applied.
func (p Policy) Validate() error {
	if !p.Mode.Valid() {
		return fmt.Errorf("unknown backoff mode %q", p.Mode)
	}
	if p.Initial <= 0 {
		return fmt.Errorf("initial must be >0")
	}
	if p.Max <= 0 {
		return fmt.Errorf("max must be >0")
	}
	if p.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	return nil
}

// Do calls fn until it succeeds, fails with an error retryable rejects, or
// the retries are spent. A nil retryable retries every error. Waiting stops
// early when ctx is done; the last error from fn is returned.
func (p Policy) Do(ctx context.Context, retryable func(error) bool, fn func(attempt int) error) error {
	for attempt := 0; ; attempt++ {
		err := fn(attempt)
		if err == nil {
			return nil
		}
		if attempt >= p.MaxRetries || (retryable != nil && !retryable(err)) {
			return err
		}
		t := time.NewTimer(p.Delay(attempt + 1))
		select {
		case <-ctx.Done():
			t.Stop()
			return err
		case <-t.C:
		}
	}
}
