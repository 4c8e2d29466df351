// Package retry provides caller-side resubmission of tasks rejected with a
// full queue
package retry

import (
	"math"
	"math/rand"
	"time"
)

// DefaultMaxDelay caps exponential backoff
const DefaultMaxDelay = 30 * time.Second

// Policy decides how often and how long to wait between admission attempts
type Policy interface {
	// NextDelay returns the wait before retry number attempt (1-based)
	NextDelay(attempt int) time.Duration

	// MaxAttempts returns the total number of admission attempts, 0 for unlimited
	MaxAttempts() int
}

// PolicyOption configures a policy
type PolicyOption func(*base)

// WithJitter randomizes each delay by up to factor of its value
func WithJitter(factor float64) PolicyOption {
	return func(b *base) {
		if factor > 0 && factor <= 1.0 {
			b.jitterFactor = factor
		}
	}
}

// WithRand sets the random source used for jitter
func WithRand(r *rand.Rand) PolicyOption {
	return func(b *base) {
		if r != nil {
			b.rand = r
		}
	}
}

type base struct {
	maxAttempts  int
	jitterFactor float64
	rand         *rand.Rand
}

func newBase(maxAttempts int, opts []PolicyOption) base {
	b := base{maxAttempts: maxAttempts}
	if b.maxAttempts < 0 {
		b.maxAttempts = 0
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// MaxAttempts implements Policy
func (b *base) MaxAttempts() int {
	return b.maxAttempts
}

func (b *base) applyJitter(delay time.Duration) time.Duration {
	if b.jitterFactor == 0 || delay <= 0 {
		return delay
	}

	f := rand.Float64
	if b.rand != nil {
		f = b.rand.Float64
	}

	jitterRange := float64(delay) * b.jitterFactor
	result := delay + time.Duration((f()-0.5)*2*jitterRange)
	if result < 0 {
		result = delay / 2
	}
	return result
}

// FixedDelay waits the same delay between attempts
type FixedDelay struct {
	base
	delay time.Duration
}

// NewFixedDelay creates a fixed delay policy
func NewFixedDelay(maxAttempts int, delay time.Duration, opts ...PolicyOption) *FixedDelay {
	return &FixedDelay{
		base:  newBase(maxAttempts, opts),
		delay: delay,
	}
}

// NextDelay implements Policy
func (p *FixedDelay) NextDelay(int) time.Duration {
	return p.applyJitter(p.delay)
}

// ExponentialBackoff multiplies the delay after each rejection up to a cap
type ExponentialBackoff struct {
	base
	initialDelay time.Duration
	multiplier   float64
	maxDelay     time.Duration
}

// NewExponentialBackoff creates an exponential backoff policy with multiplier
// 2 and DefaultMaxDelay
func NewExponentialBackoff(maxAttempts int, initialDelay time.Duration, opts ...PolicyOption) *ExponentialBackoff {
	return &ExponentialBackoff{
		base:         newBase(maxAttempts, opts),
		initialDelay: initialDelay,
		multiplier:   2.0,
		maxDelay:     DefaultMaxDelay,
	}
}

// WithMultiplier sets the growth factor (values below 1 are ignored)
func (p *ExponentialBackoff) WithMultiplier(multiplier float64) *ExponentialBackoff {
	if multiplier >= 1 {
		p.multiplier = multiplier
	}
	return p
}

// WithMaxDelay sets the delay cap
func (p *ExponentialBackoff) WithMaxDelay(maxDelay time.Duration) *ExponentialBackoff {
	if maxDelay > 0 {
		p.maxDelay = maxDelay
	}
	return p
}

// NextDelay implements Policy
func (p *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}

	delay := float64(p.initialDelay) * math.Pow(p.multiplier, float64(attempt-1))
	if delay > float64(p.maxDelay) {
		return p.applyJitter(p.maxDelay)
	}
	return p.applyJitter(time.Duration(delay))
}
