package resilience

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// Backoff controls how Retry spaces its attempts.
type Backoff struct {
	// Attempts is the total number of calls, including the first.
	Attempts int
	Initial  time.Duration
	Max      time.Duration
	// Jitter is the fraction of each delay that is randomised (0..1).
	Jitter float64
}

// DefaultBackoff is used for OCR and LLM calls.
func DefaultBackoff() Backoff {
	return Backoff{
		Attempts: 3,
		Initial:  time.Second,
		Max:      20 * time.Second,
		Jitter:   0.2,
	}
}

// Retry calls fn until it succeeds, returns a non-transient error, the
// attempts run out or ctx is done. op names the call in logs.
func Retry[T any](ctx context.Context, b Backoff, op string, fn func(context.Context) (T, error)) (T, error) {
	if b.Attempts <= 0 {
		b.Attempts = 1
	}

	var (
		zero T
		err  error
	)
	for attempt := 1; attempt <= b.Attempts; attempt++ {
		var v T
		v, err = fn(ctx)
		if err == nil {
			return v, nil
		}
		if ctx.Err() != nil || !IsTransient(err) || attempt == b.Attempts {
			return zero, err
		}

		wait := b.delay(attempt)
		zap.L().Warn("transient failure, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return zero, err
		case <-t.C:
		}
	}
	return zero, err
}

// delay returns the wait before retry number attempt (1-based): Initial
// doubled per attempt, capped at Max, with jitter applied.
func (b Backoff) delay(attempt int) time.Duration {
	d := b.Initial << (attempt - 1)
	if d <= 0 || (b.Max > 0 && d > b.Max) {
		d = b.Max
	}
	if b.Jitter > 0 && d > 0 {
		spread := float64(d) * b.Jitter
		d += time.Duration(spread * (2*rand.Float64() - 1))
	}
	if d < 0 {
		d = 0
	}
	return d
}
