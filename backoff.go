package redlock

import (
	"math/rand"
	"time"
)

// Backoff computes the sleep between acquisition attempts.
//
// The first three attempts wait a jittered value in [Low, High). From the
// fourth attempt on the delay grows by the mean of the bounds per attempt.
// Raise the bounds for long critical sections.
type Backoff struct {
	Low  time.Duration
	High time.Duration

	// Jitter returns a value in [0, 1). Nil uses math/rand.
	Jitter func() float64
}

// Delay returns the wait after the zero-based attempt.
func (b Backoff) Delay(attempt int) time.Duration {
	jitter := b.Jitter
	if jitter == nil {
		jitter = rand.Float64
	}
	avg := float64(b.Low+b.High) / 2
	spread := float64(b.High - b.Low)
	d := avg*float64(max(0, attempt-2)) + jitter()*spread + float64(b.Low)
	return time.Duration(d)
}
