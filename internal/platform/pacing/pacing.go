package pacing

import (
	"context"
	"time"
)

// Pacer spaces out successive upstream calls. Wait blocks for the
// configured delay or returns early with the context error.
type Pacer interface {
	Wait(ctx context.Context) error
}

type fixedDelay struct {
	delay time.Duration
}

// FixedDelay paces calls with a constant inter-call delay.
func FixedDelay(delay time.Duration) Pacer {
	if delay <= 0 {
		return None()
	}
	return fixedDelay{delay: delay}
}

func (p fixedDelay) Wait(ctx context.Context) error {
	timer := time.NewTimer(p.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type noDelay struct{}

// None returns a pacer that never waits. Used in tests and for
// flows that do not call upstream in a loop.
func None() Pacer {
	return noDelay{}
}

func (noDelay) Wait(ctx context.Context) error {
	return ctx.Err()
}
