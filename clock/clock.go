// Package clock provides the monotonic millisecond time base used by the
// polling waits of the bootloader.
//
// On the target this is the system tick counter. The host build uses the Go
// monotonic clock, and tests use Step so that timeouts elapse without real
// delays.
package clock

import (
	"sync/atomic"
	"time"
)

// Clock is a monotonic millisecond counter. The value wraps at 2^32 ms;
// callers compare instants by unsigned subtraction.
type Clock interface {
	Millis() uint32
}

// Since returns the elapsed time between start and now on clk.
func Since(clk Clock, start uint32) time.Duration {
	return time.Duration(clk.Millis()-start) * time.Millisecond
}

type system struct {
	start time.Time
}

// System returns a Clock backed by the Go monotonic clock. Its origin is the
// moment System is called.
func System() Clock {
	return &system{start: time.Now()}
}

func (s *system) Millis() uint32 {
	return uint32(time.Since(s.start).Milliseconds())
}

// Step is a deterministic Clock that advances by a fixed increment every
// time it is read. It is safe for concurrent use.
type Step struct {
	now  atomic.Uint32
	step uint32
}

// NewStep returns a Step clock starting at zero that advances by step
// milliseconds on every read.
func NewStep(step uint32) *Step {
	return &Step{step: step}
}

// Millis returns the current value and advances the clock.
func (s *Step) Millis() uint32 {
	return s.now.Add(s.step) - s.step
}

// Advance moves the clock forward by d without a read.
func (s *Step) Advance(d time.Duration) {
	s.now.Add(uint32(d.Milliseconds()))
}
