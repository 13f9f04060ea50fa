// Package fifo implements the byte ring buffer that bridges the serial
// receive interrupt (producer) and the foreground loop (consumer).
//
// The buffer has a fixed capacity of Capacity bytes with one slot always
// unused, so at most Capacity-1 bytes can be pending. Put must only be called
// from the single producer; every other method must only be called from the
// single consumer. Under that discipline bytes come out of Get in exactly the
// order they went into Put.
package fifo

import (
	"errors"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/moffa90/go-gaugeboot/clock"
)

// Capacity is the size of the backing array.
const Capacity = 2048

var (
	// ErrFull is returned by Put when Capacity-1 bytes are pending. The byte
	// is dropped.
	ErrFull = errors.New("fifo full")

	// ErrEmpty is returned by Get when no byte is pending.
	ErrEmpty = errors.New("fifo empty")

	// ErrTimeout is returned by WaitFor when the deadline elapses first.
	ErrTimeout = errors.New("fifo wait timeout")
)

// Buffer is a single-producer single-consumer byte ring buffer.
type Buffer struct {
	buf  [Capacity]byte
	head atomic.Uint32 // written by the producer only
	tail atomic.Uint32 // written by the consumer only

	dropped atomic.Uint64
	clock   clock.Clock
}

// New returns an empty Buffer whose WaitFor deadlines are measured on clk.
func New(clk clock.Clock) *Buffer {
	if clk == nil {
		panic("clock cannot be nil")
	}
	return &Buffer{clock: clk}
}

// Reset empties the buffer. It must not race with Put; once the producer is
// running use Discard.
func (b *Buffer) Reset() {
	b.head.Store(0)
	b.tail.Store(0)
}

// Discard drops every pending byte from the consumer side and returns how
// many were dropped. Only tail moves, so it is safe while Put runs; bytes put
// after the head snapshot stay pending.
func (b *Buffer) Discard() int {
	head, tail := b.head.Load(), b.tail.Load()
	b.tail.Store(head)
	if head >= tail {
		return int(head - tail)
	}
	return int(Capacity - tail + head)
}

// Put appends v. If the buffer is full the byte is dropped, the drop counter
// is incremented and ErrFull is returned.
func (b *Buffer) Put(v byte) error {
	head := b.head.Load()
	next := (head + 1) % Capacity
	if next == b.tail.Load() {
		b.dropped.Add(1)
		return ErrFull
	}
	b.buf[head] = v
	// publishes buf[head] to the consumer
	b.head.Store(next)
	return nil
}

// Get removes and returns the oldest pending byte.
func (b *Buffer) Get() (byte, error) {
	tail := b.tail.Load()
	if tail == b.head.Load() {
		return 0, ErrEmpty
	}
	v := b.buf[tail]
	b.tail.Store((tail + 1) % Capacity)
	return v, nil
}

// IsEmpty reports whether no byte is pending.
func (b *Buffer) IsEmpty() bool {
	return b.head.Load() == b.tail.Load()
}

// Len returns the number of pending bytes.
func (b *Buffer) Len() int {
	head, tail := b.head.Load(), b.tail.Load()
	if head >= tail {
		return int(head - tail)
	}
	return int(Capacity - tail + head)
}

// Dropped returns the number of bytes discarded by Put since New.
func (b *Buffer) Dropped() uint64 {
	return b.dropped.Load()
}

// WaitFor polls until at least count bytes are pending or timeout has
// elapsed on the buffer's clock. It is a spin, not a suspension: the only
// cancellation is the deadline.
func (b *Buffer) WaitFor(count int, timeout time.Duration) error {
	start := b.clock.Millis()
	for {
		if b.Len() >= count {
			return nil
		}
		if clock.Since(b.clock, start) >= timeout {
			return ErrTimeout
		}
		runtime.Gosched()
	}
}
