// Package link connects the bootloader to its serial byte link.
//
// A Stream wraps any io.ReadWriter (a serial port, a terminal, a pipe). Its
// Run method is the receive path: it reads incoming bytes and pushes them
// into the FIFO the foreground loop consumes, the way the UART interrupt does
// on the device.
package link

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/moffa90/go-gaugeboot/fifo"
)

// Link is the outbound side of the byte link.
type Link interface {
	// WriteByte sends a single byte.
	WriteByte(b byte) error

	// SendString sends s verbatim.
	SendString(s string) error

	// IsReady reports whether the link can carry traffic.
	IsReady() bool
}

// ErrNotReady is returned when sending on a link that is not running.
var ErrNotReady = errors.New("link not ready")

// Stream is a Link over an io.ReadWriter that feeds received bytes into a
// fifo.Buffer.
type Stream struct {
	rw     io.ReadWriter
	buf    *fifo.Buffer
	config Config

	mu      sync.Mutex
	running atomic.Bool
}

// NewStream creates a Stream. Received bytes go to buf once Run is started.
func NewStream(rw io.ReadWriter, buf *fifo.Buffer, opts ...Option) *Stream {
	if rw == nil || buf == nil {
		panic("port and buffer cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Stream{
		rw:     rw,
		buf:    buf,
		config: cfg,
	}
}

// WriteByte sends b.
func (s *Stream) WriteByte(b byte) error {
	return s.write([]byte{b})
}

// SendString sends str.
func (s *Stream) SendString(str string) error {
	return s.write([]byte(str))
}

// IsReady reports whether Run is receiving.
func (s *Stream) IsReady() bool {
	if s.config.RequireRunning {
		return s.running.Load()
	}
	return true
}

func (s *Stream) write(p []byte) error {
	if !s.IsReady() {
		return ErrNotReady
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.rw.Write(p); err != nil {
		return fmt.Errorf("link write: %w", err)
	}
	return nil
}

// Run pumps received bytes into the FIFO until ctx is done or the port
// fails. A read returning io.EOF is an idle timeout (serial ports opened with
// a read timeout report silence that way) and Run keeps polling. A blocked
// Read is only interrupted by closing the port, so callers cancel ctx and
// then close it.
//
// Bytes arriving while the FIFO is full are dropped and counted; the
// transfer protocol recovers them through NAK and retransmission.
func (s *Stream) Run(ctx context.Context) error {
	s.running.Store(true)
	defer s.running.Store(false)

	chunk := make([]byte, s.config.ReadSize)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		n, err := s.rw.Read(chunk)
		dropped := 0
		for _, b := range chunk[:n] {
			if s.buf.Put(b) != nil {
				dropped++
			}
		}
		if dropped > 0 {
			s.logError("receive fifo overflow",
				"dropped", dropped,
				"total_dropped", s.buf.Dropped(),
			)
		}

		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, io.EOF) {
				if n == 0 {
					time.Sleep(s.config.IdleInterval)
				}
				continue
			}
			return fmt.Errorf("link read: %w", err)
		}
	}
}

// logError logs an error message if a logger is configured.
func (s *Stream) logError(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Error(msg, keysAndValues...)
	}
}
