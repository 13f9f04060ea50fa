package xmodem

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Source is the consumer side of the byte FIFO the receiver reads from.
// *fifo.Buffer satisfies it.
type Source interface {
	Get() (byte, error)
	WaitFor(count int, timeout time.Duration) error
}

// BlockHandler receives every validated, in-sequence block exactly once.
// data is only valid for the duration of the call.
type BlockHandler interface {
	HandleBlock(data []byte, num uint8, crc uint16) error
}

// BlockHandlerFunc adapts a function to BlockHandler.
type BlockHandlerFunc func(data []byte, num uint8, crc uint16) error

// HandleBlock calls f.
func (f BlockHandlerFunc) HandleBlock(data []byte, num uint8, crc uint16) error {
	return f(data, num, crc)
}

// Summary describes a finished transfer.
type Summary struct {
	// Blocks is the number of blocks passed to the handler
	Blocks int

	// Duplicates is the number of re-sent blocks acknowledged without
	// handling
	Duplicates int

	// Naks is the number of NAKs sent
	Naks int

	// Bytes is the payload size handled
	Bytes int
}

// Receiver implements the receiving side of XMODEM-1K in CRC mode.
type Receiver struct {
	src    Source
	out    io.ByteWriter
	config Config

	block [BlockSize]byte
}

// session is the state of one transfer attempt.
type session struct {
	expected uint8
	retries  int
	summary  Summary
}

// NewReceiver creates a Receiver reading from src and answering on out.
//
// Example:
//
//	rx := xmodem.NewReceiver(buf, link, xmodem.WithLogger(logger))
//	summary, err := rx.Receive(ctx, writer)
func NewReceiver(src Source, out io.ByteWriter, opts ...Option) *Receiver {
	if src == nil || out == nil {
		panic("source and output cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Receiver{
		src:    src,
		out:    out,
		config: cfg,
	}
}

// Receive runs one transfer to completion. It returns nil once the sender
// has ended the transfer with EOT.
//
// Cancellation is reported as ErrCanceled (the sender sent CAN CAN) or a
// *RetryError (too many header timeouts). A handler failure cancels the
// transfer and is returned as a *HandlerError. Blocks handled before a
// failure are not undone.
func (r *Receiver) Receive(ctx context.Context, h BlockHandler) (*Summary, error) {
	s := &session{expected: FirstBlock}

	if err := r.send(CRCRequest); err != nil {
		return &s.summary, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return &s.summary, fmt.Errorf("cancelled: %w", err)
		}

		if err := r.src.WaitFor(1, r.config.HeaderTimeout); err != nil {
			s.retries++
			if s.retries >= r.config.MaxRetries {
				r.logError("header retries exhausted", "retries", s.retries)
				if err := r.cancel(); err != nil {
					return &s.summary, err
				}
				return &s.summary, &RetryError{Retries: s.retries}
			}
			r.logDebug("header timeout", "retry", s.retries)
			if err := r.send(CRCRequest); err != nil {
				return &s.summary, err
			}
			continue
		}

		header, err := r.src.Get()
		if err != nil {
			continue
		}

		switch header {
		case EOT:
			if err := r.send(ACK); err != nil {
				return &s.summary, err
			}
			r.logInfo("transfer complete",
				"blocks", s.summary.Blocks,
				"bytes", s.summary.Bytes,
				"naks", s.summary.Naks,
			)
			return &s.summary, nil

		case STX:
			if err := r.receiveBlock(s, h); err != nil {
				return &s.summary, err
			}

		case CAN:
			canceled, err := r.receiveCancel(s)
			if err != nil {
				return &s.summary, err
			}
			if canceled {
				r.logInfo("transfer cancelled by sender", "blocks", s.summary.Blocks)
				return &s.summary, ErrCanceled
			}

		default:
			r.logDebug("unexpected header", "byte", fmt.Sprintf("0x%02X", header))
			if err := r.nak(s); err != nil {
				return &s.summary, err
			}
		}
	}
}

// receiveBlock handles everything after STX. Only link write errors and
// handler failures are returned; protocol faults are answered with NAK.
func (r *Receiver) receiveBlock(s *session, h BlockHandler) error {
	// A short block does not consume a header retry.
	if err := r.src.WaitFor(BlockBodySize, r.config.HeaderTimeout); err != nil {
		r.logDebug("incomplete block", "expected", s.expected)
		return r.nak(s)
	}

	// The whole body is consumed before validation so a rejected block
	// leaves nothing behind in the FIFO.
	num, err1 := r.src.Get()
	comp, err2 := r.src.Get()
	if err1 != nil || err2 != nil {
		return r.nak(s)
	}
	for i := range r.block {
		b, err := r.src.Get()
		if err != nil {
			return r.nak(s)
		}
		r.block[i] = b
	}
	hi, err1 := r.src.Get()
	lo, err2 := r.src.Get()
	if err1 != nil || err2 != nil {
		return r.nak(s)
	}
	rxCRC := uint16(hi)<<8 | uint16(lo)

	if num+comp != 0xFF {
		r.logDebug("block number mismatch",
			"num", num,
			"complement", comp,
		)
		return r.nak(s)
	}

	if calc := CRC16(r.block[:]); calc != rxCRC {
		r.logDebug("block crc mismatch",
			"block", num,
			"received", fmt.Sprintf("0x%04X", rxCRC),
			"computed", fmt.Sprintf("0x%04X", calc),
		)
		return r.nak(s)
	}

	switch num {
	case s.expected:
		if err := h.HandleBlock(r.block[:], num, rxCRC); err != nil {
			r.logError("block handler failed", "block", num, "error", err)
			if cerr := r.cancel(); cerr != nil {
				return cerr
			}
			return &HandlerError{Block: num, Err: err}
		}
		s.expected++
		s.summary.Blocks++
		s.summary.Bytes += BlockSize
		if err := r.send(ACK); err != nil {
			return err
		}
		s.retries = 0
		r.logDebug("block accepted", "block", num)
		return nil

	case s.expected - 1:
		s.summary.Duplicates++
		r.logDebug("duplicate block", "block", num)
		return r.send(ACK)

	default:
		r.logDebug("out of sequence block",
			"block", num,
			"expected", s.expected,
		)
		return r.nak(s)
	}
}

// receiveCancel handles a CAN header. It reports whether the transfer was
// cancelled; a lone CAN is answered with NAK.
func (r *Receiver) receiveCancel(s *session) (bool, error) {
	if err := r.src.WaitFor(1, r.config.ByteTimeout); err == nil {
		if b, err := r.src.Get(); err == nil && b == CAN {
			return true, r.send(ACK)
		}
	}
	return false, r.nak(s)
}

// cancel sends the double-CAN abort sequence.
func (r *Receiver) cancel() error {
	if err := r.send(CAN); err != nil {
		return err
	}
	return r.send(CAN)
}

func (r *Receiver) nak(s *session) error {
	s.summary.Naks++
	return r.send(NAK)
}

func (r *Receiver) send(b byte) error {
	if err := r.out.WriteByte(b); err != nil {
		return fmt.Errorf("send 0x%02X: %w", b, err)
	}
	return nil
}

// logDebug logs a debug message if a logger is configured.
func (r *Receiver) logDebug(msg string, keysAndValues ...interface{}) {
	if r.config.Logger != nil {
		r.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (r *Receiver) logInfo(msg string, keysAndValues ...interface{}) {
	if r.config.Logger != nil {
		r.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (r *Receiver) logError(msg string, keysAndValues ...interface{}) {
	if r.config.Logger != nil {
		r.config.Logger.Error(msg, keysAndValues...)
	}
}
