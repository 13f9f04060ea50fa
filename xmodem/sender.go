package xmodem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// Sender implements the sending side of XMODEM-1K in CRC mode. It is used by
// the host tools to upload images to a resident bootloader.
//
// Reads on the underlying port should time out (returning no data) rather
// than block forever; the sender keeps its own deadlines on top of that.
type Sender struct {
	rw     io.ReadWriter
	config Config
	next   uint8
}

// NewSender creates a Sender talking over rw.
func NewSender(rw io.ReadWriter, opts ...Option) *Sender {
	if rw == nil {
		panic("port cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Sender{
		rw:     rw,
		config: cfg,
		next:   FirstBlock,
	}
}

// Next returns the number of the next block to send.
func (s *Sender) Next() uint8 { return s.next }

// WaitStart waits for the receiver's CRC request. Bytes other than 'C' are
// discarded, so menu output preceding the transfer is skipped.
func (s *Sender) WaitStart(ctx context.Context) error {
	deadline := time.Now().Add(s.config.ResponseTimeout)
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled: %w", err)
		}
		b, err := s.readByte(deadline)
		if err != nil {
			return fmt.Errorf("wait for CRC request: %w", err)
		}
		if b == CRCRequest {
			s.logDebug("receiver ready")
			return nil
		}
	}
}

// SendBlock transmits one block, retransmitting on NAK, and advances the
// block number once the receiver acknowledges it.
func (s *Sender) SendBlock(ctx context.Context, payload []byte) error {
	frame, err := EncodeBlock(s.next, payload)
	if err != nil {
		return err
	}

	for attempt := 1; attempt <= s.config.SendRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled: %w", err)
		}
		if _, err := s.rw.Write(frame); err != nil {
			return fmt.Errorf("write block %d: %w", s.next, err)
		}

		resp, err := s.awaitResponse()
		if err != nil {
			return fmt.Errorf("block %d: %w", s.next, err)
		}
		if resp == ACK {
			s.logDebug("block acknowledged", "block", s.next, "attempt", attempt)
			s.next++
			return nil
		}
		s.logDebug("block rejected", "block", s.next, "attempt", attempt)
	}

	return &NakError{Block: s.next, Attempts: s.config.SendRetries}
}

// Finish sends EOT until the receiver acknowledges it.
func (s *Sender) Finish(ctx context.Context) error {
	for attempt := 1; attempt <= s.config.SendRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled: %w", err)
		}
		if _, err := s.rw.Write([]byte{EOT}); err != nil {
			return fmt.Errorf("write EOT: %w", err)
		}
		resp, err := s.awaitResponse()
		if err != nil {
			return fmt.Errorf("EOT: %w", err)
		}
		if resp == ACK {
			return nil
		}
	}
	return fmt.Errorf("EOT was NAKed %d times", s.config.SendRetries)
}

// Cancel aborts the transfer with the double-CAN sequence.
func (s *Sender) Cancel() error {
	_, err := s.rw.Write([]byte{CAN, CAN})
	return err
}

// Send runs a whole transfer of data: wait for the receiver, send every
// block, then EOT. progress, if not nil, is called after each acknowledged
// block with the number of blocks sent and the total.
func (s *Sender) Send(ctx context.Context, data []byte, progress func(sent, total int)) error {
	blocks := SplitBlocks(data)

	if err := s.WaitStart(ctx); err != nil {
		return err
	}
	for i, b := range blocks {
		if err := s.SendBlock(ctx, b); err != nil {
			if !IsCancel(err) {
				_ = s.Cancel()
			}
			return err
		}
		if progress != nil {
			progress(i+1, len(blocks))
		}
	}
	return s.Finish(ctx)
}

// awaitResponse returns ACK or NAK. Stray 'C' requests and noise are
// skipped; a double CAN is reported as ErrCanceled.
func (s *Sender) awaitResponse() (byte, error) {
	deadline := time.Now().Add(s.config.ResponseTimeout)
	for {
		b, err := s.readByte(deadline)
		if err != nil {
			return 0, err
		}
		switch b {
		case ACK, NAK:
			return b, nil
		case CAN:
			next, err := s.readByte(deadline)
			if err != nil {
				return 0, err
			}
			if next == CAN {
				return 0, ErrCanceled
			}
		}
	}
}

// readByte reads a single byte before deadline. Ports that report a read
// timeout as (0, nil) or (0, io.EOF) are polled again.
func (s *Sender) readByte(deadline time.Time) (byte, error) {
	var b [1]byte
	for {
		n, err := s.rw.Read(b[:])
		if n == 1 {
			return b[0], nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return 0, err
		}
		if time.Now().After(deadline) {
			return 0, ErrTimeout
		}
		if err != nil {
			time.Sleep(time.Millisecond)
		}
	}
}

// logDebug logs a debug message if a logger is configured.
func (s *Sender) logDebug(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Debug(msg, keysAndValues...)
	}
}
