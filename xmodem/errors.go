package xmodem

import (
	"errors"
	"fmt"
)

var (
	// ErrCanceled indicates that the peer cancelled the transfer with two
	// consecutive CAN bytes.
	ErrCanceled = errors.New("transfer cancelled by peer")

	// ErrTimeout indicates that the peer did not answer in time.
	ErrTimeout = errors.New("timeout waiting for peer")
)

// RetryError indicates that the receiver gave up after too many consecutive
// header timeouts and cancelled the transfer.
type RetryError struct {
	Retries int
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("no header after %d retries: transfer cancelled", e.Retries)
}

// HandlerError indicates that the block handler rejected a validated block
// (typically a flash write failure). The receiver cancels the transfer.
type HandlerError struct {
	Block uint8
	Err   error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("block %d not stored: %v", e.Block, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// NakError indicates that the receiver rejected a block more times than the
// sender is willing to retry.
type NakError struct {
	Block    uint8
	Attempts int
}

func (e *NakError) Error() string {
	return fmt.Sprintf("block %d rejected %d times", e.Block, e.Attempts)
}

// IsCancel reports whether err ended the transfer through a cancel
// handshake, either requested by the peer or forced by retry exhaustion.
func IsCancel(err error) bool {
	var re *RetryError
	return errors.Is(err, ErrCanceled) || errors.As(err, &re)
}
