package xmodem

import (
	"time"

	"github.com/moffa90/go-gaugeboot/logging"
)

// Config holds the receiver and sender configuration.
type Config struct {
	// Logger is used for logging protocol events (optional)
	Logger logging.Logger

	// HeaderTimeout bounds the wait for a header byte, and for the rest of
	// a block once STX has been seen
	HeaderTimeout time.Duration

	// ByteTimeout bounds the wait for the second CAN of a cancel request
	ByteTimeout time.Duration

	// MaxRetries is the number of consecutive header timeouts the receiver
	// tolerates before cancelling
	MaxRetries int

	// ResponseTimeout bounds how long the sender waits for ACK/NAK
	ResponseTimeout time.Duration

	// SendRetries is the number of times the sender transmits a block before
	// giving up on repeated NAKs
	SendRetries int
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		HeaderTimeout:   DefaultHeaderTimeout,
		ByteTimeout:     DefaultByteTimeout,
		MaxRetries:      DefaultMaxRetries,
		ResponseTimeout: 10 * time.Second,
		SendRetries:     10,
	}
}

// Option is a functional option for configuring a Receiver or a Sender.
type Option func(*Config)

// WithLogger sets a logger for protocol events.
func WithLogger(logger logging.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithHeaderTimeout sets the header timeout.
func WithHeaderTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.HeaderTimeout = timeout
		}
	}
}

// WithByteTimeout sets the timeout for the second byte of a cancel request.
func WithByteTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.ByteTimeout = timeout
		}
	}
}

// WithMaxRetries sets how many consecutive header timeouts the receiver
// tolerates.
func WithMaxRetries(retries int) Option {
	return func(c *Config) {
		if retries > 0 {
			c.MaxRetries = retries
		}
	}
}

// WithResponseTimeout sets how long the sender waits for each answer.
func WithResponseTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.ResponseTimeout = timeout
		}
	}
}

// WithSendRetries sets how many times the sender transmits a block.
func WithSendRetries(retries int) Option {
	return func(c *Config) {
		if retries > 0 {
			c.SendRetries = retries
		}
	}
}
