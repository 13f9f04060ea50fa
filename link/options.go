package link

import (
	"time"

	"github.com/moffa90/go-gaugeboot/logging"
)

// Config holds the stream configuration.
type Config struct {
	// Logger is used for logging receive overflows (optional)
	Logger logging.Logger

	// ReadSize is the size of each read from the port
	ReadSize int

	// IdleInterval is the pause after an empty read that reported io.EOF
	IdleInterval time.Duration

	// RequireRunning makes IsReady false, and sends fail, while Run is not
	// receiving
	RequireRunning bool
}

func defaultConfig() Config {
	return Config{
		ReadSize:     64,
		IdleInterval: time.Millisecond,
	}
}

// Option is a functional option for configuring a Stream.
type Option func(*Config)

// WithLogger sets a logger for the stream.
func WithLogger(logger logging.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithReadSize sets the size of each port read.
func WithReadSize(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.ReadSize = n
		}
	}
}

// WithRequireRunning gates sending on the receive loop being active.
func WithRequireRunning(require bool) Option {
	return func(c *Config) {
		c.RequireRunning = require
	}
}
