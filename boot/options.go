package boot

import (
	"time"

	"github.com/moffa90/go-gaugeboot/logging"
	"github.com/moffa90/go-gaugeboot/xmodem"
)

// Defaults for the boot decision.
const (
	DefaultAttachThreshold = 4.5
	DefaultBootWait        = 10 * time.Second
	DefaultTrigger         = ' '
	DefaultPollInterval    = 100 * time.Millisecond
)

// Config holds the loader configuration.
type Config struct {
	// Logger is used for logging boot events (optional)
	Logger logging.Logger

	// AttachThreshold is the voltage at or above which the maintenance
	// cable is considered attached
	AttachThreshold float64

	// BootWait is how long the resident loop waits for the trigger before
	// logging and waiting again
	BootWait time.Duration

	// Trigger is the byte that opens the menu
	Trigger byte

	// PollInterval bounds each wait so cancellation is noticed promptly
	PollInterval time.Duration

	// TransferOptions configure the firmware update receiver
	TransferOptions []xmodem.Option
}

func defaultConfig() Config {
	return Config{
		AttachThreshold: DefaultAttachThreshold,
		BootWait:        DefaultBootWait,
		Trigger:         DefaultTrigger,
		PollInterval:    DefaultPollInterval,
	}
}

// Option is a functional option for configuring a Loader.
type Option func(*Config)

// WithLogger sets a logger for boot events.
func WithLogger(logger logging.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithAttachThreshold sets the attach-detect voltage.
func WithAttachThreshold(volts float64) Option {
	return func(c *Config) {
		c.AttachThreshold = volts
	}
}

// WithBootWait sets the trigger wait period.
func WithBootWait(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.BootWait = d
		}
	}
}

// WithTrigger sets the byte that opens the menu.
func WithTrigger(b byte) Option {
	return func(c *Config) {
		c.Trigger = b
	}
}

// WithPollInterval sets the longest single wait on the input FIFO.
func WithPollInterval(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.PollInterval = d
		}
	}
}

// WithTransferOptions passes options to the firmware update receiver.
func WithTransferOptions(opts ...xmodem.Option) Option {
	return func(c *Config) {
		c.TransferOptions = append(c.TransferOptions, opts...)
	}
}
