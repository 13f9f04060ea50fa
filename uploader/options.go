package uploader

import (
	"time"

	"github.com/moffa90/go-gaugeboot/flash"
	"github.com/moffa90/go-gaugeboot/logging"
)

// Defaults matching the bootloader's menu.
const (
	DefaultTrigger     = " 5"
	DefaultReadyMarker = "Waiting for XMODEM"
)

// Config holds the uploader configuration.
type Config struct {
	// ProgressCallback is called during the upload to report progress (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger logging.Logger

	// Layout is the target's memory map
	Layout flash.Layout

	// Trigger is sent to open the menu and select the firmware update;
	// empty when the receiver is already waiting
	Trigger string

	// ReadyMarker is the text the device prints before it starts
	// requesting blocks; empty to skip waiting for it
	ReadyMarker string

	// ReadyTimeout bounds the wait for ReadyMarker
	ReadyTimeout time.Duration

	// ResponseTimeout bounds each wait for ACK/NAK
	ResponseTimeout time.Duration

	// Retries is the number of transmissions per block before giving up
	Retries int

	// CheckVector rejects images whose stack pointer is not in SRAM
	CheckVector bool
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Layout:          flash.DefaultLayout(),
		Trigger:         DefaultTrigger,
		ReadyMarker:     DefaultReadyMarker,
		ReadyTimeout:    5 * time.Second,
		ResponseTimeout: 10 * time.Second,
		Retries:         10,
		CheckVector:     true,
	}
}

// Option is a functional option for configuring the Uploader.
type Option func(*Config)

// WithProgressCallback sets a callback function to track upload progress.
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for the upload.
//
// Example:
//
//	up := uploader.New(port, uploader.WithLogger(logging.Glog()))
func WithLogger(logger logging.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithLayout sets the target's memory map.
func WithLayout(layout flash.Layout) Option {
	return func(c *Config) {
		c.Layout = layout
	}
}

// WithTrigger sets the keys sent to start the firmware update.
//
// Example:
//
//	up := uploader.New(port, uploader.WithTrigger(""))
func WithTrigger(trigger string) Option {
	return func(c *Config) {
		c.Trigger = trigger
	}
}

// WithReadyMarker sets the text awaited after the trigger.
func WithReadyMarker(marker string) Option {
	return func(c *Config) {
		c.ReadyMarker = marker
	}
}

// WithTimeout sets both the ready and the response timeouts.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.ReadyTimeout = timeout
			c.ResponseTimeout = timeout
		}
	}
}

// WithRetries sets the number of transmissions per block.
func WithRetries(retries int) Option {
	return func(c *Config) {
		if retries > 0 {
			c.Retries = retries
		}
	}
}

// WithVectorCheck enables or disables the stack pointer check.
// Default is true.
func WithVectorCheck(check bool) Option {
	return func(c *Config) {
		c.CheckVector = check
	}
}
