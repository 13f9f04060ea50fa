package config

import "github.com/moffa90/go-gaugeboot/logging"

// Config holds the store configuration.
type Config struct {
	// Logger is used for logging record writes (optional)
	Logger logging.Logger
}

func defaultConfig() Config {
	return Config{}
}

// Option is a functional option for configuring a Store.
type Option func(*Config)

// WithLogger sets a logger for the store.
func WithLogger(logger logging.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
