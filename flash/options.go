package flash

import "github.com/moffa90/go-gaugeboot/logging"

// Config holds the page writer configuration.
type Config struct {
	// Logger is used for logging page writes (optional)
	Logger logging.Logger
}

func defaultConfig() Config {
	return Config{}
}

// Option is a functional option for configuring a PageWriter.
type Option func(*Config)

// WithLogger sets a logger for page writes.
func WithLogger(logger logging.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
