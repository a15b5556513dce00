package config

import "time"

// TimeoutConfig holds the HTTP server timeouts.
type TimeoutConfig struct {
	// Read is the timeout for reading a request including its body. Default: 15s
	Read time.Duration `yaml:"read"`

	// Request bounds handler execution via chi's Timeout middleware.
	// Default: 60s
	Request time.Duration `yaml:"request"`

	// Idle is how long keep-alive connections stay open between requests.
	// Default: 120s
	Idle time.Duration `yaml:"idle"`

	// Shutdown is how long in-flight requests get to finish on shutdown.
	// Default: 30s
	Shutdown time.Duration `yaml:"shutdown"`
}

// DefaultTimeoutConfig returns the default timeout configuration
func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{
		Read:     15 * time.Second,
		Request:  60 * time.Second,
		Idle:     120 * time.Second,
		Shutdown: 30 * time.Second,
	}
}
