package sse

import "time"

// Config holds configuration for SSE connections
type Config struct {
	// KeepAliveInterval is how often to send keep-alive pings to prevent
	// proxy timeouts. 10-15 seconds suits most proxies.
	KeepAliveInterval time.Duration

	// PushInterval is how often the stream checks for a changed snapshot
	PushInterval time.Duration
}

// DefaultConfig returns the default SSE configuration
func DefaultConfig() *Config {
	return &Config{
		KeepAliveInterval: 10 * time.Second,
		PushInterval:      time.Second,
	}
}
