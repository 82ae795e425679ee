package agentflow

import "time"

// Config holds tunables shared by the client facade and the event stream
// subscriber. The zero value is not useful; start from DefaultConfig.
type Config struct {
	// Timeout bounds a single HTTP request. Zero means no client-imposed
	// timeout beyond the transport's defaults.
	Timeout time.Duration

	// StreamBuffer is the capacity of a subscription's event channel.
	StreamBuffer int

	// ReconnectInitial is the first reconnect delay after an unexpected
	// stream disconnect.
	ReconnectInitial time.Duration

	// ReconnectMax caps the reconnect delay.
	ReconnectMax time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:          30 * time.Second,
		StreamBuffer:     64,
		ReconnectInitial: 1 * time.Second,
		ReconnectMax:     30 * time.Second,
	}
}
