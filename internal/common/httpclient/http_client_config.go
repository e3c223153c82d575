package httpclient

import "time"

// DefaultUserAgent identifies the monitor to remote servers
const DefaultUserAgent = "filemonitor/1.0"

// ClientConfig describes the transport shared by the probe and notifier clients
type ClientConfig struct {
	// Timeout bounds a whole exchange. Zero defers to the request context,
	// which the fetcher relies on to apply separate probe and download limits.
	Timeout         time.Duration
	UserAgent       string
	Headers         map[string]string
	FollowRedirects bool
	MaxRedirects    int
	// MaxConnsPerHost caps parallel connections to the file host. Zero is unlimited.
	MaxConnsPerHost     int
	MaxIdleConnsPerHost int
	DialTimeout         time.Duration
	TLSHandshakeTimeout time.Duration
	IdleConnTimeout     time.Duration
}

// DefaultClientConfig returns settings suited to polling a single file host
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:             30 * time.Second,
		UserAgent:           DefaultUserAgent,
		Headers:             map[string]string{"Accept": "*/*"},
		FollowRedirects:     true,
		MaxRedirects:        5,
		MaxIdleConnsPerHost: 10,
		DialTimeout:         10 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		IdleConnTimeout:     90 * time.Second,
	}
}
