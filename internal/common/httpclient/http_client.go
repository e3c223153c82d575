package httpclient

import (
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// NewHTTPClient builds a client from cfg
func NewHTTPClient(cfg ClientConfig, logger zerolog.Logger) *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: cfg.DialTimeout, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		MaxConnsPerHost:     cfg.MaxConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		TLSHandshakeTimeout: cfg.TLSHandshakeTimeout,
	}

	defaults := make(map[string]string, len(cfg.Headers)+1)
	for k, v := range cfg.Headers {
		defaults[k] = v
	}
	if cfg.UserAgent != "" {
		defaults["User-Agent"] = cfg.UserAgent
	}

	client := &http.Client{
		Transport:     &defaultHeaderTransport{next: transport, defaults: defaults},
		Timeout:       cfg.Timeout,
		CheckRedirect: redirectPolicy(cfg),
	}

	logger.Debug().
		Dur("timeout", cfg.Timeout).
		Int("max_conns_per_host", cfg.MaxConnsPerHost).
		Bool("follow_redirects", cfg.FollowRedirects).
		Msg("HTTP client created")
	return client
}

func redirectPolicy(cfg ClientConfig) func(*http.Request, []*http.Request) error {
	if !cfg.FollowRedirects {
		return func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	}
	if cfg.MaxRedirects <= 0 {
		return nil
	}
	return func(_ *http.Request, via []*http.Request) error {
		if len(via) >= cfg.MaxRedirects {
			return http.ErrUseLastResponse
		}
		return nil
	}
}

// defaultHeaderTransport fills in headers the request leaves unset
type defaultHeaderTransport struct {
	next     http.RoundTripper
	defaults map[string]string
}

func (t *defaultHeaderTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(t.defaults) == 0 {
		return t.next.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	for key, value := range t.defaults {
		if req.Header.Get(key) == "" {
			req.Header.Set(key, value)
		}
	}
	return t.next.RoundTrip(req)
}

// HTTPClientBuilder assembles a ClientConfig step by step
type HTTPClientBuilder struct {
	cfg    ClientConfig
	logger zerolog.Logger
}

// NewHTTPClientBuilder starts from DefaultClientConfig
func NewHTTPClientBuilder(logger zerolog.Logger) *HTTPClientBuilder {
	return &HTTPClientBuilder{cfg: DefaultClientConfig(), logger: logger}
}

func (b *HTTPClientBuilder) WithTimeout(timeout time.Duration) *HTTPClientBuilder {
	b.cfg.Timeout = timeout
	return b
}

func (b *HTTPClientBuilder) WithUserAgent(userAgent string) *HTTPClientBuilder {
	b.cfg.UserAgent = userAgent
	return b
}

func (b *HTTPClientBuilder) WithHeader(key, value string) *HTTPClientBuilder {
	if b.cfg.Headers == nil {
		b.cfg.Headers = make(map[string]string)
	}
	b.cfg.Headers[key] = value
	return b
}

func (b *HTTPClientBuilder) WithFollowRedirects(follow bool) *HTTPClientBuilder {
	b.cfg.FollowRedirects = follow
	return b
}

// WithMaxConnsPerHost matches the connection cap to the number of check workers
func (b *HTTPClientBuilder) WithMaxConnsPerHost(n int) *HTTPClientBuilder {
	b.cfg.MaxConnsPerHost = n
	if n > b.cfg.MaxIdleConnsPerHost {
		b.cfg.MaxIdleConnsPerHost = n
	}
	return b
}

// Build creates the client
func (b *HTTPClientBuilder) Build() *http.Client {
	return NewHTTPClient(b.cfg, b.logger)
}
