package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig(maxRetries int) RetryHandlerConfig {
	cfg := DefaultRetryHandlerConfig()
	cfg.MaxRetries = maxRetries
	cfg.BaseDelay = time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond
	cfg.EnableJitter = false
	return cfg
}

func getRequest(target string) func(ctx context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	}
}

func TestRetryHandler_ShouldRetry(t *testing.T) {
	handler := NewRetryHandler(RetryHandlerConfig{
		MaxRetries:       3,
		BaseDelay:        time.Second,
		MaxDelay:         time.Minute,
		RetryStatusCodes: []int{429, 502},
	}, zerolog.Nop())

	tests := []struct {
		name       string
		statusCode int
		attempt    int
		expected   bool
	}{
		{"Should retry 429 on first attempt", 429, 0, true},
		{"Should retry 502 on first attempt", 502, 0, true},
		{"Should not retry 200", 200, 0, false},
		{"Should not retry 404", 404, 0, false},
		{"Should not retry after max attempts", 429, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, handler.ShouldRetry(tt.statusCode, tt.attempt))
		})
	}
}

func TestRetryHandler_CalculateDelay(t *testing.T) {
	handler := NewRetryHandler(RetryHandlerConfig{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   10 * time.Second,
	}, zerolog.Nop())

	assert.Equal(t, time.Second, handler.CalculateDelay(0))
	assert.Equal(t, 2*time.Second, handler.CalculateDelay(1))
	assert.Equal(t, 4*time.Second, handler.CalculateDelay(2))
	assert.Equal(t, 10*time.Second, handler.CalculateDelay(4))
}

func TestRetryHandler_DoWithRetry(t *testing.T) {
	t.Run("retries rate limiting then succeeds", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) < 3 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		handler := NewRetryHandler(fastRetryConfig(3), zerolog.Nop())
		resp, err := handler.DoWithRetry(context.Background(), srv.Client(), getRequest(srv.URL))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})

	t.Run("returns last retryable response when attempts run out", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		handler := NewRetryHandler(fastRetryConfig(2), zerolog.Nop())
		resp, err := handler.DoWithRetry(context.Background(), srv.Client(), getRequest(srv.URL))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})

	t.Run("honors Retry-After capped at max delay", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) == 1 {
				w.Header().Set("Retry-After", "30")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		handler := NewRetryHandler(fastRetryConfig(2), zerolog.Nop())
		start := time.Now()
		resp, err := handler.DoWithRetry(context.Background(), srv.Client(), getRequest(srv.URL))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
		assert.Less(t, time.Since(start), 5*time.Second)
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		handler := NewRetryHandler(fastRetryConfig(3), zerolog.Nop())
		resp, err := handler.DoWithRetry(context.Background(), srv.Client(), getRequest(srv.URL))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("connection refused is retried then reported", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		target := srv.URL + "/botSECRET/sendMessage"
		srv.Close()

		handler := NewRetryHandler(fastRetryConfig(1), zerolog.Nop())
		_, err := handler.DoWithRetry(context.Background(), http.DefaultClient, getRequest(target))
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "SECRET")
	})

	t.Run("cancelled context stops immediately", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		handler := NewRetryHandler(fastRetryConfig(3), zerolog.Nop())
		_, err := handler.DoWithRetry(ctx, http.DefaultClient, getRequest("http://127.0.0.1:1"))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestRedactError(t *testing.T) {
	err := &url.Error{Op: "Post", URL: "https://api.telegram.org/bot123:abc/sendMessage", Err: errors.New("boom")}
	redacted := RedactError(err)
	assert.Equal(t, `Post "https://api.telegram.org": boom`, redacted.Error())

	plain := errors.New("plain")
	assert.Equal(t, plain, RedactError(plain))
}

func TestHTTPClientBuilder_AppliesHeaders(t *testing.T) {
	var gotUA, gotCustom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotCustom = r.Header.Get("X-Probe")
	}))
	defer srv.Close()

	client := NewHTTPClientBuilder(zerolog.Nop()).
		WithTimeout(2 * time.Second).
		WithUserAgent("filemonitor-test").
		WithHeader("X-Probe", "yes").
		Build()

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, "filemonitor-test", gotUA)
	assert.Equal(t, "yes", gotCustom)
}

func TestHTTPClientBuilder_NoRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/moved") {
			http.Redirect(w, r, "/final", http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewHTTPClientBuilder(zerolog.Nop()).WithFollowRedirects(false).Build()
	resp, err := client.Get(srv.URL + "/moved")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}
