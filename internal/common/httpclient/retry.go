package httpclient

import (
	"context"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/aleister1102/filemonitor/internal/common/errorwrapper"
	"github.com/rs/zerolog"
)

// RetryHandlerConfig controls how many times and how long RetryHandler waits
type RetryHandlerConfig struct {
	MaxRetries       int           `json:"max_retries"`
	BaseDelay        time.Duration `json:"base_delay"`
	MaxDelay         time.Duration `json:"max_delay"`
	EnableJitter     bool          `json:"enable_jitter"`
	RetryStatusCodes []int         `json:"retry_status_codes"`
}

// DefaultRetryHandlerConfig retries rate limiting and upstream failures
func DefaultRetryHandlerConfig() RetryHandlerConfig {
	return RetryHandlerConfig{
		MaxRetries:   2,
		BaseDelay:    time.Second,
		MaxDelay:     30 * time.Second,
		EnableJitter: true,
		RetryStatusCodes: []int{
			http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout,
		},
	}
}

// RetryHandler replays requests with exponential backoff. A Retry-After
// header on a retryable response overrides the computed delay, capped at MaxDelay.
type RetryHandler struct {
	cfg       RetryHandlerConfig
	retryable map[int]struct{}
	logger    zerolog.Logger
}

// NewRetryHandler creates a new retry handler
func NewRetryHandler(cfg RetryHandlerConfig, logger zerolog.Logger) *RetryHandler {
	retryable := make(map[int]struct{}, len(cfg.RetryStatusCodes))
	for _, code := range cfg.RetryStatusCodes {
		retryable[code] = struct{}{}
	}
	return &RetryHandler{
		cfg:       cfg,
		retryable: retryable,
		logger:    logger.With().Str("component", "RetryHandler").Logger(),
	}
}

// ShouldRetry reports whether a response with statusCode on the given
// zero-based attempt gets another try.
func (rh *RetryHandler) ShouldRetry(statusCode int, attempt int) bool {
	if attempt >= rh.cfg.MaxRetries {
		return false
	}
	_, ok := rh.retryable[statusCode]
	return ok
}

// CalculateDelay returns BaseDelay doubled per attempt, capped at MaxDelay.
func (rh *RetryHandler) CalculateDelay(attempt int) time.Duration {
	delay := rh.cfg.BaseDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
		if rh.cfg.MaxDelay > 0 && delay >= rh.cfg.MaxDelay {
			delay = rh.cfg.MaxDelay
			break
		}
	}
	if rh.cfg.EnableJitter && delay >= 10*time.Millisecond {
		delay += time.Duration(rand.Int63n(int64(delay / 10)))
	}
	return delay
}

// retryAfter reads a Retry-After header given in seconds.
func (rh *RetryHandler) retryAfter(resp *http.Response) (time.Duration, bool) {
	seconds, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || seconds < 0 {
		return 0, false
	}
	delay := time.Duration(seconds) * time.Second
	if rh.cfg.MaxDelay > 0 && delay > rh.cfg.MaxDelay {
		delay = rh.cfg.MaxDelay
	}
	return delay, true
}

func (rh *RetryHandler) wait(ctx context.Context, delay time.Duration, attempt int, reason, host string) error {
	rh.logger.Warn().
		Str("host", host).
		Str("reason", reason).
		Int("attempt", attempt+1).
		Int("max_retries", rh.cfg.MaxRetries).
		Dur("delay", delay).
		Msg("Request failed, waiting before retry")

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// DoWithRetry sends the request built by newRequest, calling it again for every
// attempt so bodies can be replayed. Transient transport errors and the
// configured status codes are retried. When attempts run out on a retryable
// status, that last response is returned to the caller unread.
func (rh *RetryHandler) DoWithRetry(ctx context.Context, client *http.Client, newRequest func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= rh.cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := newRequest(ctx)
		if err != nil {
			return nil, errorwrapper.WrapError(err, "failed to build request")
		}

		resp, err := client.Do(req)
		if err != nil {
			lastErr = RedactError(err)
			if attempt == rh.cfg.MaxRetries || !errorwrapper.IsTransient(err) {
				break
			}
			if waitErr := rh.wait(ctx, rh.CalculateDelay(attempt), attempt, lastErr.Error(), req.URL.Host); waitErr != nil {
				return nil, waitErr
			}
			continue
		}

		if !rh.ShouldRetry(resp.StatusCode, attempt) {
			return resp, nil
		}

		delay, ok := rh.retryAfter(resp)
		if !ok {
			delay = rh.CalculateDelay(attempt)
		}
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		if err := rh.wait(ctx, delay, attempt, resp.Status, req.URL.Host); err != nil {
			return nil, err
		}
	}

	return nil, errorwrapper.WrapError(lastErr, "all retry attempts failed")
}
