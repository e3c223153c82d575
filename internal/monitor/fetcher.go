package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aleister1102/filemonitor/internal/common/errorwrapper"
	"github.com/aleister1102/filemonitor/internal/common/filemanager"
	"github.com/aleister1102/filemonitor/internal/common/httpclient"
	"github.com/aleister1102/filemonitor/internal/config"
	"github.com/rs/zerolog"
)

// maxErrorBodyBytes bounds how much of a failed response is kept for reporting.
const maxErrorBodyBytes = 200

// Fetcher probes candidate URLs for one index and downloads what it finds.
// It keeps no state between calls.
type Fetcher struct {
	httpClient      *http.Client
	files           *filemanager.FileManager
	logger          zerolog.Logger
	baseURL         string
	template        string
	extensions      []string
	probeTimeout    time.Duration
	downloadTimeout time.Duration
}

// NewFetcher creates a new Fetcher.
func NewFetcher(client *http.Client, cfg config.MonitorConfig, logger zerolog.Logger) *Fetcher {
	if client == nil {
		client = httpclient.NewHTTPClientBuilder(logger).
			WithTimeout(0).
			WithMaxConnsPerHost(cfg.MaxWorkers).
			Build()
	}
	return &Fetcher{
		httpClient:      client,
		files:           filemanager.NewFileManager(logger),
		logger:          logger.With().Str("component", "Fetcher").Logger(),
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		template:        cfg.FilenameTemplate,
		extensions:      append([]string(nil), cfg.Extensions...),
		probeTimeout:    cfg.ProbeTimeout(),
		downloadTimeout: cfg.DownloadTimeout(),
	}
}

// Filename renders the filename template for index and ext.
func (f *Fetcher) Filename(index int, ext string) string {
	name := strings.ReplaceAll(f.template, "{index}", strconv.Itoa(index))
	return strings.ReplaceAll(name, "{ext}", ext)
}

// RemoteURL returns the candidate location for index and ext.
func (f *Fetcher) RemoteURL(index int, ext string) string {
	return f.baseURL + "/" + url.PathEscape(f.Filename(index, ext))
}

type probeResult int

const (
	probeAbsent probeResult = iota
	probePresent
)

// Check probes every configured extension in order and returns the first one
// that exists. A fault on one extension does not stop the others from being
// probed; the outcome is Error only if nothing was found and at least one
// probe failed.
func (f *Fetcher) Check(ctx context.Context, index int) CheckOutcome {
	var firstErr error
	for _, ext := range f.extensions {
		if err := ctx.Err(); err != nil {
			return Failed(index, err)
		}

		target := f.RemoteURL(index, ext)
		result, size, err := f.probe(ctx, target)
		if err != nil {
			f.logger.Debug().Int("index", index).Str("ext", ext).Err(err).Msg("Probe failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if result == probePresent {
			return Found(index, ext, f.Filename(index, ext), target, size)
		}
	}

	if firstErr != nil {
		return Failed(index, firstErr)
	}
	return NotFound(index)
}

// probe issues a HEAD request, falling back to a GET whose body is discarded
// when the server does not allow HEAD.
func (f *Fetcher) probe(ctx context.Context, target string) (probeResult, int64, error) {
	probeCtx, cancel := context.WithTimeout(ctx, f.probeTimeout)
	defer cancel()

	status, size, err := f.probeWith(probeCtx, http.MethodHead, target)
	if err == nil && (status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented) {
		status, size, err = f.probeWith(probeCtx, http.MethodGet, target)
	}
	if err != nil {
		return probeAbsent, -1, err
	}

	switch {
	case status >= 200 && status < 300:
		return probePresent, size, nil
	case status == http.StatusTooManyRequests || status >= 500:
		return probeAbsent, -1, errorwrapper.NewHTTPErrorWithURL(status, http.StatusText(status), redactURL(target))
	default:
		// 404, 410, 403 and other client errors mean the file is not there (yet).
		return probeAbsent, -1, nil
	}
}

func (f *Fetcher) probeWith(ctx context.Context, method, target string) (int, int64, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return 0, -1, errorwrapper.WrapError(err, "creating probe request")
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return 0, -1, networkError(target, "probe request failed", err)
	}
	defer resp.Body.Close()
	if method == http.MethodGet {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
	}
	return resp.StatusCode, resp.ContentLength, nil
}

// Download streams a found file into destinationDir under its rendered
// filename. Names already taken get a numeric suffix.
func (f *Fetcher) Download(ctx context.Context, found CheckOutcome, destinationDir string) (*DownloadResult, error) {
	if found.Kind != OutcomeFound {
		return nil, errorwrapper.NewError("cannot download index %d: outcome is %s", found.Index, found.Kind)
	}

	dlCtx, cancel := context.WithTimeout(ctx, f.downloadTimeout)
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(dlCtx, http.MethodGet, found.RemoteURL, nil)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "creating download request")
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, networkError(found.RemoteURL, "download request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, errorwrapper.NewHTTPErrorWithURL(resp.StatusCode, string(body), redactURL(found.RemoteURL))
	}

	stored, err := f.files.StreamToFile(destinationDir, found.Filename, resp.Body)
	if err != nil {
		var writeErr *errorwrapper.DownloadWriteError
		if errors.As(err, &writeErr) {
			return nil, err
		}
		return nil, networkError(found.RemoteURL, "reading download body failed", err)
	}

	result := &DownloadResult{
		StoredPath: stored.Path,
		StoredName: stored.Name,
		Bytes:      stored.Bytes,
		Duration:   time.Since(start),
	}
	f.logger.Debug().
		Int("index", found.Index).
		Str("path", result.StoredPath).
		Int64("bytes", result.Bytes).
		Dur("duration", result.Duration).
		Msg("File downloaded")
	return result, nil
}

// networkError wraps a transport failure without leaking the request URL,
// which carries the monitor token.
func networkError(target, reason string, err error) error {
	cause := httpclient.RedactError(err)
	if errors.Is(err, context.DeadlineExceeded) {
		cause = fmt.Errorf("%w: %v", errorwrapper.ErrTimeout, cause)
	}
	return errorwrapper.NewNetworkError(redactURL(target), reason, cause)
}

// redactURL keeps the last path segment and drops everything that can carry a token.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	segment := u.Path
	if i := strings.LastIndex(segment, "/"); i >= 0 {
		segment = segment[i+1:]
	}
	return u.Scheme + "://" + u.Host + "/.../" + segment
}
