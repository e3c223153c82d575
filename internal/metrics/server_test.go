package metrics

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aleister1102/filemonitor/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHistory struct {
	records    []models.DownloadRecord
	successful int64
	err        error
	countErr   error
}

func (f *fakeHistory) RecentDownloads(_ context.Context, limit int) ([]models.DownloadRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.records) > limit {
		return f.records[:limit], nil
	}
	return f.records, nil
}

func (f *fakeHistory) CountSuccessful(context.Context) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.successful, nil
}

func newTestServer(t *testing.T, history HistoryReader) *Server {
	t.Helper()
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	opts := ServerOptions{
		ListenAddr: "127.0.0.1:0",
		Collector:  NewCollector(),
		Stats: func() models.RunStats {
			return models.RunStats{RunID: "run-1", StartTime: start, ChecksPerformed: 12, CurrentIndex: 7}
		},
	}
	if history != nil {
		opts.History = history
	}
	srv, err := NewServer(opts, zerolog.Nop())
	require.NoError(t, err)
	srv.now = func() time.Time { return start.Add(90 * time.Second) }
	return srv
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestServer_Status(t *testing.T) {
	history := &fakeHistory{
		records: []models.DownloadRecord{
			{ID: 2, FileIndex: 7, Extension: "zip", URL: "https://files.example/secret/file_7.zip", Success: true},
		},
		successful: 31,
	}
	srv := newTestServer(t, history)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "run-1", resp.Stats.RunID)
	assert.Equal(t, int64(12), resp.Stats.ChecksPerformed)
	assert.Equal(t, int64(90), resp.UptimeSeconds)
	require.Len(t, resp.RecentDownloads, 1)
	assert.Equal(t, 7, resp.RecentDownloads[0].FileIndex)
	assert.NotContains(t, rec.Body.String(), "secret")
	assert.Equal(t, int64(31), resp.SuccessfulDownloadsAllRuns)
	assert.Contains(t, rec.Body.String(), `"successful_downloads_all_runs":31`)

	require.Len(t, resp.Indices, 2)
	assert.False(t, resp.Indices[0].Discovered)
	assert.True(t, resp.Indices[1].Discovered)
	assert.Equal(t, "/data/file_7.zip", resp.Indices[1].DownloadedPath)
}

func TestServer_StatusWithoutHistory(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Zero(t, resp.SuccessfulDownloadsAllRuns)
	assert.Empty(t, resp.RecentDownloads)
	assert.Len(t, resp.Indices, 2)
}

func TestServer_StatusHistoryError(t *testing.T) {
	srv := newTestServer(t, &fakeHistory{err: errors.New("database is locked")})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "database is locked")

	srv = newTestServer(t, &fakeHistory{countErr: errors.New("no such table")})
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "no such table")
}

func TestServer_RejectsOtherMethods(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/status", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_ServeAndShutdown(t *testing.T) {
	srv := newTestServer(t, nil)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, listener) }()

	url := "http://" + listener.Addr().String() + "/metrics"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK && len(body) > 0
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestNewServer_RequiresSources(t *testing.T) {
	_, err := NewServer(ServerOptions{Stats: func() models.RunStats { return models.RunStats{} }}, zerolog.Nop())
	assert.Error(t, err)

	_, err = NewServer(ServerOptions{Collector: NewCollector()}, zerolog.Nop())
	assert.Error(t, err)
}
