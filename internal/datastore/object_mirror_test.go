package datastore_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aleister1102/filemonitor/internal/config"
	"github.com/aleister1102/filemonitor/internal/datastore"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectMirror_UploadsUnderPrefix(t *testing.T) {
	var mu sync.Mutex
	var puts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		if r.Method == http.MethodPut {
			mu.Lock()
			puts = append(puts, r.URL.Path)
			mu.Unlock()
			w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	endpoint, err := url.Parse(srv.URL)
	require.NoError(t, err)

	mirror, err := datastore.NewObjectMirror(config.MirrorConfig{
		Endpoint:  endpoint.Host,
		Bucket:    "archive",
		AccessKey: "access",
		SecretKey: "secret",
		Region:    "us-east-1",
		Prefix:    "/filemonitor/",
		UseSSL:    false,
	}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "filemonitor/file_1.txt", mirror.ObjectKey("file_1.txt"))

	local := filepath.Join(t.TempDir(), "file_1.txt")
	require.NoError(t, os.WriteFile(local, []byte("payload"), 0o644))

	require.NoError(t, mirror.Mirror(context.Background(), local, "file_1.txt"))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/archive/filemonitor/file_1.txt"}, puts)
}

func TestObjectMirror_MissingFile(t *testing.T) {
	mirror, err := datastore.NewObjectMirror(config.MirrorConfig{
		Endpoint: "localhost:9000", Bucket: "b", AccessKey: "a", SecretKey: "s", Region: "us-east-1",
	}, zerolog.Nop())
	require.NoError(t, err)

	err = mirror.Mirror(context.Background(), filepath.Join(t.TempDir(), "absent.txt"), "absent.txt")
	assert.Error(t, err)
}

func TestNewObjectMirror_Disabled(t *testing.T) {
	_, err := datastore.NewObjectMirror(config.MirrorConfig{}, zerolog.Nop())
	assert.Error(t, err)
}
