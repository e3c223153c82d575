package datastore

import (
	"context"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aleister1102/filemonitor/internal/common/errorwrapper"
	"github.com/aleister1102/filemonitor/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// ObjectMirror uploads downloaded files to an S3-compatible bucket.
type ObjectMirror struct {
	client *minio.Client
	bucket string
	prefix string
	logger zerolog.Logger
}

// NewObjectMirror creates a mirror for cfg. No network call is made until
// the first upload.
func NewObjectMirror(cfg config.MirrorConfig, logger zerolog.Logger) (*ObjectMirror, error) {
	if !cfg.Enabled() {
		return nil, errorwrapper.NewValidationError("MIRROR_ENDPOINT", "", "mirror endpoint is not configured")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to create minio client")
	}

	return &ObjectMirror{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: logger.With().Str("component", "ObjectMirror").Str("bucket", cfg.Bucket).Logger(),
	}, nil
}

// ObjectKey returns the bucket key used for objectName.
func (m *ObjectMirror) ObjectKey(objectName string) string {
	if m.prefix == "" {
		return objectName
	}
	return path.Join(m.prefix, objectName)
}

// Mirror uploads the file at localPath under the configured prefix.
func (m *ObjectMirror) Mirror(ctx context.Context, localPath, objectName string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return errorwrapper.WrapError(err, "failed to open file for mirroring")
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return errorwrapper.WrapError(err, "failed to stat file for mirroring")
	}

	contentType := mime.TypeByExtension(filepath.Ext(objectName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := m.ObjectKey(objectName)
	uploaded, err := m.client.PutObject(ctx, m.bucket, key, file, info.Size(), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return errorwrapper.WrapError(err, "failed to upload "+key)
	}

	m.logger.Info().Str("key", key).Int64("bytes", uploaded.Size).Msg("File mirrored")
	return nil
}
