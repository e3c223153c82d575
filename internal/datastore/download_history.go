package datastore

import (
	"context"
	"path/filepath"

	"github.com/aleister1102/filemonitor/internal/common/errorwrapper"
	"github.com/aleister1102/filemonitor/internal/common/filemanager"
	"github.com/aleister1102/filemonitor/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

const downloadHistorySchema = `
CREATE TABLE IF NOT EXISTS download_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	file_index INTEGER NOT NULL,
	extension TEXT NOT NULL,
	url TEXT NOT NULL,
	stored_path TEXT NOT NULL DEFAULT '',
	size_bytes INTEGER NOT NULL DEFAULT 0,
	success BOOLEAN NOT NULL,
	error TEXT NOT NULL DEFAULT '',
	downloaded_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_download_history_index ON download_history (file_index);
`

// DownloadHistory is an append-only audit log of download attempts. It is
// never read back to decide what to download.
type DownloadHistory struct {
	db     *sqlx.DB
	logger zerolog.Logger
}

// NewDownloadHistory opens (or creates) the sqlite database at dbPath and
// ensures the schema exists.
func NewDownloadHistory(dbPath string, logger zerolog.Logger) (*DownloadHistory, error) {
	moduleLogger := logger.With().Str("component", "DownloadHistory").Logger()
	if dbPath == "" {
		return nil, errorwrapper.NewValidationError("HISTORY_DB_PATH", dbPath, "database path is empty")
	}

	fm := filemanager.NewFileManager(logger)
	if err := fm.EnsureDirectory(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to create history database directory")
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to open history database "+dbPath)
	}
	// sqlite allows a single writer; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(downloadHistorySchema); err != nil {
		_ = db.Close()
		return nil, errorwrapper.WrapError(err, "failed to initialize history schema")
	}

	moduleLogger.Info().Str("path", dbPath).Msg("Download history initialized")
	return &DownloadHistory{db: db, logger: moduleLogger}, nil
}

// Close closes the database connection.
func (h *DownloadHistory) Close() error {
	if h.db == nil {
		return nil
	}
	return h.db.Close()
}

// RecordDownload appends one attempt.
func (h *DownloadHistory) RecordDownload(ctx context.Context, record models.DownloadRecord) error {
	record.DownloadedAt = record.DownloadedAt.UTC()
	const query = `INSERT INTO download_history
		(run_id, file_index, extension, url, stored_path, size_bytes, success, error, downloaded_at)
		VALUES (:run_id, :file_index, :extension, :url, :stored_path, :size_bytes, :success, :error, :downloaded_at)`

	if _, err := h.db.NamedExecContext(ctx, query, record); err != nil {
		return errorwrapper.WrapError(err, "failed to insert download record")
	}
	h.logger.Debug().Int("index", record.FileIndex).Bool("success", record.Success).Msg("Download attempt recorded")
	return nil
}

// RecentDownloads returns up to limit records, newest first.
func (h *DownloadHistory) RecentDownloads(ctx context.Context, limit int) ([]models.DownloadRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	records := []models.DownloadRecord{}
	err := h.db.SelectContext(ctx, &records,
		`SELECT id, run_id, file_index, extension, url, stored_path, size_bytes, success, error, downloaded_at
		FROM download_history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to query recent downloads")
	}
	return records, nil
}

// CountSuccessful returns how many attempts stored a file, across all runs.
func (h *DownloadHistory) CountSuccessful(ctx context.Context) (int64, error) {
	var count int64
	if err := h.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM download_history WHERE success = 1`); err != nil {
		return 0, errorwrapper.WrapError(err, "failed to count successful downloads")
	}
	return count, nil
}
