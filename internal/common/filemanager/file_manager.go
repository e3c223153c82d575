package filemanager

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/aleister1102/filemonitor/internal/common/errorwrapper"
	"github.com/rs/zerolog"
)

// FileManager provides the file operations the monitor needs with standardized error handling and logging
type FileManager struct {
	logger zerolog.Logger
}

// NewFileManager creates a new FileManager instance
func NewFileManager(logger zerolog.Logger) *FileManager {
	return &FileManager{
		logger: logger.With().Str("component", "FileManager").Logger(),
	}
}

// FileExists checks if a file or directory exists
func (fm *FileManager) FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// ReadFile reads a whole regular file, refusing anything above maxSize bytes (0 = no limit).
func (fm *FileManager) ReadFile(path string, maxSize int64) ([]byte, error) {
	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errorwrapper.WrapError(errorwrapper.ErrNotFound, fmt.Sprintf("file not found: %s", path))
		}
		return nil, errorwrapper.WrapError(err, fmt.Sprintf("failed to get file info for: %s", path))
	}
	if stat.IsDir() {
		return nil, errorwrapper.NewValidationError("path", path, "is a directory, not a file")
	}
	if maxSize > 0 && stat.Size() > maxSize {
		return nil, errorwrapper.NewValidationError("file_size", stat.Size(), fmt.Sprintf("exceeds maximum size of %d bytes", maxSize))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to open file: "+path)
	}
	defer func() { _ = f.Close() }()

	var reader io.Reader = f
	if maxSize > 0 {
		reader = io.LimitReader(f, maxSize)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to read file: "+path)
	}
	return data, nil
}

// EnsureDirectory creates a directory and its parents if they don't exist
func (fm *FileManager) EnsureDirectory(path string, perm fs.FileMode) error {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return errorwrapper.NewValidationError("path", path, "exists but is not a directory")
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return errorwrapper.WrapError(err, "failed to check directory: "+path)
	}

	if err := os.MkdirAll(path, perm); err != nil {
		return errorwrapper.WrapError(err, "failed to create directory: "+path)
	}

	fm.logger.Debug().Str("path", path).Msg("Created directory")
	return nil
}

// UniquePath returns dir/name, or dir/base_N.ext with the smallest N >= 1
// that does not exist yet when dir/name is already taken.
func (fm *FileManager) UniquePath(dir, name string) string {
	candidate := filepath.Join(dir, name)
	if !fm.FileExists(candidate) {
		return candidate
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for counter := 1; ; counter++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, counter, ext))
		if !fm.FileExists(candidate) {
			return candidate
		}
	}
}
