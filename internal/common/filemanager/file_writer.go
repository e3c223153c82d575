package filemanager

import (
	"io"
	"os"
	"path/filepath"

	"github.com/aleister1102/filemonitor/internal/common/errorwrapper"
)

// StoredFile describes a file written by StreamToFile
type StoredFile struct {
	Path  string
	Name  string
	Bytes int64
}

// sourceReader remembers the last error returned by the wrapped reader so
// read failures can be told apart from write failures after io.Copy.
type sourceReader struct {
	r   io.Reader
	err error
}

func (s *sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF {
		s.err = err
	}
	return n, err
}

// StreamToFile copies src into dir under name. Content goes to a hidden .part
// file first and is renamed into place only when complete, so a failed copy
// never leaves a partial file under the final name. If name is taken, a
// _1, _2, ... suffix is added before the extension.
//
// Filesystem failures are returned as *errorwrapper.DownloadWriteError; a
// failure reading src is returned wrapped as-is.
func (fm *FileManager) StreamToFile(dir, name string, src io.Reader) (*StoredFile, error) {
	if err := fm.EnsureDirectory(dir, 0o755); err != nil {
		return nil, errorwrapper.NewDownloadWriteError(dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+name+".*.part")
	if err != nil {
		return nil, errorwrapper.NewDownloadWriteError(filepath.Join(dir, name), err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			if rmErr := os.Remove(tmpPath); rmErr != nil && !os.IsNotExist(rmErr) {
				fm.logger.Warn().Err(rmErr).Str("path", tmpPath).Msg("Failed to remove partial file")
			}
		}
	}()

	reader := &sourceReader{r: src}
	written, err := io.Copy(tmp, reader)
	if err != nil {
		if reader.err != nil {
			return nil, errorwrapper.WrapError(reader.err, "failed to read source")
		}
		return nil, errorwrapper.NewDownloadWriteError(tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		return nil, errorwrapper.NewDownloadWriteError(tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, errorwrapper.NewDownloadWriteError(tmpPath, err)
	}

	finalPath := fm.UniquePath(dir, name)
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return nil, errorwrapper.NewDownloadWriteError(finalPath, err)
	}
	committed = true

	stored := &StoredFile{
		Path:  finalPath,
		Name:  filepath.Base(finalPath),
		Bytes: written,
	}
	if stored.Name != name {
		fm.logger.Info().Str("requested", name).Str("stored_as", stored.Name).Msg("File already exists, renamed")
	}
	fm.logger.Debug().Str("path", finalPath).Int64("bytes", written).Msg("File written successfully")
	return stored, nil
}
