package stores

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/openfroyo/inventory/pkg/engine"
)

// FileStore writes one template document per resource type into a directory.
type FileStore struct {
	dir      string
	metadata map[string]any
	logger   zerolog.Logger
}

// NewFileStore creates the output directory and returns a store writing into it.
// metadata is added to every resource of every document.
func NewFileStore(dir string, metadata map[string]any, logger zerolog.Logger) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &FileStore{
		dir:      dir,
		metadata: metadata,
		logger:   logger.With().Str("component", "file_store").Logger(),
	}, nil
}

// Path returns the document path of a type.
func (s *FileStore) Path(t engine.ResourceType) string {
	return filepath.Join(s.dir, t.FileName()+".json")
}

// Report implements engine.Sink.
func (s *FileStore) Report(_ context.Context, result *engine.TypeResult) error {
	path := s.Path(result.Type)

	switch actionFor(result) {
	case actionRemove:
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove stale document %s: %w", path, err)
		}
		return nil
	case actionWrite:
	default:
		return nil
	}

	data, err := NewTemplate(result.Type, result.Instances, s.metadata).Encode()
	if err != nil {
		return err
	}

	// Write to a temporary file first so readers never see a partial document.
	tmp, err := os.CreateTemp(s.dir, "."+result.Type.FileName()+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	s.logger.Debug().
		Str("type", string(result.Type)).
		Int("count", len(result.Instances)).
		Str("path", path).
		Msg("Wrote inventory document")
	return nil
}
