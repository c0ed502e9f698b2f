package stores

import (
	"context"
	"fmt"
	"io/fs"
	"path"

	"github.com/rs/zerolog"

	"github.com/openfroyo/inventory/pkg/engine"
	"github.com/openfroyo/inventory/pkg/transports/ssh"
)

// remoteFiles is the subset of the SFTP client used by RemoteStore.
type remoteFiles interface {
	WriteFile(ctx context.Context, name string, data []byte, mode fs.FileMode) error
	Remove(ctx context.Context, name string) error
	Close() error
}

// RemoteStore writes one template document per resource type into a
// directory of a remote host over SFTP.
type RemoteStore struct {
	client   remoteFiles
	dir      string
	metadata map[string]any
	logger   zerolog.Logger
}

// DialRemoteStore connects to the host of cfg and returns a store writing into dir.
func DialRemoteStore(ctx context.Context, cfg *ssh.Config, dir string, metadata map[string]any, logger zerolog.Logger) (*RemoteStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("remote directory is required")
	}
	client, err := ssh.Dial(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Address(), err)
	}
	return NewRemoteStore(client, dir, metadata, logger), nil
}

// NewRemoteStore returns a store writing through an established client.
func NewRemoteStore(client *ssh.Client, dir string, metadata map[string]any, logger zerolog.Logger) *RemoteStore {
	return newRemoteStore(client, dir, metadata, logger)
}

func newRemoteStore(client remoteFiles, dir string, metadata map[string]any, logger zerolog.Logger) *RemoteStore {
	return &RemoteStore{
		client:   client,
		dir:      dir,
		metadata: metadata,
		logger:   logger.With().Str("component", "remote_store").Str("dir", dir).Logger(),
	}
}

// Path returns the remote document path of a type.
func (s *RemoteStore) Path(t engine.ResourceType) string {
	return path.Join(s.dir, t.FileName()+".json")
}

// Report implements engine.Sink.
func (s *RemoteStore) Report(ctx context.Context, result *engine.TypeResult) error {
	name := s.Path(result.Type)

	switch actionFor(result) {
	case actionRemove:
		if err := s.client.Remove(ctx, name); err != nil {
			return fmt.Errorf("failed to remove stale remote document: %w", err)
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
	if err := s.client.WriteFile(ctx, name, data, 0o644); err != nil {
		return fmt.Errorf("failed to upload document: %w", err)
	}

	s.logger.Debug().
		Str("resource_type", string(result.Type)).
		Int("instances", len(result.Instances)).
		Msg("Uploaded document")
	return nil
}

// Close ends the SFTP session.
func (s *RemoteStore) Close() error {
	return s.client.Close()
}
