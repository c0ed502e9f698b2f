package ssh

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/sftp"
	"github.com/rs/zerolog"
)

// newPipeClient connects a Client to an in-process SFTP server serving the
// local filesystem.
func newPipeClient(t *testing.T) *Client {
	t.Helper()

	clientReader, serverWriter := io.Pipe()
	serverReader, clientWriter := io.Pipe()

	server, err := sftp.NewServer(struct {
		io.Reader
		io.WriteCloser
	}{serverReader, serverWriter})
	if err != nil {
		t.Fatalf("failed to start SFTP server: %v", err)
	}
	go func() { _ = server.Serve() }()

	session, err := sftp.NewClientPipe(clientReader, clientWriter)
	if err != nil {
		t.Fatalf("failed to open SFTP session: %v", err)
	}

	client := NewClient(session, zerolog.Nop())
	t.Cleanup(func() {
		_ = client.Close()
		_ = server.Close()
	})
	return client
}

func TestClient_WriteFile(t *testing.T) {
	client := newPipeClient(t)
	ctx := context.Background()
	target := filepath.Join(t.TempDir(), "nested", "aws-s3-bucket.json")

	if err := client.WriteFile(ctx, target, []byte(`{"v":1}`), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := client.WriteFile(ctx, target, []byte(`{"v":2}`), 0o644); err != nil {
		t.Fatalf("WriteFile() overwrite error = %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("document not written: %v", err)
	}
	if string(data) != `{"v":2}` {
		t.Errorf("unexpected content %q", data)
	}

	remote, err := client.ReadFile(ctx, target)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(remote) != `{"v":2}` {
		t.Errorf("ReadFile() = %q", remote)
	}

	entries, err := os.ReadDir(filepath.Dir(target))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}

func TestClient_Remove(t *testing.T) {
	client := newPipeClient(t)
	ctx := context.Background()
	target := filepath.Join(t.TempDir(), "doc.json")

	if err := os.WriteFile(target, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := client.Remove(ctx, target); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Errorf("expected file to be removed, stat error = %v", err)
	}

	// Removing again is not an error
	if err := client.Remove(ctx, target); err != nil {
		t.Errorf("Remove() of missing file error = %v", err)
	}
}

func TestClient_CanceledContext(t *testing.T) {
	client := newPipeClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.WriteFile(ctx, filepath.Join(t.TempDir(), "doc.json"), []byte("{}"), 0)

	var terr *TransportError
	if !errors.As(err, &terr) || terr.Op != "write" {
		t.Fatalf("expected a write TransportError, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDial_Refused(t *testing.T) {
	cfg := DefaultConfig("127.0.0.1", "inventory")
	cfg.Port = 1
	cfg.AuthMethod = AuthMethodPassword
	cfg.Password = "secret"
	cfg.StrictHostKeyChecking = false
	cfg.ConnectionTimeout = time.Second

	_, err := Dial(context.Background(), cfg, zerolog.Nop())

	var terr *TransportError
	if !errors.As(err, &terr) || terr.Op != "connect" || !terr.Temporary() {
		t.Fatalf("expected a temporary connect error, got %v", err)
	}
}

func TestDial_InvalidConfig(t *testing.T) {
	_, err := Dial(context.Background(), &Config{}, zerolog.Nop())
	if err == nil || !strings.Contains(err.Error(), "invalid config") {
		t.Errorf("expected invalid config error, got %v", err)
	}
}

func TestTransportError(t *testing.T) {
	err := &TransportError{Op: "write", Path: "/srv/doc.json", Err: os.ErrPermission}
	if err.Error() != "write /srv/doc.json: permission denied" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, os.ErrPermission) {
		t.Error("expected the cause to be unwrapped")
	}
}
