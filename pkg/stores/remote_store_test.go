package stores

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/sftp"
	"github.com/rs/zerolog"

	"github.com/openfroyo/inventory/pkg/engine"
	"github.com/openfroyo/inventory/pkg/transports/ssh"
)

// newLocalRemoteStore serves the local filesystem over an in-process SFTP pipe.
func newLocalRemoteStore(t *testing.T, dir string) *RemoteStore {
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

	store := NewRemoteStore(ssh.NewClient(session, zerolog.Nop()), dir, nil, zerolog.Nop())
	t.Cleanup(func() {
		_ = store.Close()
		_ = server.Close()
	})
	return store
}

func TestRemoteStore_Report(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "inventory")
	store := newLocalRemoteStore(t, dir)
	ctx := context.Background()

	if err := store.Report(ctx, enumerated("r", "AWS::Amplify::App", "app-1", "app-2")); err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	doc := readTemplate(t, filepath.Join(dir, "aws-amplify-app.json"))
	if len(doc.Resources) != 2 || doc.Resources["app-2"].Type != "AWS::Amplify::App" {
		t.Errorf("unexpected document: %+v", doc)
	}

	if err := store.Report(ctx, &engine.TypeResult{Type: "AWS::Amplify::App", Status: engine.TypeStatusDisabled}); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "aws-amplify-app.json")); !os.IsNotExist(err) {
		t.Errorf("expected the stale document to be removed, stat error = %v", err)
	}
}

type fakeRemoteFiles struct {
	written map[string][]byte
	removed []string
	err     error
}

func (f *fakeRemoteFiles) WriteFile(_ context.Context, name string, data []byte, _ fs.FileMode) error {
	if f.err != nil {
		return f.err
	}
	f.written[name] = data
	return nil
}

func (f *fakeRemoteFiles) Remove(_ context.Context, name string) error {
	f.removed = append(f.removed, name)
	return f.err
}

func (f *fakeRemoteFiles) Close() error { return nil }

func TestRemoteStore_Outcomes(t *testing.T) {
	files := &fakeRemoteFiles{written: make(map[string][]byte)}
	store := newRemoteStore(files, "/srv/inventory", nil, zerolog.Nop())
	ctx := context.Background()

	if got := store.Path("AWS::S3::Bucket"); got != "/srv/inventory/aws-s3-bucket.json" {
		t.Errorf("Path() = %s", got)
	}

	results := []*engine.TypeResult{
		{Type: "AWS::EC2::VPC", Status: engine.TypeStatusSkipped},
		{Type: "AWS::EC2::Subnet", Status: engine.TypeStatusFailed, Err: errors.New("boom")},
		enumerated("r", "AWS::S3::Bucket"),
	}
	for _, r := range results {
		if err := store.Report(ctx, r); err != nil {
			t.Fatalf("Report() error = %v", err)
		}
	}

	if len(files.written) != 0 {
		t.Errorf("unexpected uploads: %v", files.written)
	}
	if len(files.removed) != 1 || files.removed[0] != "/srv/inventory/aws-s3-bucket.json" {
		t.Errorf("removed = %v, want only the empty bucket document", files.removed)
	}
}

func TestRemoteStore_UploadError(t *testing.T) {
	files := &fakeRemoteFiles{written: make(map[string][]byte), err: errors.New("connection lost")}
	store := newRemoteStore(files, "/srv/inventory", nil, zerolog.Nop())

	err := store.Report(context.Background(), enumerated("r", "AWS::S3::Bucket", "logs"))
	if err == nil || !errors.Is(err, files.err) {
		t.Errorf("expected the upload error, got %v", err)
	}
}
