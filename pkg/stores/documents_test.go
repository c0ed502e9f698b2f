package stores

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"

	"github.com/openfroyo/inventory/pkg/engine"
)

func TestTemplate_Encode(t *testing.T) {
	doc := NewTemplate("AWS::S3::Bucket", []engine.ResourceInstance{
		{Identifier: "b-2", Properties: engine.Properties{"Z": 1, "A": "x"}},
		{Identifier: "b-1"},
	}, map[string]any{"Region": "eu-west-1"})

	data, err := doc.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	want := `{
  "Resources": {
    "b-1": {
      "Metadata": {
        "Identifier": "b-1",
        "Region": "eu-west-1"
      },
      "Properties": {},
      "Type": "AWS::S3::Bucket"
    },
    "b-2": {
      "Metadata": {
        "Identifier": "b-2",
        "Region": "eu-west-1"
      },
      "Properties": {
        "A": "x",
        "Z": 1
      },
      "Type": "AWS::S3::Bucket"
    }
  }
}
`
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Errorf("Encode() mismatch (-want +got):\n%s", diff)
	}
}

func TestTemplate_MetadataIsNotShared(t *testing.T) {
	meta := map[string]any{"Region": "eu-west-1"}
	doc := NewTemplate("AWS::S3::Bucket", []engine.ResourceInstance{{Identifier: "a"}, {Identifier: "b"}}, meta)

	if doc.Resources["a"].Metadata["Identifier"] != "a" || doc.Resources["b"].Metadata["Identifier"] != "b" {
		t.Error("expected per-resource identifiers in metadata")
	}
	if _, ok := meta["Identifier"]; ok {
		t.Error("NewTemplate() modified the metadata argument")
	}
}

func readTemplate(t *testing.T, path string) Template {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	var doc Template
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("failed to decode %s: %v", path, err)
	}
	return doc
}

func TestFileStore_Report(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(filepath.Join(dir, "output"), nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	ctx := context.Background()

	path := store.Path("AWS::Amplify::App")
	if filepath.Base(path) != "aws-amplify-app.json" {
		t.Errorf("unexpected document name %s", filepath.Base(path))
	}

	if err := store.Report(ctx, enumerated("r", "AWS::Amplify::App", "app-1", "app-2")); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	doc := readTemplate(t, path)
	if len(doc.Resources) != 2 || doc.Resources["app-1"].Type != "AWS::Amplify::App" {
		t.Errorf("unexpected document: %+v", doc)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("failed to read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the document in the output directory, got %d entries", len(entries))
	}
}

func TestFileStore_Outcomes(t *testing.T) {
	tests := []struct {
		name       string
		result     *engine.TypeResult
		wantExists bool
	}{
		{
			name:       "empty enumeration removes stale document",
			result:     enumerated("r", "AWS::S3::Bucket"),
			wantExists: false,
		},
		{
			name:       "disabled removes stale document",
			result:     &engine.TypeResult{Type: "AWS::S3::Bucket", Status: engine.TypeStatusDisabled},
			wantExists: false,
		},
		{
			name:       "skipped keeps previous document",
			result:     &engine.TypeResult{Type: "AWS::S3::Bucket", Status: engine.TypeStatusSkipped},
			wantExists: true,
		},
		{
			name:       "failed keeps previous document",
			result:     &engine.TypeResult{Type: "AWS::S3::Bucket", Status: engine.TypeStatusFailed, Err: errors.New("boom")},
			wantExists: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewFileStore(t.TempDir(), nil, zerolog.Nop())
			if err != nil {
				t.Fatalf("NewFileStore() error = %v", err)
			}
			ctx := context.Background()

			if err := store.Report(ctx, enumerated("r", "AWS::S3::Bucket", "old")); err != nil {
				t.Fatalf("Report() error = %v", err)
			}
			if err := store.Report(ctx, tt.result); err != nil {
				t.Fatalf("Report() error = %v", err)
			}

			_, err = os.Stat(store.Path("AWS::S3::Bucket"))
			if exists := err == nil; exists != tt.wantExists {
				t.Errorf("document exists = %v, want %v", exists, tt.wantExists)
			}
		})
	}
}

func TestFileStore_EmptyWithoutPreviousDocument(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if err := store.Report(context.Background(), enumerated("r", "AWS::S3::Bucket")); err != nil {
		t.Errorf("Report() error = %v", err)
	}
}

type fakeObjectClient struct {
	exists  bool
	made    []string
	objects map[string][]byte
	removed []string
	putErr  error
}

func (f *fakeObjectClient) BucketExists(context.Context, string) (bool, error) {
	return f.exists, nil
}

func (f *fakeObjectClient) MakeBucket(_ context.Context, bucket string, _ minio.MakeBucketOptions) error {
	f.made = append(f.made, bucket)
	return nil
}

func (f *fakeObjectClient) PutObject(_ context.Context, _ string, key string, r io.Reader, _ int64, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.objects[key] = data
	return minio.UploadInfo{Key: key, Size: int64(len(data))}, nil
}

func (f *fakeObjectClient) RemoveObject(_ context.Context, _ string, key string, _ minio.RemoveObjectOptions) error {
	f.removed = append(f.removed, key)
	delete(f.objects, key)
	return nil
}

func TestObjectStore_Report(t *testing.T) {
	client := &fakeObjectClient{}
	store := newObjectStore(client, ObjectStoreConfig{Bucket: "inventory", Prefix: "/accounts/123/"}, nil, zerolog.Nop())
	ctx := context.Background()

	if err := store.Report(ctx, enumerated("r", "AWS::S3::Bucket", "b-1")); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	const key = "accounts/123/aws-s3-bucket.json"
	if _, ok := client.objects[key]; !ok {
		t.Fatalf("expected object %s, got %v", key, client.objects)
	}

	if err := store.Report(ctx, &engine.TypeResult{Type: "AWS::S3::Bucket", Status: engine.TypeStatusSkipped}); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if len(client.removed) != 0 {
		t.Error("skipped result must not remove the object")
	}

	if err := store.Report(ctx, enumerated("r", "AWS::S3::Bucket")); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if diff := cmp.Diff([]string{key}, client.removed); diff != "" {
		t.Errorf("removed mismatch (-want +got):\n%s", diff)
	}
}

func TestObjectStore_UploadError(t *testing.T) {
	boom := errors.New("boom")
	store := newObjectStore(&fakeObjectClient{putErr: boom}, ObjectStoreConfig{Bucket: "inventory"}, nil, zerolog.Nop())

	err := store.Report(context.Background(), enumerated("r", "AWS::S3::Bucket", "b-1"))
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped upload error, got %v", err)
	}
}

func TestObjectStore_EnsureBucket(t *testing.T) {
	client := &fakeObjectClient{}
	store := newObjectStore(client, ObjectStoreConfig{Bucket: "inventory"}, nil, zerolog.Nop())

	if err := store.EnsureBucket(context.Background()); err != nil {
		t.Fatalf("EnsureBucket() error = %v", err)
	}
	client.exists = true
	if err := store.EnsureBucket(context.Background()); err != nil {
		t.Fatalf("EnsureBucket() error = %v", err)
	}
	if diff := cmp.Diff([]string{"inventory"}, client.made); diff != "" {
		t.Errorf("made buckets mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		endpoint   string
		wantHost   string
		wantSecure bool
		wantErr    bool
	}{
		{endpoint: "", wantHost: "s3.amazonaws.com", wantSecure: true},
		{endpoint: "minio.local:9000", wantHost: "minio.local:9000", wantSecure: true},
		{endpoint: "http://localhost:9000", wantHost: "localhost:9000", wantSecure: false},
		{endpoint: "https://s3.eu-west-1.amazonaws.com", wantHost: "s3.eu-west-1.amazonaws.com", wantSecure: true},
		{endpoint: "ftp://example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			host, secure, err := parseEndpoint(tt.endpoint)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseEndpoint() error = %v, wantErr %v", err, tt.wantErr)
			}
			if host != tt.wantHost || secure != tt.wantSecure {
				t.Errorf("parseEndpoint() = %q, %v, want %q, %v", host, secure, tt.wantHost, tt.wantSecure)
			}
		})
	}
}

func TestMultiSink(t *testing.T) {
	boom := errors.New("boom")
	var calls []string
	sink := MultiSink{
		engine.SinkFunc(func(context.Context, *engine.TypeResult) error {
			calls = append(calls, "first")
			return boom
		}),
		nil,
		engine.SinkFunc(func(context.Context, *engine.TypeResult) error {
			calls = append(calls, "second")
			return nil
		}),
	}

	err := sink.Report(context.Background(), enumerated("r", "AWS::S3::Bucket"))
	if !errors.Is(err, boom) {
		t.Errorf("expected joined error, got %v", err)
	}
	if diff := cmp.Diff([]string{"first", "second"}, calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}
