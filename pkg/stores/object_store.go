package stores

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"github.com/openfroyo/inventory/pkg/engine"
)

// objectClient is the subset of the minio client used by ObjectStore.
type objectClient interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// ObjectStoreConfig holds S3-compatible bucket configuration
type ObjectStoreConfig struct {
	// Endpoint is a host[:port] or URL. An http:// URL disables TLS.
	Endpoint  string
	Bucket    string
	Prefix    string
	Region    string
	AccessKey string
	SecretKey string
}

// ObjectStore uploads one template document per resource type into a bucket.
type ObjectStore struct {
	client   objectClient
	bucket   string
	prefix   string
	region   string
	metadata map[string]any
	logger   zerolog.Logger
}

// NewObjectStore creates a store for the configured bucket.
func NewObjectStore(cfg ObjectStoreConfig, metadata map[string]any, logger zerolog.Logger) (*ObjectStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	host, secure, err := parseEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	return newObjectStore(client, cfg, metadata, logger), nil
}

func newObjectStore(client objectClient, cfg ObjectStoreConfig, metadata map[string]any, logger zerolog.Logger) *ObjectStore {
	return &ObjectStore{
		client:   client,
		bucket:   cfg.Bucket,
		prefix:   strings.Trim(cfg.Prefix, "/"),
		region:   cfg.Region,
		metadata: metadata,
		logger:   logger.With().Str("component", "object_store").Str("bucket", cfg.Bucket).Logger(),
	}
}

// parseEndpoint splits an endpoint into the host and whether TLS is used.
func parseEndpoint(endpoint string) (string, bool, error) {
	if endpoint == "" {
		return "s3.amazonaws.com", true, nil
	}
	if !strings.Contains(endpoint, "://") {
		return endpoint, true, nil
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("invalid object store endpoint %q: %w", endpoint, err)
	}
	switch u.Scheme {
	case "https":
		return u.Host, true, nil
	case "http":
		return u.Host, false, nil
	default:
		return "", false, fmt.Errorf("unsupported object store scheme %q", u.Scheme)
	}
}

// EnsureBucket creates the bucket if it does not exist.
func (s *ObjectStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	s.logger.Info().Msg("Created bucket")
	return nil
}

// Key returns the object key of a type.
func (s *ObjectStore) Key(t engine.ResourceType) string {
	return path.Join(s.prefix, t.FileName()+".json")
}

// Report implements engine.Sink.
func (s *ObjectStore) Report(ctx context.Context, result *engine.TypeResult) error {
	key := s.Key(result.Type)

	switch actionFor(result) {
	case actionRemove:
		if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("failed to remove stale object %s: %w", key, err)
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

	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}

	s.logger.Debug().
		Str("type", string(result.Type)).
		Int("count", len(result.Instances)).
		Str("key", key).
		Msg("Uploaded inventory document")
	return nil
}
