package objectstore

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"tubecast/internal/config"
	"tubecast/internal/services"
)

const (
	contentTypeAudio = "audio/mpeg"
	contentTypeFeed  = "application/rss+xml"
	contentTypeOther = "application/octet-stream"
)

// Store publishes artifacts to an S3-compatible bucket.
type Store struct {
	client     *minio.Client
	bucket     string
	publicRead bool
}

// New builds a Store from the storage configuration. Endpoints may be given
// with or without a scheme; plain hosts use TLS.
func New(cfg config.Storage) (*Store, error) {
	host, secure, err := parseEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "storage", "endpoint", cfg.Endpoint, err)
	}
	client, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "storage", "client", host, err)
	}
	return &Store{client: client, bucket: cfg.Bucket, publicRead: cfg.PublicRead}, nil
}

func parseEndpoint(raw string) (string, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, fmt.Errorf("empty endpoint")
	}
	if !strings.Contains(raw, "://") {
		return strings.TrimSuffix(raw, "/"), true, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false, err
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("endpoint %q has no host", raw)
	}
	switch u.Scheme {
	case "https":
		return u.Host, true, nil
	case "http":
		return u.Host, false, nil
	default:
		return "", false, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
}

// ContentType returns the MIME type used when uploading key.
func ContentType(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".mp3":
		return contentTypeAudio
	case ".xml":
		return contentTypeFeed
	default:
		return contentTypeOther
	}
}

// Put uploads the file at localPath to key.
func (s *Store) Put(ctx context.Context, localPath, key string) error {
	opts := minio.PutObjectOptions{ContentType: ContentType(key)}
	if s.publicRead {
		opts.UserMetadata = map[string]string{"x-amz-acl": "public-read"}
	}
	if _, err := s.client.FPutObject(ctx, s.bucket, key, localPath, opts); err != nil {
		return services.Wrap(services.ErrTransport, "publish", "put", key, err)
	}
	return nil
}

// Delete removes key. Removing an absent key succeeds.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return services.Wrap(services.ErrTransport, "retire", "delete", key, err)
	}
	return nil
}

// List returns every key under prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, services.Wrap(services.ErrTransport, "retire", "list", prefix, obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}
