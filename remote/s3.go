// Package remote mirrors s3:// inputs into a local staging directory.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

const scheme = "s3://"

var (
	ErrInvalidURL = errors.New("invalid s3 url")
	ErrNoObjects  = errors.New("no objects found")
)

type S3Config struct {
	Endpoint string
	Key      string
	Secret   string
	Region   string
	Secure   bool
}

type S3Fetcher struct {
	client *minio.Client
	logger zerolog.Logger
}

func NewS3Fetcher(cfg S3Config, logger zerolog.Logger) (*S3Fetcher, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Key, cfg.Secret, ""),
		Secure: cfg.Secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return &S3Fetcher{client: minioClient, logger: logger}, nil
}

func IsRemote(path string) bool {
	return strings.HasPrefix(path, scheme)
}

// ParseS3URL splits s3://bucket/prefix.
func ParseS3URL(raw string) (bucket string, prefix string, err error) {
	if !IsRemote(raw) {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("%w: %q: %v", ErrInvalidURL, raw, err)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("%w: %q has no bucket", ErrInvalidURL, raw)
	}
	return u.Host, strings.TrimPrefix(u.Path, "/"), nil
}

// Fetch downloads the object or the objects under the prefix named by raw
// into stagingDir/<bucket>/<key> and returns the local path matching raw.
func (s *S3Fetcher) Fetch(ctx context.Context, raw string, stagingDir string) (string, error) {
	bucket, prefix, err := ParseS3URL(raw)
	if err != nil {
		return "", err
	}
	root, err := filepath.Abs(filepath.Join(stagingDir, bucket))
	if err != nil {
		return "", err
	}
	dirPrefix := strings.TrimSuffix(prefix, "/") + "/"
	if prefix == "" {
		dirPrefix = ""
	}

	keys, err := s.list(ctx, bucket, prefix, dirPrefix)
	if err != nil {
		return "", fmt.Errorf("failed to list %q: %w", raw, err)
	}
	if len(keys) == 0 {
		return "", fmt.Errorf("%w: %q", ErrNoObjects, raw)
	}
	dests := make([]string, len(keys))
	for i, key := range keys {
		dests[i] = filepath.Join(root, filepath.FromSlash(key))
		if !strings.HasPrefix(dests[i], root+string(filepath.Separator)) {
			return "", fmt.Errorf("%w: object key %q escapes the staging directory", ErrInvalidURL, key)
		}
	}
	for i, key := range keys {
		if err = s.client.FGetObject(ctx, bucket, key, dests[i], minio.GetObjectOptions{}); err != nil {
			return "", fmt.Errorf("failed to download s3://%s/%s: %w", bucket, key, err)
		}
		s.logger.Debug().Str("object", key).Str("dest", dests[i]).Msg("object fetched")
	}
	return filepath.Join(root, filepath.FromSlash(strings.TrimSuffix(prefix, "/"))), nil
}

// list returns the object keys under prefix. The listing is cancelled on
// return.
func (s *S3Fetcher) list(ctx context.Context, bucket, prefix, dirPrefix string) ([]string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var keys []string
	for obj := range s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if strings.HasSuffix(obj.Key, "/") || (obj.Key != prefix && !strings.HasPrefix(obj.Key, dirPrefix)) {
			continue
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}
