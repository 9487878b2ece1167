package gcp

import (
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"

	"github.com/yungbote/vitality-backend/internal/pkg/ctxutil"
	"github.com/yungbote/vitality-backend/internal/pkg/logger"
)

type Bucket interface {
	ReadObject(ctx context.Context, gcsURI string) ([]byte, error)
	ObjectExists(ctx context.Context, gcsURI string) (bool, error)
	Close() error
}

type bucketService struct {
	log    *logger.Logger
	client *storage.Client
}

func NewBucket(log *logger.Logger) (Bucket, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	slog := log.With("service", "gcp.Bucket")

	ctx := context.Background()
	opts := ClientOptionsFromEnv()

	c, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}

	return &bucketService{log: slog, client: c}, nil
}

func (s *bucketService) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *bucketService) ReadObject(ctx context.Context, gcsURI string) ([]byte, error) {
	bucket, key, err := ParseGCSURI(gcsURI)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, fmt.Errorf("gs uri missing object key: %q", gcsURI)
	}

	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	rc, err := s.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", gcsURI, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (s *bucketService) ObjectExists(ctx context.Context, gcsURI string) (bool, error) {
	bucket, key, err := ParseGCSURI(gcsURI)
	if err != nil {
		return false, err
	}
	if key == "" {
		return false, fmt.Errorf("gs uri missing object key: %q", gcsURI)
	}

	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err = s.client.Bucket(bucket).Object(key).Attrs(ctx)
	if err == storage.ErrObjectNotExist {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
