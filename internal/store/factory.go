package store

import (
	"context"
	"fmt"

	"mediakit/internal/config"
	"mediakit/internal/media"
)

// NewStoreFromConfig creates a RemoteStore implementation based on the store config type.
func NewStoreFromConfig(ctx context.Context, cfg config.StoreConfig) (media.RemoteStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore("default"), nil
	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem store requires fs_root to be set")
		}
		s, err := NewFileSystemStore("default", cfg.FSRoot)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 store requires s3_bucket to be set")
		}
		s, err := NewS3Store(ctx, S3Options{
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PublicURL: cfg.S3PublicURL,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case "minio":
		if cfg.MinioEndpoint == "" || cfg.MinioBucket == "" {
			return nil, fmt.Errorf("minio store requires minio_endpoint and minio_bucket to be set")
		}
		s, err := NewMinioStore(MinioOptions{
			Endpoint:  cfg.MinioEndpoint,
			Bucket:    cfg.MinioBucket,
			Prefix:    cfg.MinioPrefix,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case "http":
		if cfg.HTTPBaseURL == "" {
			return nil, fmt.Errorf("http store requires http_base_url to be set")
		}
		return NewHTTPStore(cfg.HTTPBaseURL, nil), nil
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}
