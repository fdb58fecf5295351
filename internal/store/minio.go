package store

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"mediakit/internal/media"
)

// minioPartSize bounds the buffer minio-go allocates per part when the body
// length is unknown.
const minioPartSize = 16 << 20

// MinioOptions configures a MinioStore.
type MinioOptions struct {
	Endpoint  string // host:port, without scheme
	Bucket    string
	Prefix    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// minioClient is the subset of *minio.Client used by MinioStore.
type minioClient interface {
	PutObject(ctx context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucket, object string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	BucketExists(ctx context.Context, bucket string) (bool, error)
}

type objectGetter func(ctx context.Context, bucket, object string) (io.ReadCloser, error)

// MinioStore stores objects in a MinIO bucket through the native MinIO client.
// Object URLs are path-style: <scheme>://<endpoint>/<bucket>/<key>.
type MinioStore struct {
	bucket  string
	prefix  string
	baseURL string
	client  minioClient
	get     objectGetter
}

// NewMinioStore creates a MinioStore with static credentials.
func NewMinioStore(opts MinioOptions) (*MinioStore, error) {
	if opts.Endpoint == "" || opts.Bucket == "" {
		return nil, fmt.Errorf("minio store requires an endpoint and a bucket")
	}

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}

	get := func(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
		return client.GetObject(ctx, bucket, object, minio.GetObjectOptions{})
	}
	return newMinioStore(opts, client, get), nil
}

func newMinioStore(opts MinioOptions, client minioClient, get objectGetter) *MinioStore {
	scheme := "http"
	if opts.UseSSL {
		scheme = "https"
	}
	return &MinioStore{
		bucket:  opts.Bucket,
		prefix:  strings.Trim(opts.Prefix, "/"),
		baseURL: fmt.Sprintf("%s://%s/%s", scheme, strings.TrimRight(opts.Endpoint, "/"), opts.Bucket),
		client:  client,
		get:     get,
	}
}

func (s *MinioStore) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}

// Put streams r into the bucket and returns the object URL.
func (s *MinioStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	objectKey := s.objectKey(key)
	_, err := s.client.PutObject(ctx, s.bucket, objectKey, r, -1, minio.PutObjectOptions{
		ContentType: contentType,
		PartSize:    minioPartSize,
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s to bucket %s: %w", objectKey, s.bucket, err)
	}
	return s.baseURL + "/" + escapeKey(objectKey), nil
}

// Open downloads the object addressed by one of this store's URLs.
func (s *MinioStore) Open(ctx context.Context, url string) (*media.RemoteObject, error) {
	escaped, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok {
		return nil, fmt.Errorf("url not served by bucket %s: %s", s.bucket, url)
	}
	key, ok := unescapeKey(escaped)
	if !ok {
		return nil, fmt.Errorf("malformed object url: %s", url)
	}

	// GetObject is lazy; Stat surfaces a missing object before any read.
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("stat %s in bucket %s: %w", key, s.bucket, err)
	}
	body, err := s.get(ctx, s.bucket, key)
	if err != nil {
		return nil, fmt.Errorf("getting %s from bucket %s: %w", key, s.bucket, err)
	}
	return &media.RemoteObject{Body: body, ContentLength: info.Size}, nil
}

// ValidateSetup verifies that the bucket exists.
func (s *MinioStore) ValidateSetup(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("checking bucket %s: %w", s.bucket, err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", s.bucket)
	}
	return nil
}

// Compile-time check that MinioStore implements media.RemoteStore interface
var _ media.RemoteStore = (*MinioStore)(nil)
