package store

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"mediakit/internal/media"
)

// S3Options configures an S3Store.
type S3Options struct {
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string // custom endpoint for S3-compatible stores such as MinIO
	PublicURL string // base of returned URLs; derived from Endpoint/Region when empty
	AccessKey string // static credentials; the default chain is used when empty
	SecretKey string
}

// s3Client is the subset of *s3.Client used by S3Store.
type s3Client interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// s3Uploader is the subset of *manager.Uploader used by S3Store.
type s3Uploader interface {
	Upload(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Store stores objects in an S3 bucket. Uploads go through the s3 manager
// so bodies of unknown length (sealed streams) are sent as multipart uploads.
type S3Store struct {
	bucket    string
	prefix    string
	publicURL string
	client    s3Client
	uploader  s3Uploader
}

// NewS3Store creates an S3Store using the AWS SDK default config chain,
// overridden by the static credentials and endpoint in opts when set.
func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 store requires a bucket")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Store(opts, client, manager.NewUploader(client)), nil
}

func newS3Store(opts S3Options, client s3Client, uploader s3Uploader) *S3Store {
	return &S3Store{
		bucket:    opts.Bucket,
		prefix:    strings.Trim(opts.Prefix, "/"),
		publicURL: strings.TrimRight(publicURL(opts), "/"),
		client:    client,
		uploader:  uploader,
	}
}

func publicURL(opts S3Options) string {
	switch {
	case opts.PublicURL != "":
		return opts.PublicURL
	case opts.Endpoint != "":
		return strings.TrimRight(opts.Endpoint, "/") + "/" + opts.Bucket
	case opts.Region != "":
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
	default:
		return fmt.Sprintf("https://%s.s3.amazonaws.com", opts.Bucket)
	}
}

func (s *S3Store) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}

// Put uploads r under key and returns the object's public URL.
func (s *S3Store) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	objectKey := s.objectKey(key)
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s to bucket %s: %w", objectKey, s.bucket, err)
	}
	return s.publicURL + "/" + escapeKey(objectKey), nil
}

// Open downloads the object addressed by one of this store's public URLs or
// by an s3://<bucket>/<key> URL.
func (s *S3Store) Open(ctx context.Context, url string) (*media.RemoteObject, error) {
	key, ok := s.keyForURL(url)
	if !ok {
		return nil, fmt.Errorf("url not served by bucket %s: %s", s.bucket, url)
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("getting %s from bucket %s: %w", key, s.bucket, err)
	}

	length := int64(-1)
	if out.ContentLength != nil {
		length = *out.ContentLength
	}
	return &media.RemoteObject{Body: out.Body, ContentLength: length}, nil
}

func (s *S3Store) keyForURL(url string) (string, bool) {
	if escaped, ok := strings.CutPrefix(url, s.publicURL+"/"); ok {
		return unescapeKey(escaped)
	}
	if escaped, ok := strings.CutPrefix(url, "s3://"+s.bucket+"/"); ok {
		return unescapeKey(escaped)
	}
	return "", false
}

// ValidateSetup verifies that the bucket exists and is accessible.
func (s *S3Store) ValidateSetup(ctx context.Context) error {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("bucket %s not accessible: %w", s.bucket, err)
	}
	return nil
}

// Compile-time check that S3Store implements media.RemoteStore interface
var _ media.RemoteStore = (*S3Store)(nil)
