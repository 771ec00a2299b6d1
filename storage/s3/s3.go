// Package s3 is an Amazon S3 (or S3-compatible) archive backend.
package s3

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/kbukum/speakerkit/logger"
	"github.com/kbukum/speakerkit/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderS3, func(cfg storage.ArchiveConfig, log *logger.Logger) (storage.Storage, error) {
		return NewStorage(context.Background(), cfg, log)
	})
}

// Storage implements storage.Storage on an S3 bucket.
type Storage struct {
	client *awss3.Client
	bucket string
	log    *logger.Logger
}

var _ storage.Storage = (*Storage)(nil)

// NewStorage creates a client for cfg.Bucket. Static credentials are used
// when both keys are set; otherwise the default AWS credential chain applies.
func NewStorage(ctx context.Context, cfg storage.ArchiveConfig, log *logger.Logger) (*Storage, error) {
	if log == nil {
		log = logger.NewNop()
	}
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		if cfg.ForcePathStyle {
			o.UsePathStyle = true
		}
	})
	log.Debug("s3 archive ready", map[string]interface{}{"bucket": cfg.Bucket, "endpoint": cfg.Endpoint})
	return &Storage{client: client, bucket: cfg.Bucket, log: log}, nil
}

// Upload writes r to key. The content type is guessed from the extension.
func (s *Storage) Upload(ctx context.Context, key string, r io.Reader) error {
	in := &awss3.PutObjectInput{Bucket: &s.bucket, Key: aws.String(key), Body: r}
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		in.ContentType = aws.String(ct)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("storage: s3 put %s: %w", key, err)
	}
	return nil
}

// Download streams the object at key.
func (s *Storage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{Bucket: &s.bucket, Key: aws.String(key)})
	if err != nil {
		var missing *types.NoSuchKey
		if stderrors.As(err, &missing) {
			return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, key)
		}
		return nil, fmt.Errorf("storage: s3 get %s: %w", key, err)
	}
	return out.Body, nil
}

// Delete removes the object. S3 treats missing keys as success.
func (s *Storage) Delete(ctx context.Context, key string) error {
	if _, err := s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{Bucket: &s.bucket, Key: aws.String(key)}); err != nil {
		return fmt.Errorf("storage: s3 delete %s: %w", key, err)
	}
	return nil
}

// Exists issues a HEAD request. Only a not-found answer means false.
func (s *Storage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &awss3.HeadObjectInput{Bucket: &s.bucket, Key: aws.String(key)})
	var missing *types.NotFound
	switch {
	case err == nil:
		return true, nil
	case stderrors.As(err, &missing):
		return false, nil
	default:
		return false, fmt.Errorf("storage: s3 head %s: %w", key, err)
	}
}

// List pages through the objects under prefix.
func (s *Storage) List(ctx context.Context, prefix string) ([]storage.Object, error) {
	pages := awss3.NewListObjectsV2Paginator(s.client, &awss3.ListObjectsV2Input{
		Bucket: &s.bucket,
		Prefix: aws.String(prefix),
	})

	objects := []storage.Object{}
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("storage: s3 list %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			objects = append(objects, storage.Object{
				Path:         aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}
	return objects, nil
}
