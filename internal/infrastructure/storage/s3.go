package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
)

// S3Config holds the bucket and connection settings for S3Store.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string // optional, for MinIO and other S3-compatible servers
	AccessKeyID     string
	SecretAccessKey string
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store uploads images to a bucket under the same key layout DiskStore uses.
type S3Store struct {
	client objectPutter
	bucket string
	now    func() time.Time
}

// NewS3Store builds an S3 client from cfg. Static credentials are used when
// provided, otherwise the default AWS credential chain applies.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{client: client, bucket: cfg.Bucket, now: time.Now}, nil
}

// Save validates the filename, sniffs the content type and uploads src.
// The returned path is the object key.
func (s *S3Store) Save(ctx context.Context, filename string, src io.ReadSeeker) (string, error) {
	if err := ValidateImageName(filename); err != nil {
		return "", err
	}

	mime, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("detect content type: %w", err)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind image: %w", err)
	}

	key := publicPath(objectName(filename, s.now()))
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        src,
		ContentType: aws.String(mime.String()),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put object: %w", err)
	}
	return key, nil
}
