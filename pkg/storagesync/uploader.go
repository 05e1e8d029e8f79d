package storagesync

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Uploader pushes a material's bytes to durable storage and returns the
// resulting URL.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// S3Uploader uploads to an S3-compatible bucket (AWS or MinIO).
type S3Uploader struct {
	client *s3.Client
	bucket string
}

// NewS3Uploader builds an S3 client from the sync config. Static credentials
// and a base endpoint override the default AWS chain when set, which is how
// MinIO deployments are wired.
func NewS3Uploader(ctx context.Context, cfg Config) (*S3Uploader, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Uploader{client: client, bucket: cfg.Bucket}, nil
}

func (u *S3Uploader) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return fmt.Sprintf("s3://%s/%s", u.bucket, key), nil
}

// LogUploader is a local stand-in that records uploads without shipping
// bytes anywhere. Used when no bucket is configured.
type LogUploader struct {
	logger *slog.Logger
}

func NewLogUploader(logger *slog.Logger) *LogUploader {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogUploader{logger: logger}
}

func (u *LogUploader) Upload(_ context.Context, key, contentType string, data []byte) (string, error) {
	u.logger.Info("skipping object storage upload, no bucket configured",
		"key", key, "contentType", contentType, "size", len(data))
	return "local://" + key, nil
}

// objectKey lays out bucket keys as prefix/materialID/fileName.
func objectKey(prefix, materialID, fileName string) string {
	return path.Join(prefix, materialID, fileName)
}

// contentTypeFor guesses a content type from the file extension.
func contentTypeFor(fileName string) string {
	if ct := mime.TypeByExtension(path.Ext(fileName)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
