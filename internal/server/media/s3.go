package media

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/avolkov/wardrobe/internal/common"
	sc "github.com/avolkov/wardrobe/internal/server/config"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const keyPrefix = "wardrobe"

type S3Storage struct {
	client   *s3.Client
	bucket   string
	endpoint string
}

func NewS3Storage(c *sc.Config) (*S3Storage, error) {

	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(c.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.S3AccessKey,
			c.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("s3 config error: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(c.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3Storage{
		client:   client,
		bucket:   c.S3Bucket,
		endpoint: strings.TrimRight(c.S3BaseEndpoint, "/"),
	}, nil
}

func (s *S3Storage) Upload(ctx context.Context, body io.Reader, size int64, contentType string) (string, error) {

	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: only image files are allowed", common.ErrorValidation)
	}
	if size > MaxUploadSize {
		return "", fmt.Errorf("%w: image exceeds %d bytes", common.ErrorValidation, int64(MaxUploadSize))
	}

	key := fmt.Sprintf("%s/%s", keyPrefix, uuid.NewString())

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("%w: s3 put error: %v", common.ErrorUpstream, err)
	}

	return s.PublicURL(key), nil
}

func (s *S3Storage) Delete(ctx context.Context, url string) error {

	key, err := s.KeyFromURL(url)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("%w: s3 delete error: %v", common.ErrorUpstream, err)
	}

	return nil
}

// PublicURL maps a storage key to the path-style URL clients load images from.
func (s *S3Storage) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
}

// KeyFromURL recovers the storage key from a public URL issued by PublicURL.
func (s *S3Storage) KeyFromURL(url string) (string, error) {
	prefix := fmt.Sprintf("%s/%s/", s.endpoint, s.bucket)
	if !strings.HasPrefix(url, prefix) {
		return "", fmt.Errorf("url %q does not belong to bucket %q", url, s.bucket)
	}
	return strings.TrimPrefix(url, prefix), nil
}
