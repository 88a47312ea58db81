package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// MaxTextSize bounds the raw text object read from storage.
const MaxTextSize = 32 << 20

var (
	ErrNotS3URI = errors.New("not an s3:// URI")
	ErrNotUTF8  = errors.New("object is not valid UTF-8 text")
	ErrTooLarge = errors.New("object exceeds maximum text size")
)

// S3ClientConfig holds configuration for S3Client
type S3ClientConfig struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UsePathStyle    bool
}

// ObjectAPI is the subset of the S3 client used here.
type ObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, opts ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, opts ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// S3Client reads OCR text sources from and archives raw text to
// S3-compatible storage.
type S3Client struct {
	client ObjectAPI
	bucket string
}

// NewS3Client creates a new S3Client with the given configuration
func NewS3Client(ctx context.Context, cfg S3ClientConfig) (*S3Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return NewS3ClientWithAPI(client, cfg.Bucket), nil
}

// NewS3ClientWithAPI wraps an existing client.
func NewS3ClientWithAPI(api ObjectAPI, bucket string) *S3Client {
	return &S3Client{client: api, bucket: bucket}
}

// Bucket returns the default bucket.
func (c *S3Client) Bucket() string {
	return c.bucket
}

// IsS3URI reports whether source names an object instead of a local path.
func IsS3URI(source string) bool {
	return strings.HasPrefix(source, "s3://")
}

// ParseURI splits s3://bucket/key.
func ParseURI(uri string) (bucket, key string, err error) {
	if !IsS3URI(uri) {
		return "", "", ErrNotS3URI
	}
	bucket, key, ok := strings.Cut(strings.TrimPrefix(uri, "s3://"), "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: missing bucket or key in %q", ErrNotS3URI, uri)
	}
	return bucket, key, nil
}

// GetText downloads an object and returns it as a string.
func (c *S3Client) GetText(ctx context.Context, bucket, key string) (string, error) {
	if bucket == "" {
		bucket = c.bucket
	}
	out, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get object: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, MaxTextSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read object: %w", err)
	}
	if len(data) > MaxTextSize {
		return "", ErrTooLarge
	}
	if !utf8.Valid(data) {
		return "", ErrNotUTF8
	}
	return string(data), nil
}

// GetTextURI is GetText for an s3://bucket/key source.
func (c *S3Client) GetTextURI(ctx context.Context, uri string) (string, error) {
	bucket, key, err := ParseURI(uri)
	if err != nil {
		return "", err
	}
	return c.GetText(ctx, bucket, key)
}

// PutText archives text under key in the default bucket and returns its URI.
func (c *S3Client) PutText(ctx context.Context, key, text string) (string, error) {
	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(text),
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object: %w", err)
	}
	return "s3://" + c.bucket + "/" + key, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (c *S3Client) EnsureBucket(ctx context.Context) error {
	_, err := c.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.bucket),
	})
	if err == nil {
		return nil
	}

	_, err = c.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(c.bucket),
	})
	if err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	return nil
}
