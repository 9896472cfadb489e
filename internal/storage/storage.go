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
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/lightgray/lightgray/internal/content"
)

// Storage reads course content (catalog, transcripts, thumbnails) from an S3-compatible bucket.
type Storage struct {
	client     *s3.Client
	presigner  *s3.PresignClient
	bucket     string
	prefix     string
	linkExpiry time.Duration
}

type Config struct {
	Endpoint       string
	PublicEndpoint string // Used for presigned URLs; falls back to Endpoint if empty
	Bucket         string
	Prefix         string // Key prefix prepended to every content reference
	AccessKey      string
	SecretKey      string
	Region         string
	LinkExpiry     time.Duration
}

func New(ctx context.Context, cfg Config) (*Storage, error) {
	if cfg.Region == "" {
		cfg.Region = "eu-central-1"
	}
	if cfg.LinkExpiry <= 0 {
		cfg.LinkExpiry = time.Hour
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	presignEndpoint := cfg.Endpoint
	if cfg.PublicEndpoint != "" {
		presignEndpoint = cfg.PublicEndpoint
	}
	presignClient := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(presignEndpoint)
		o.UsePathStyle = true
	})

	return &Storage{
		client:     client,
		presigner:  s3.NewPresignClient(presignClient),
		bucket:     cfg.Bucket,
		prefix:     cfg.Prefix,
		linkExpiry: cfg.LinkExpiry,
	}, nil
}

func (s *Storage) key(ref string) string {
	return objectKey(s.prefix, ref)
}

func objectKey(prefix, ref string) string {
	ref = content.CleanRef(ref)
	if prefix == "" {
		return ref
	}
	return content.CleanRef(prefix) + "/" + ref
}

// Open streams an object. Missing keys are reported as content.ErrNotFound.
func (s *Storage) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	if s == nil {
		return nil, fmt.Errorf("storage not initialized")
	}
	key := s.key(ref)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("get object %s: %w", key, content.ErrNotFound)
		}
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	return out.Body, nil
}

// Exists issues a HEAD request for ref.
func (s *Storage) Exists(ctx context.Context, ref string) bool {
	_, _, err := s.HeadObject(ctx, ref)
	return err == nil
}

// Link returns a presigned GET URL for ref. Absolute URLs are returned unchanged.
func (s *Storage) Link(ctx context.Context, ref string) (string, error) {
	if ref == "" {
		return "", content.ErrNotFound
	}
	if content.IsURL(ref) {
		return ref, nil
	}
	return s.GenerateDownloadURL(ctx, ref, s.linkExpiry)
}

func (s *Storage) GenerateDownloadURL(ctx context.Context, ref string, expiry time.Duration) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(ref)),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}

	return req.URL, nil
}

func (s *Storage) HeadObject(ctx context.Context, ref string) (int64, string, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(ref)),
	})
	if err != nil {
		return 0, "", fmt.Errorf("head object: %w", err)
	}
	size := int64(0)
	if out.ContentLength != nil {
		size = *out.ContentLength
	}
	ct := ""
	if out.ContentType != nil {
		ct = *out.ContentType
	}
	return size, ct, nil
}

// CheckBucket verifies the content bucket is reachable. The viewer never creates it.
func (s *Storage) CheckBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("head bucket %s: %w", s.bucket, err)
	}
	return nil
}
