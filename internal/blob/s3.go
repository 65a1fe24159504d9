package blob

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config configures S3 storage.
type S3Config struct {
	Bucket           string
	Region           string
	AccessKeyID      string
	SecretAccessKey  string
	Endpoint         string
	CloudFrontDomain string
}

// S3Putter is the subset of the S3 client used for uploads.
type S3Putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Storage keeps objects in a single S3 bucket. Application buckets become
// key prefixes.
type S3Storage struct {
	Client           S3Putter
	Bucket           string
	Region           string
	Endpoint         string
	CloudFrontDomain string
}

// NewS3Storage creates an S3 client from cfg. Static credentials are used when
// given; otherwise the default AWS credential chain applies.
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	sdkConfig, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(sdkConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		Client:           client,
		Bucket:           cfg.Bucket,
		Region:           cfg.Region,
		Endpoint:         strings.TrimSuffix(cfg.Endpoint, "/"),
		CloudFrontDomain: cfg.CloudFrontDomain,
	}, nil
}

func (s *S3Storage) key(bucket, objectPath string) (string, error) {
	p, err := CleanPath(objectPath)
	if err != nil {
		return "", err
	}
	return bucket + "/" + p, nil
}

// Upload puts an object, replacing any existing one.
func (s *S3Storage) Upload(ctx context.Context, bucket, objectPath string, r io.Reader, contentType string) error {
	key, err := s.key(bucket, objectPath)
	if err != nil {
		return err
	}

	_, err = s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.Bucket),
		Key:          aws.String(key),
		Body:         r,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("max-age=3600"),
	})
	if err != nil {
		return fmt.Errorf("uploading to s3: %w", err)
	}
	return nil
}

// PublicURL returns the CloudFront URL when a distribution is configured,
// otherwise the S3 URL.
func (s *S3Storage) PublicURL(bucket, objectPath string) string {
	key := bucket + "/" + escapePath(objectPath)
	switch {
	case s.CloudFrontDomain != "":
		return fmt.Sprintf("https://%s/%s", s.CloudFrontDomain, key)
	case s.Endpoint != "":
		return fmt.Sprintf("%s/%s/%s", s.Endpoint, s.Bucket, key)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.Bucket, s.Region, key)
	}
}
