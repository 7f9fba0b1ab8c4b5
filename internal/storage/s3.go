package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/vipteryx/centretracker/internal/schedule"
)

// S3Config holds configuration for S3 publishing
type S3Config struct {
	Bucket  string
	Region  string
	Profile string // AWS profile to use
	Prefix  string
}

// objectPutter is the part of the S3 client used for publishing
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Publisher uploads schedules to an S3 bucket
type S3Publisher struct {
	client objectPutter
	bucket string
	region string
	prefix string
	now    func() time.Time
}

// NewS3Publisher loads the AWS configuration (optionally from a named profile) and creates a
// publisher for cfg.Bucket
func NewS3Publisher(ctx context.Context, cfg S3Config) (*S3Publisher, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3: bucket is required")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Publisher{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.Bucket,
		region: awsCfg.Region,
		prefix: cfg.Prefix,
		now:    time.Now,
	}, nil
}

// Key returns the object key for name under the configured prefix
func (p *S3Publisher) Key(name string) string {
	return strings.TrimPrefix(path.Join(p.prefix, name), "/")
}

// Publish uploads the result as JSON and returns its public URL
func (p *S3Publisher) Publish(ctx context.Context, name string, result *schedule.Result) (string, error) {
	data, err := MarshalResult(result)
	if err != nil {
		return "", err
	}

	key := p.Key(name)
	input := &s3.PutObjectInput{
		Bucket:       aws.String(p.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String("application/json"),
		CacheControl: aws.String("public, max-age=300"),
		Metadata: map[string]string{
			"uploaded-by":  "centretracker",
			"last-updated": result.LastUpdated,
			"upload-time":  p.now().UTC().Format(time.RFC3339),
		},
	}

	if _, err := p.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.bucket, p.region, key), nil
}
