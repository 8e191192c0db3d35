// Package storage delivers purchased template archives: private S3 objects
// handed out as short-lived presigned GET URLs after a verified payment.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/arhambuilds/storefront-backend/config"
)

type S3Storage struct {
	client      *s3.Client
	bucket      string
	downloadTTL time.Duration
}

// NewS3Storage builds the archive store. Static credentials win when set;
// otherwise the default chain (env, shared config, IAM role) applies.
func NewS3Storage(cfg *config.S3Config, downloadTTL time.Duration) *S3Storage {
	var awsCfg aws.Config
	var err error

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg = aws.Config{
			Region: cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		}
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.TODO(),
			awsconfig.WithRegion(cfg.Region),
		)
		if err != nil {
			awsCfg = aws.Config{Region: cfg.Region}
		}
	}

	return &S3Storage{
		client:      s3.NewFromConfig(awsCfg),
		bucket:      cfg.Bucket,
		downloadTTL: downloadTTL,
	}
}

// PresignDownload returns a presigned GET URL for the archive at key. The URL
// expires after the configured download TTL; buyers re-request delivery links
// through a fresh checkout completion event if they miss the window.
func (s *S3Storage) PresignDownload(ctx context.Context, key string) (string, error) {
	presignClient := s3.NewPresignClient(s.client)

	presignedReq, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.downloadTTL))
	if err != nil {
		return "", fmt.Errorf("failed to presign archive download: %w", err)
	}

	return presignedReq.URL, nil
}
