package objectstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/devfolio/portfolio-api/pkg/logger"
	"github.com/devfolio/portfolio-api/pkg/metrics"
	"go.uber.org/zap"
)

const driverName = "s3"

// Config describes an S3-compatible bucket
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Endpoint        string
	Region          string
	// PathStyle addresses objects as {endpoint}/{bucket}/{key}; required by most self-hosted stores
	PathStyle bool
}

// StorageClient writes JSON documents to an S3-compatible bucket
type StorageClient struct {
	s3Client   *s3.Client
	bucketName string
}

// NewStorageClient creates a new object storage client using the S3 SDK
func NewStorageClient(cfg Config) (*StorageClient, error) {
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("object storage bucket name is required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: cfg.PathStyle,
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}

	logger.Info("Object storage client initialized",
		zap.String("bucket", cfg.BucketName),
		zap.String("endpoint", cfg.Endpoint),
		zap.String("region", cfg.Region),
	)

	return &StorageClient{
		s3Client:   s3.New(opts),
		bucketName: cfg.BucketName,
	}, nil
}

// PutJSON marshals doc and stores it under key
func (s *StorageClient) PutJSON(ctx context.Context, key string, doc any) error {
	start := time.Now()
	operation := "putObject"

	payload, err := json.Marshal(doc)
	if err != nil {
		observe(operation, "error", start)
		return fmt.Errorf("failed to encode object %s: %w", key, err)
	}

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})

	duration := metrics.MeasureDuration(start)
	if err != nil {
		observe(operation, "error", start)
		logger.LogAPICall(ctx, "object_storage", operation, "error", duration,
			zap.Error(err),
			zap.String("key", key),
		)
		return fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	observe(operation, "success", start)
	logger.LogAPICall(ctx, "object_storage", operation, "success", duration,
		zap.String("key", key),
		zap.Int("size_bytes", len(payload)),
	)
	return nil
}

// Ping checks that the bucket exists and is reachable with the configured credentials
func (s *StorageClient) Ping(ctx context.Context) error {
	start := time.Now()
	_, err := s.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucketName),
	})
	if err != nil {
		observe("headBucket", "error", start)
		return fmt.Errorf("bucket %s unavailable: %w", s.bucketName, err)
	}
	observe("headBucket", "success", start)
	return nil
}

func observe(operation, status string, start time.Time) {
	metrics.StoreRequestDuration.WithLabelValues(driverName, operation, status).Observe(metrics.MeasureDuration(start))
	metrics.StoreRequestTotal.WithLabelValues(driverName, operation, status).Inc()
}
