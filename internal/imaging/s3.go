// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObjectAPI is the subset of the S3 client used by S3Strategy.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config configures an S3 or S3-compatible bucket.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // custom endpoint for S3-compatible storage, empty for AWS
	PublicURL string // public URL prefix, defaults to the virtual-hosted AWS URL
	AccessKey string // static credentials, empty to use the default chain
	SecretKey string
}

// S3Strategy stores images in a bucket with PutObject.
type S3Strategy struct {
	client    PutObjectAPI
	bucket    string
	publicURL string
}

// NewS3Strategy builds an S3 client from cfg.
func NewS3Strategy(ctx context.Context, cfg S3Config) (*S3Strategy, error) {
	opts := []func(*awsConfig.LoadOptions) error{awsConfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := cfg.PublicURL
	if publicURL == "" {
		if cfg.Endpoint != "" {
			publicURL = joinURL(cfg.Endpoint, cfg.Bucket)
		} else {
			publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}

	return NewS3StrategyWithClient(client, cfg.Bucket, publicURL), nil
}

// NewS3StrategyWithClient wraps an existing client.
func NewS3StrategyWithClient(client PutObjectAPI, bucket, publicURL string) *S3Strategy {
	return &S3Strategy{client: client, bucket: bucket, publicURL: publicURL}
}

// Name implements Strategy.
func (s *S3Strategy) Name() string { return StrategyS3 }

// Available implements Strategy.
func (s *S3Strategy) Available(context.Context) error {
	if s.client == nil || s.bucket == "" {
		return fmt.Errorf("%w: bucket not configured", ErrStrategyUnavailable)
	}
	return nil
}

// Store uploads obj and returns its public URL.
func (s *S3Strategy) Store(ctx context.Context, obj Object) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(obj.Key),
		Body:          bytes.NewReader(obj.Data),
		ContentType:   aws.String(obj.MediaType),
		ContentLength: aws.Int64(int64(len(obj.Data))),
		CacheControl:  aws.String(CacheControl),
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", obj.Key, err)
	}
	return joinURL(s.publicURL, obj.Key), nil
}
