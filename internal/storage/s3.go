package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds the bucket settings for the image pool.
type S3Config struct {
	Bucket      string
	ImageDomain string
}

func LoadS3ConfigFromEnv() (S3Config, error) {
	cfg := S3Config{
		Bucket:      strings.TrimSpace(os.Getenv("BUCKET_NAME")),
		ImageDomain: strings.TrimSpace(os.Getenv("IMAGE_DOMAIN")),
	}
	if cfg.Bucket == "" {
		return S3Config{}, errors.New("missing required env: BUCKET_NAME")
	}
	// ImageDomain is only needed by the read surface, not the bot.
	return cfg, nil
}

// S3API is the slice of the S3 client the pool storage uses.
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// PoolListerInterface is what the selector needs from the object store.
type PoolListerInterface interface {
	ListPool(ctx context.Context, group string) ([]string, error)
}

// PoolStorage lists and uploads images in the pool bucket. Object keys are
// prefixed with their group name.
type PoolStorage struct {
	client S3API
	bucket string
}

func NewPoolStorage(client S3API, bucket string) *PoolStorage {
	return &PoolStorage{client: client, bucket: bucket}
}

// ListPool returns every object key in the bucket under the group prefix.
func (s *PoolStorage) ListPool(ctx context.Context, group string) ([]string, error) {
	var keys []string
	var continuation *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(group),
			ContinuationToken: continuation,
		})
		if err != nil {
			return nil, fmt.Errorf("list pool objects: %w", err)
		}
		for _, object := range out.Contents {
			if object.Key != nil && *object.Key != "" {
				keys = append(keys, *object.Key)
			}
		}
		if out.NextContinuationToken == nil {
			break
		}
		continuation = out.NextContinuationToken
	}
	return keys, nil
}

// PutImage uploads an encoded image into the pool.
func (s *PoolStorage) PutImage(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put pool object: %w", err)
	}
	return nil
}
