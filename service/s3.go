package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// CoverURLExpiry is how long a presigned cover link stays valid.
const CoverURLExpiry = 15 * time.Minute

// CoverStorage keeps book cover images in S3.
type CoverStorage struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
}

func NewCoverStorage(ctx context.Context, bucket, region, accessKeyID, secretAccessKey string) (*CoverStorage, error) {
	if bucket == "" {
		return nil, fmt.Errorf("AWS_S3_BUCKET is required")
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if accessKeyID != "" && secretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg)
	return &CoverStorage{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    bucket,
	}, nil
}

// Upload stores a cover under "covers/<bookID>/" and returns the object key.
func (s *CoverStorage) Upload(ctx context.Context, bookID, filename string, body io.Reader, contentType string) (string, error) {
	key := "covers/" + bookID + "/" + uuid.New().String() + path.Ext(filename)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

func (s *CoverStorage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

// PresignedURL returns a temporary download link for key.
func (s *CoverStorage) PresignedURL(ctx context.Context, key string) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = CoverURLExpiry
	})
	if err != nil {
		return "", err
	}
	return req.URL, nil
}
