package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	config "shortloop/configs"
)

// Storage is where uploaded videos live. Publishers only ever see the
// public URL, since every platform ingests by URL pull.
type Storage interface {
	Upload(ctx context.Context, key string, file []byte, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
	PublicURL(key string) string
}

type R2Storage struct {
	cfg    config.Config
	client *s3.Client
}

func NewR2Storage(cfg config.Config) (*R2Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2.AccessKey, cfg.R2.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2.AccountID))
	})

	return &R2Storage{cfg: cfg, client: client}, nil
}

func (r *R2Storage) Upload(ctx context.Context, key string, file []byte, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(r.cfg.R2.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(contentType),
	}

	if _, err := r.client.PutObject(ctx, input); err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return r.PublicURL(key), nil
}

func (r *R2Storage) Remove(ctx context.Context, key string) error {
	input := &s3.DeleteObjectInput{
		Bucket: aws.String(r.cfg.R2.BucketName),
		Key:    aws.String(key),
	}

	if _, err := r.client.DeleteObject(ctx, input); err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

func (r *R2Storage) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s", strings.TrimSuffix(r.cfg.R2.PublicURL, "/"), key)
}
