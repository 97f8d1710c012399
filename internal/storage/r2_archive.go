package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	log "github.com/sirupsen/logrus"

	"invoice-builder/internal/config"
	"invoice-builder/internal/export"
	"invoice-builder/internal/timeutil"
)

// PutObjectAPI is the slice of the S3 client the archiver needs
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// R2Archiver uploads exports to an S3-compatible bucket under
// <prefix>/<yyyy-mm-dd>/<fingerprint>/<filename>
type R2Archiver struct {
	client PutObjectAPI
	bucket string
	prefix string
	now    func() time.Time
}

// NewR2Archiver configures an S3 client for the R2 endpoint
func NewR2Archiver(ctx context.Context, cfg config.R2Config) (*R2Archiver, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("configure R2 client: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	return NewArchiver(client, cfg.Bucket, cfg.Prefix), nil
}

// NewArchiver wraps an existing client
func NewArchiver(client PutObjectAPI, bucket, prefix string) *R2Archiver {
	return &R2Archiver{client: client, bucket: bucket, prefix: prefix, now: timeutil.Now}
}

// ObjectKey returns where an artifact is stored
func (a *R2Archiver) ObjectKey(art *export.Artifact) string {
	id := art.Key
	if len(id) > 16 {
		id = id[len(id)-16:]
	}
	return path.Join(a.prefix, a.now().Format(timeutil.ISODateLayout), id, art.Filename)
}

// Archive uploads one artifact
func (a *R2Archiver) Archive(ctx context.Context, art *export.Artifact) error {
	key := a.ObjectKey(art)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(art.Data),
		ContentType: aws.String(art.ContentType),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}

	log.WithFields(log.Fields{"bucket": a.bucket, "key": key, "bytes": len(art.Data)}).Debug("[R2] export archived")
	return nil
}
