package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/kiezwerk/kiez/catalog"
)

// S3Config holds construction parameters for the S3 backend.
type S3Config struct {
	Region    string
	Bucket    string
	Key       string // object key for the catalog document
	Endpoint  string // optional custom endpoint (e.g. MinIO)
	PathStyle bool
}

// S3 persists the catalog as a single JSON object. S3 object puts replace
// the whole object atomically, so no temp-then-rename dance is needed.
type S3 struct {
	client *s3.Client
	bucket string
	key    string
}

// NewS3 creates an S3-backed document store using the default AWS
// credentials chain.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("docstore: s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("docstore: load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewS3WithClient(client, cfg.Bucket, cfg.Key), nil
}

// NewS3WithClient creates an S3 store around an existing client, mostly
// for tests.
func NewS3WithClient(client *s3.Client, bucket, key string) *S3 {
	if key == "" {
		key = "catalog.json"
	}
	return &S3{client: client, bucket: bucket, key: key}
}

// Load fetches and parses the catalog object. A missing object is an empty
// catalog.
func (s *S3) Load(ctx context.Context) (catalog.Document, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &s.key})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return catalog.Document{}, nil
		}
		return catalog.Document{}, fmt.Errorf("%w: get s3://%s/%s: %v", catalog.ErrStorageUnavailable, s.bucket, s.key, err)
	}
	defer out.Body.Close()

	b, err := io.ReadAll(out.Body)
	if err != nil {
		return catalog.Document{}, fmt.Errorf("%w: read s3://%s/%s: %v", catalog.ErrStorageUnavailable, s.bucket, s.key, err)
	}
	var doc catalog.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return catalog.Document{}, fmt.Errorf("%w: parse s3://%s/%s: %v", catalog.ErrStorageUnavailable, s.bucket, s.key, err)
	}
	return doc, nil
}

// Save replaces the catalog object in full.
func (s *S3) Save(ctx context.Context, doc catalog.Document) error {
	doc.Revision = uuid.New().String()
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: encode document: %v", catalog.ErrStorageUnavailable, err)
	}
	contentType := "application/json"
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &s.key,
		Body:        bytes.NewReader(b),
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("%w: put s3://%s/%s: %v", catalog.ErrStorageUnavailable, s.bucket, s.key, err)
	}
	return nil
}
