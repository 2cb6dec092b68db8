package s3

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"smart-file-manager/internal/shared/storage/object"
)

// PutAPI is the subset of *s3.Client used for writes.
type PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// PresignAPI is the subset of *s3.PresignClient used for download URLs.
type PresignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Store implements object.BlobStore on Amazon S3 or an S3-compatible backend.
type Store struct {
	client   PutAPI
	presign  PresignAPI
	bucket   string
	kmsKeyID string
}

// Options configures the S3 client.
type Options struct {
	Bucket       string
	Endpoint     string
	UsePathStyle bool
	KMSKeyID     string
}

// New builds a Store from an already loaded AWS config.
func New(cfg aws.Config, opts Options) (*Store, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	})

	return NewWithClients(client, s3.NewPresignClient(client), opts.Bucket, opts.KMSKeyID), nil
}

// NewWithClients wires a Store to explicit clients.
func NewWithClients(client PutAPI, presign PresignAPI, bucket, kmsKeyID string) *Store {
	return &Store{
		client:   client,
		presign:  presign,
		bucket:   bucket,
		kmsKeyID: strings.TrimSpace(kmsKeyID),
	}
}

// Bucket returns the bucket objects are written to.
func (s *Store) Bucket() string {
	return s.bucket
}

// Put uploads r to the bucket under key.
func (s *Store) Put(ctx context.Context, key, contentType string, r io.Reader, size int64) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if s.kmsKeyID != "" {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAwsKms
		input.SSEKMSKeyId = aws.String(s.kmsKeyID)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("s3 put object bucket=%s key=%s: %w", s.bucket, key, err)
	}
	return nil
}

// PresignGet signs a GET for key valid for ttl.
func (s *Store) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	out, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("s3 presign get bucket=%s key=%s: %w", s.bucket, key, err)
	}
	return out.URL, nil
}

var _ object.BlobStore = (*Store)(nil)
