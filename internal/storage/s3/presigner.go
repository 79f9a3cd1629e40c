// Package s3 issues pre-signed upload URLs for budget item attachments.
package s3

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
)

// Presigner signs PutObject requests for one bucket. Objects are keyed by
// budget item identifier.
type Presigner struct {
	client     *awss3.PresignClient
	bucket     string
	expiration time.Duration
}

// NewPresigner creates a presigner over client for bucket
func NewPresigner(client *awss3.Client, bucket string, expiration time.Duration) (*Presigner, error) {
	if bucket == "" {
		return nil, errors.New("attachment bucket is empty")
	}
	if expiration <= 0 {
		return nil, fmt.Errorf("invalid url expiration %s", expiration)
	}
	return &Presigner{
		client:     awss3.NewPresignClient(client),
		bucket:     bucket,
		expiration: expiration,
	}, nil
}

// UploadURL returns a pre-signed PUT URL for the item's attachment and the
// URL the object will be served from
func (p *Presigner) UploadURL(ctx context.Context, budgetItemID string) (string, string, error) {
	req, err := p.client.PresignPutObject(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(budgetItemID),
	}, awss3.WithPresignExpires(p.expiration))
	if err != nil {
		return "", "", fmt.Errorf("presign put %s/%s: %w", p.bucket, budgetItemID, err)
	}
	return req.URL, ObjectURL(p.bucket, budgetItemID), nil
}

// ObjectURL is the public URL of key in bucket
func ObjectURL(bucket, key string) string {
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", bucket, key)
}
