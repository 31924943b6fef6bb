package publicfs

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// HeadObjectAPI is the part of *s3.Client a Bucket needs.
type HeadObjectAPI interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Bucket answers modification-time queries from object metadata in S3.
// Each Stat is one HEAD request; any failure counts as a missing file.
type Bucket struct {
	client  HeadObjectAPI
	bucket  string
	prefix  string
	timeout time.Duration
}

// BucketOption configures a Bucket.
type BucketOption func(*Bucket)

// WithKeyPrefix sets a prefix prepended to every object key.
func WithKeyPrefix(prefix string) BucketOption {
	return func(b *Bucket) {
		b.prefix = prefix
	}
}

// WithTimeout bounds each HEAD request. Zero means no bound.
func WithTimeout(d time.Duration) BucketOption {
	return func(b *Bucket) {
		b.timeout = d
	}
}

// NewBucket creates a Bucket over client.
//
// Example usage:
//
//	client := s3.New(s3.Options{Region: "eu-west-1", Credentials: creds})
//	fs := publicfs.NewBucket(client, "static-bucket")
func NewBucket(client HeadObjectAPI, bucket string, opts ...BucketOption) *Bucket {
	b := &Bucket{
		client:  client,
		bucket:  bucket,
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Key returns the object key for name.
func (b *Bucket) Key(name string) string {
	clean := strings.TrimPrefix(path.Clean("/"+name), "/")
	return b.prefix + clean
}

// Stat returns the LastModified time of the object for name.
func (b *Bucket) Stat(name string) (time.Time, bool) {
	ctx := context.Background()
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	out, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.Key(name)),
	})
	if err != nil || out == nil || out.LastModified == nil {
		return time.Time{}, false
	}
	return *out.LastModified, true
}
