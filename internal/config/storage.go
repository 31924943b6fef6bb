package config

import (
	"context"
	"errors"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/assetpath/pkg/assets"
	"github.com/vango-dev/assetpath/pkg/catalog"
	"github.com/vango-dev/assetpath/pkg/publicfs"
)

// Storage kinds.
const (
	StorageDisk = "disk"
	StorageS3   = "s3"
)

// StorageConfig selects where public file modification times come from.
type StorageConfig struct {
	// Kind is "disk" (default) or "s3".
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"`

	// Bucket, KeyPrefix, Region and Endpoint configure "s3".
	Bucket    string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	KeyPrefix string `json:"keyPrefix,omitempty" yaml:"keyPrefix,omitempty"`
	Region    string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint  string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
}

func (s StorageConfig) validate() error {
	switch s.Kind {
	case "", StorageDisk:
		return nil
	case StorageS3:
		if s.Bucket == "" {
			return errors.New("storage.bucket is required for s3")
		}
		return nil
	}
	return errors.New("storage.kind must be disk or s3, got " + s.Kind)
}

// FileSystem builds the modification-time source for public files.
// S3 credentials come from AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and
// AWS_SESSION_TOKEN.
func (c *Config) FileSystem() assets.FileSystem {
	if c.Storage.Kind != StorageS3 {
		return publicfs.OS()
	}

	region := c.Storage.Region
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	opts := s3.Options{
		Region:      region,
		Credentials: aws.NewCredentialsCache(envCredentials{}),
	}
	if c.Storage.Endpoint != "" {
		opts.BaseEndpoint = aws.String(c.Storage.Endpoint)
		opts.UsePathStyle = true
	}
	return publicfs.NewBucket(s3.New(opts), c.Storage.Bucket,
		publicfs.WithKeyPrefix(c.Storage.KeyPrefix))
}

// envCredentials reads static credentials from the environment.
type envCredentials struct{}

func (envCredentials) Retrieve(context.Context) (aws.Credentials, error) {
	creds := aws.Credentials{
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "assetpath environment",
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return aws.Credentials{}, errors.New("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
	}
	return creds, nil
}

// NewCatalog builds the directory-backed asset environment.
func (c *Config) NewCatalog() *catalog.Catalog {
	return catalog.New(c.CatalogRoot(),
		catalog.WithPaths(c.Catalog.Paths...),
		catalog.WithBundles(c.Catalog.Bundles),
	)
}
