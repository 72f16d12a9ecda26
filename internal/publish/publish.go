// Package publish uploads generated route artifacts to S3.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cespare/xxhash/v2"

	"github.com/vango-dev/routegen/internal/config"
	"github.com/vango-dev/routegen/internal/errors"
)

// Metadata keys set on every uploaded object.
const (
	MetaContentHash = "content-hash"
	MetaGenerator   = "generator"
)

// ObjectPutter is the part of the S3 client the publisher needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Artifact is one file to upload.
type Artifact struct {
	// Name is the object name below the prefix.
	Name        string
	Body        []byte
	ContentType string
}

// Uploaded describes a stored object.
type Uploaded struct {
	Key  string
	Hash string
	Size int
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Publisher) { p.logger = l }
}

// Publisher uploads artifacts under a bucket prefix.
type Publisher struct {
	client ObjectPutter
	bucket string
	prefix string
	logger *slog.Logger
}

// New creates a publisher using the default AWS credential chain.
func New(ctx context.Context, cfg config.S3Config, opts ...Option) (*Publisher, error) {
	if cfg.Bucket == "" {
		return nil, errors.New(errors.CodePublishFailed).WithDetail("publish.s3.bucket is not set")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.New(errors.CodePublishFailed).WithDetail("load AWS configuration").Wrap(err)
	}
	return NewWithClient(s3.NewFromConfig(awsCfg), cfg.Bucket, cfg.Prefix, opts...), nil
}

// NewWithClient creates a publisher around an existing client.
func NewWithClient(client ObjectPutter, bucket, prefix string, opts ...Option) *Publisher {
	p := &Publisher{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Key returns the object key for name.
func (p *Publisher) Key(name string) string {
	return path.Join(p.prefix, name)
}

// Publish uploads artifacts in order and stops at the first failure.
func (p *Publisher) Publish(ctx context.Context, artifacts ...Artifact) ([]Uploaded, error) {
	uploaded := make([]Uploaded, 0, len(artifacts))
	for _, a := range artifacts {
		key := p.Key(a.Name)
		hash := ContentHash(a.Body)

		input := &s3.PutObjectInput{
			Bucket:        aws.String(p.bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(a.Body),
			ContentLength: aws.Int64(int64(len(a.Body))),
			Metadata: map[string]string{
				MetaContentHash: hash,
				MetaGenerator:   "routegen",
			},
		}
		if a.ContentType != "" {
			input.ContentType = aws.String(a.ContentType)
		}

		if _, err := p.client.PutObject(ctx, input); err != nil {
			return uploaded, errors.New(errors.CodePublishFailed).
				WithPath("s3://" + p.bucket + "/" + key).
				Wrap(err)
		}

		p.logger.Debug("artifact published", "bucket", p.bucket, "key", key, "hash", hash, "size", len(a.Body))
		uploaded = append(uploaded, Uploaded{Key: key, Hash: hash, Size: len(a.Body)})
	}
	return uploaded, nil
}

// ContentHash returns the hex xxhash64 of body.
func ContentHash(body []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(body))
}

// ContentType guesses the upload content type from a file name.
func ContentType(name string) string {
	switch path.Ext(name) {
	case ".js", ".jsx", ".ts", ".tsx", ".mjs":
		return "text/javascript; charset=utf-8"
	case ".yaml", ".yml":
		return "application/yaml"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// FormatSize renders a byte count for log lines.
func FormatSize(n int) string {
	if n < 1024 {
		return strconv.Itoa(n) + " B"
	}
	return fmt.Sprintf("%.1f KiB", float64(n)/1024)
}
