package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/stockpix/stockpix/internal/store"
)

// Client implements store.ObjectStore and store.URLSigner against an
// S3 bucket. All keys are namespaced under the configured prefix.
type Client struct {
	api       *awss3.Client
	presigner *awss3.PresignClient
	bucket    string
	prefix    string
	logger    *slog.Logger
}

// Options configures the S3 client.
type Options struct {
	// Bucket is the target bucket name. Required.
	Bucket string

	// Region is the AWS region of the bucket.
	Region string

	// Endpoint optionally points at an S3-compatible store (MinIO,
	// localstack). Empty means AWS.
	Endpoint string

	// Prefix is prepended to every key, e.g. a deployment namespace.
	Prefix string
}

// New creates an S3-backed object store using the default AWS
// credential chain.
func New(ctx context.Context, opts Options, logger *slog.Logger) (*Client, error) {
	if opts.Bucket == "" {
		return nil, errors.New("s3: bucket cannot be empty")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3: failed to load AWS config: %w", err)
	}

	api := awss3.NewFromConfig(cfg, func(o *awss3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Client{
		api:       api,
		presigner: awss3.NewPresignClient(api),
		bucket:    opts.Bucket,
		prefix:    opts.Prefix,
		logger:    logger,
	}, nil
}

func (c *Client) fullKey(key string) string {
	return c.prefix + key
}

// Get implements store.ObjectStore.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := c.api.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.fullKey(key)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, store.ErrObjectNotFound
		}
		return nil, fmt.Errorf("s3: get %q: %w", key, err)
	}
	defer func() {
		if cerr := result.Body.Close(); cerr != nil {
			c.logger.Warn("failed to close S3 object body", "key", key, "error", cerr)
		}
	}()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("s3: read %q: %w", key, err)
	}
	return data, nil
}

// Put implements store.ObjectStore.
func (c *Client) Put(ctx context.Context, key string, data []byte, contentType string) error {
	input := &awss3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.fullKey(key)),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := c.api.PutObject(ctx, input); err != nil {
		return fmt.Errorf("s3: put %q: %w", key, err)
	}
	return nil
}

// Copy implements store.ObjectStore.
func (c *Client) Copy(ctx context.Context, src, dst string) error {
	_, err := c.api.CopyObject(ctx, &awss3.CopyObjectInput{
		Bucket:     aws.String(c.bucket),
		CopySource: aws.String(c.bucket + "/" + c.fullKey(src)),
		Key:        aws.String(c.fullKey(dst)),
	})
	if err != nil {
		if isNotFound(err) {
			return store.ErrObjectNotFound
		}
		return fmt.Errorf("s3: copy %q -> %q: %w", src, dst, err)
	}
	return nil
}

// List implements store.ObjectStore.
func (c *Client) List(ctx context.Context, prefix string) ([]store.ObjectInfo, error) {
	var infos []store.ObjectInfo

	paginator := awss3.NewListObjectsV2Paginator(c.api, &awss3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(c.fullKey(prefix)),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3: list %q: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			info := store.ObjectInfo{
				Key:  aws.ToString(obj.Key)[len(c.prefix):],
				Size: aws.ToInt64(obj.Size),
			}
			if obj.LastModified != nil {
				info.LastModified = *obj.LastModified
			}
			infos = append(infos, info)
		}
	}
	return infos, nil
}

// Delete implements store.ObjectStore.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.api.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.fullKey(key)),
	})
	if err != nil {
		return fmt.Errorf("s3: delete %q: %w", key, err)
	}
	return nil
}

// Exists implements store.ObjectStore.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	_, err := c.api.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.fullKey(key)),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("s3: head %q: %w", key, err)
	}
	return true, nil
}

// PresignGet implements store.URLSigner.
func (c *Client) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	result, err := c.presigner.PresignGetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.fullKey(key)),
	}, awss3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("s3: presign %q: %w", key, err)
	}
	return result.URL, nil
}

// isNotFound reports whether the error is S3's missing-key or
// missing-bucket response.
func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var notFound *types.NotFound
	return errors.As(err, &notFound)
}
