// Package aws uploads stats exports to S3 compatible object storage
package aws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type S3Client struct {
	C        *s3.Client
	Bucket   *string
	Prefix   string
	uploader *manager.Uploader
}

// NewS3 builds a client from the export.s3.* settings and checks that the
// bucket exists. Setting export.s3.endpoint targets a non-AWS provider such
// as Cloudflare R2 or MinIO.
func NewS3(ctx context.Context) (*S3Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			viper.GetString("export.s3.access_key_id"),
			viper.GetString("export.s3.secret_access_key"),
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config, %w", err)
	}

	bucket := aws.String(viper.GetString("export.s3.bucket"))
	endpoint := viper.GetString("export.s3.endpoint")

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.Region = viper.GetString("export.s3.region")

		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = viper.GetBool("export.s3.path_style")
		}
	})

	_, err = client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: bucket,
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "NotFound" {
				return nil, fmt.Errorf("bucket '%s' does not exist", *bucket)
			}
		}

		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	zap.L().Debug("S3 export bucket ready", zap.String("bucket", *bucket), zap.String("endpoint", endpoint))

	return &S3Client{
		C:        client,
		Bucket:   bucket,
		Prefix:   viper.GetString("export.s3.prefix"),
		uploader: manager.NewUploader(client),
	}, nil
}

// Upload streams r to the bucket under the configured prefix.
func (c *S3Client) Upload(ctx context.Context, key string, r io.Reader) error {
	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      c.Bucket,
		Key:         aws.String(path.Join(c.Prefix, key)),
		Body:        r,
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s, %w", key, err)
	}

	return nil
}
