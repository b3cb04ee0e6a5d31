package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/spf13/viper"
)

// Payloads above this size go through the multipart uploader
const multipartLimit = 100 << 20

type S3 struct {
	c      *s3.Client
	bucket *string
}

func NewS3() (*S3, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			viper.GetString("aws.access_key_id"),
			viper.GetString("aws.secret_access_key"),
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	bucket := aws.String(viper.GetString("aws.bucket"))

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.Region = viper.GetString("aws.region")
	})

	_, err = client.HeadBucket(context.TODO(), &s3.HeadBucketInput{
		Bucket: bucket,
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
			return nil, fmt.Errorf("bucket '%s' does not exist", *bucket)
		}

		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return &S3{c: client, bucket: bucket}, nil
}

func (b *S3) Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if size > multipartLimit {
		u := manager.NewUploader(b.c, func(u *manager.Uploader) {
			u.Concurrency = 5
			u.PartSize = 5 << 20
		})

		_, err := u.Upload(ctx, &s3.PutObjectInput{
			Bucket:      b.bucket,
			Key:         aws.String(key),
			Body:        r,
			ContentType: aws.String(contentType),
		})
		if err != nil {
			return fmt.Errorf("failed to upload payload to S3, %w", err)
		}

		return nil
	}

	_, err := b.c.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        b.bucket,
		Key:           aws.String(key),
		Body:          r,
		ContentLength: &size,
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload payload to S3, %w", err)
	}

	return nil
}

func (b *S3) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := b.c.GetObject(ctx, &s3.GetObjectInput{
		Bucket: b.bucket,
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}

	return out.Body, nil
}

func (b *S3) Exists(ctx context.Context, key string) (bool, error) {
	_, err := b.c.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: b.bucket,
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}

		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

func (b *S3) Remove(ctx context.Context, key string) error {
	// DeleteObject succeeds for missing keys, which matches the
	// idempotency the sweeper needs
	_, err := b.c.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: b.bucket,
		Key:    aws.String(key),
	})

	return err
}

func (b *S3) RemovePrefix(ctx context.Context, prefix string) error {
	var token *string

	for {
		out, err := b.c.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            b.bucket,
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return fmt.Errorf("failed to list objects under prefix, %w", err)
		}

		if len(out.Contents) == 0 {
			return nil
		}

		// S3 deletes at most 1000 objects per batch request which is
		// also the listing page size
		objects := make([]types.ObjectIdentifier, len(out.Contents))
		for i, obj := range out.Contents {
			objects[i] = types.ObjectIdentifier{Key: obj.Key}
		}

		_, err = b.c.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: b.bucket,
			Delete: &types.Delete{Objects: objects},
		})
		if err != nil {
			return fmt.Errorf("failed to delete objects under prefix, %w", err)
		}

		if out.NextContinuationToken == nil {
			return nil
		}

		token = out.NextContinuationToken
	}
}
