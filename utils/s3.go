package utils

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPutter is the part of the S3 client the uploader needs
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader stores staged images as objects under {brand}/{article}/{color}/{file}
type S3Uploader struct {
	Client ObjectPutter
	Bucket string
}

// NewS3Uploader loads the default AWS configuration for region
func NewS3Uploader(ctx context.Context, region, bucket string) (*S3Uploader, error) {
	if bucket == "" {
		return nil, fmt.Errorf("AWS_BUCKET_NAME is not set")
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config, %v", err)
	}
	log.Println("S3 Client Initialized")
	return &S3Uploader{Client: s3.NewFromConfig(cfg), Bucket: bucket}, nil
}

// ObjectPrefix turns the flat brand_article_color key into an object path.
// Only the first two separators split, so colors keep their underscores.
func ObjectPrefix(key string) string {
	return strings.Replace(key, "_", "/", 2)
}

func (u *S3Uploader) Upload(ctx context.Context, key string, paths []string) error {
	prefix := ObjectPrefix(key)
	for _, p := range paths {
		if err := u.put(ctx, prefix+"/"+filepath.Base(p), p); err != nil {
			return err
		}
	}
	return nil
}

func (u *S3Uploader) put(ctx context.Context, objectKey, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.Bucket),
		Key:         aws.String(objectKey),
		Body:        f,
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload file to S3: %w", err)
	}
	return nil
}
