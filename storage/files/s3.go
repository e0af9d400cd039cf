package filestore

import (
	"context"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"

	"github.com/trezcool/entregas/core"
)

type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store uploads files to an S3 compatible bucket (AWS, MinIO, ...).
type S3Store struct {
	client    objectAPI
	bucket    string
	publicURL string
}

var _ core.FileStore = (*S3Store)(nil) // interface compliance check

// mockable
var loadDefaultAWSConfig = config.LoadDefaultConfig

func NewS3Store(ctx context.Context, conf *core.Config) (*S3Store, error) {
	sc := conf.Storage
	if sc.S3Bucket == "" {
		return nil, errors.New("s3 bucket is not configured")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(sc.S3Region)}
	if sc.S3AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(sc.S3AccessKey, sc.S3SecretKey, ""),
		))
	}
	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "loading aws config")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if sc.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(sc.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Store{client: client, bucket: sc.S3Bucket, publicURL: publicURL(sc)}, nil
}

// publicURL is where the bucket objects can be downloaded from.
func publicURL(sc core.StorageConfig) string {
	switch {
	case sc.S3PublicURL != "":
		return strings.TrimRight(sc.S3PublicURL, "/")
	case sc.S3Endpoint != "":
		return strings.TrimRight(sc.S3Endpoint, "/") + "/" + sc.S3Bucket
	}
	return "https://" + sc.S3Bucket + ".s3." + sc.S3Region + ".amazonaws.com"
}

// Save ignores baseURL: objects are downloaded straight from the bucket.
func (s *S3Store) Save(ctx context.Context, name string, upload core.Upload, _ string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
		Body:   upload.Content,
	}
	if upload.ContentType != "" {
		input.ContentType = aws.String(upload.ContentType)
	}
	if upload.Size > 0 {
		input.ContentLength = aws.Int64(upload.Size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", errors.Wrap(err, "uploading file to s3")
	}
	return s.publicURL + "/" + url.PathEscape(name), nil
}

func (s *S3Store) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return errors.Wrap(err, "deleting file from s3")
	}
	return nil
}
