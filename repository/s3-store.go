package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/go-arrower/schoolstore/secret"
)

var (
	_ Store  = (*S3Store)(nil)
	_ Lister = (*S3Store)(nil)
	_ Pinger = (*S3Store)(nil)
)

// S3Config holds all values used to connect to a S3 compatible object storage.
type S3Config struct {
	Bucket string
	Region string
	// Endpoint is optional, set it for S3 compatible services like MinIO.
	Endpoint string
	// Prefix is prepended to every slot name to form the object key, e.g. "schoolstore/".
	Prefix string
	// AccessKeyID and SecretAccessKey are optional, if not set the default credential chain is used.
	AccessKeyID     string
	SecretAccessKey secret.Secret
	PathStyle       bool
}

// S3Store keeps each slot as one object in a bucket.
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

func NewS3Store(ctx context.Context, conf S3Config) (*S3Store, error) {
	if conf.Bucket == "" {
		return nil, fmt.Errorf("%w: s3 bucket required", ErrStore)
	}

	region := conf.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}

	if conf.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(conf.AccessKeyID, conf.SecretAccessKey.Secret(), ""),
		))
	}

	awsConf, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: could not load aws config: %v", ErrStore, err) //nolint:errorlint // prevent err in api
	}

	client := s3.NewFromConfig(awsConf, func(o *s3.Options) {
		o.UsePathStyle = conf.PathStyle

		if conf.Endpoint != "" {
			o.BaseEndpoint = aws.String(conf.Endpoint)
		}
	})

	return &S3Store{client: client, bucket: conf.Bucket, prefix: conf.Prefix}, nil
}

func (s *S3Store) Load(ctx context.Context, slot string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + slot),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("%w: %s", ErrSlotNotFound, slot)
		}

		return nil, fmt.Errorf("%w: %v", ErrLoad, err) //nolint:errorlint // prevent err in api
	}
	defer out.Body.Close()

	blob, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err) //nolint:errorlint // prevent err in api
	}

	return blob, nil
}

func (s *S3Store) Store(ctx context.Context, slot string, blob []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.prefix + slot),
		Body:          bytes.NewReader(blob),
		ContentLength: aws.Int64(int64(len(blob))),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err) //nolint:errorlint // prevent err in api
	}

	return nil
}

func (s *S3Store) Slots(ctx context.Context) ([]SlotInfo, error) {
	infos := []SlotInfo{}

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoad, err) //nolint:errorlint // prevent err in api
		}

		for _, obj := range page.Contents {
			info := SlotInfo{Name: strings.TrimPrefix(aws.ToString(obj.Key), s.prefix)}
			info.Size = aws.ToInt64(obj.Size)

			if obj.LastModified != nil {
				info.UpdatedAt = obj.LastModified.UTC()
			}

			infos = append(infos, info)
		}
	}

	sortSlots(infos)

	return infos, nil
}

// CreateBucket creates the bucket, if it does not exist yet.
func (s *S3Store) CreateBucket(ctx context.Context) error {
	if err := s.Ping(ctx); err == nil {
		return nil
	}

	_, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})

	var owned *types.BucketAlreadyOwnedByYou
	if err != nil && !errors.As(err, &owned) {
		return fmt.Errorf("%w: could not create bucket %s: %v", ErrStore, s.bucket, err) //nolint:errorlint,lll // prevent err in api
	}

	return nil
}

func (s *S3Store) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})

	return err //nolint:wrapcheck // export the underlying error
}
