package store

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// S3Backend stores each slot as one object, <prefix>/<slot>.json.
type S3Backend struct {
	client      *minio.Client
	bucket      string
	region      string
	prefix      string
	bucketReady setupGate
}

func NewS3Backend(cfg S3Config) (*S3Backend, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.WithHint(errors.New("s3 endpoint is required"), "set REPORT_S3_ENDPOINT")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, errors.WithHint(errors.New("s3 access key and secret key are required"),
			"set REPORT_S3_ACCESS_KEY and REPORT_S3_SECRET_KEY")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, errors.WithHint(errors.New("s3 bucket is required"), "set REPORT_S3_BUCKET")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, errors.Wrap(err, "init s3 client")
	}
	return &S3Backend{
		client: client,
		bucket: bucket,
		region: region,
		prefix: strings.Trim(strings.TrimSpace(cfg.Prefix), "/"),
	}, nil
}

func (b *S3Backend) Name() string { return string(BackendS3) }

func (b *S3Backend) ensureBucket(ctx context.Context) error {
	return b.bucketReady.run(func() error {
		exists, err := b.client.BucketExists(ctx, b.bucket)
		if err != nil || exists {
			return err
		}
		return b.client.MakeBucket(ctx, b.bucket, minio.MakeBucketOptions{Region: b.region})
	})
}

func (b *S3Backend) key(slot string) string {
	if b.prefix == "" {
		return slot + ".json"
	}
	return b.prefix + "/" + slot + ".json"
}

func (b *S3Backend) Load(ctx context.Context, slot string) ([]byte, error) {
	slot, err := normalizeSlot(slot)
	if err != nil {
		return nil, err
	}
	if err := b.ensureBucket(ctx); err != nil {
		return nil, errors.Wrap(err, "ensure bucket")
	}
	obj, err := b.client.GetObject(ctx, b.bucket, b.key(slot), minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrapf(err, "get slot %s", slot)
	}
	defer obj.Close()

	raw, err := io.ReadAll(obj)
	if err != nil {
		code := minio.ToErrorResponse(err).Code
		if code == "NoSuchKey" || code == "NoSuchBucket" {
			return nil, ErrSlotNotFound
		}
		return nil, errors.Wrapf(err, "read slot %s", slot)
	}
	return raw, nil
}

func (b *S3Backend) Save(ctx context.Context, slot string, raw []byte) error {
	slot, err := normalizeSlot(slot)
	if err != nil {
		return err
	}
	if err := b.ensureBucket(ctx); err != nil {
		return errors.Wrap(err, "ensure bucket")
	}
	_, err = b.client.PutObject(ctx, b.bucket, b.key(slot), bytes.NewReader(raw), int64(len(raw)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	return errors.Wrapf(err, "put slot %s", slot)
}
