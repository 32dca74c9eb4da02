package evidence

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config selects the bucket that receives evidence uploads.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Prefix    string
}

// objectPutter is the subset of the minio client used for uploads.
type objectPutter interface {
	FPutObject(ctx context.Context, bucket, key, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// S3Uploader implements domain.EvidenceUploader on an S3-compatible store.
type S3Uploader struct {
	client objectPutter
	bucket string
	prefix string
}

// NewS3Uploader connects to the configured endpoint.
func NewS3Uploader(cfg S3Config) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("evidence bucket not set")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating s3 client: %w", err)
	}
	return newS3Uploader(mc, cfg.Bucket, cfg.Prefix), nil
}

func newS3Uploader(client objectPutter, bucket, prefix string) *S3Uploader {
	return &S3Uploader{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// Upload copies every file to <prefix>/<base name>. It stops at the first failure.
func (u *S3Uploader) Upload(ctx context.Context, files []string) error {
	for _, f := range files {
		key := u.Key(f)
		if _, err := u.client.FPutObject(ctx, u.bucket, key, f, minio.PutObjectOptions{
			ContentType: contentType(f),
		}); err != nil {
			return fmt.Errorf("uploading %s to s3://%s/%s: %w", f, u.bucket, key, err)
		}
	}
	return nil
}

// Key returns the object key for a local evidence file.
func (u *S3Uploader) Key(file string) string {
	base := filepath.Base(file)
	if u.prefix == "" {
		return base
	}
	return path.Join(u.prefix, base)
}

func contentType(file string) string {
	switch filepath.Ext(file) {
	case ".json":
		return "application/json"
	case ".prom":
		return "text/plain; version=0.0.4"
	default:
		return "text/plain; charset=utf-8"
	}
}
