package evidence

import (
	"context"

	minio "github.com/minio/minio-go/v7"
)

// FakePutter records uploads instead of talking to S3.
type FakePutter struct {
	Keys  []string
	Types []string
	Err   error
}

func (f *FakePutter) FPutObject(_ context.Context, _, key, _ string, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.Err != nil {
		return minio.UploadInfo{}, f.Err
	}
	f.Keys = append(f.Keys, key)
	f.Types = append(f.Types, opts.ContentType)
	return minio.UploadInfo{Key: key}, nil
}

func NewS3UploaderForTest(p *FakePutter, bucket, prefix string) *S3Uploader {
	return newS3Uploader(p, bucket, prefix)
}
