package storage

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

// MinioConfig configures an S3-compatible endpoint.
type MinioConfig struct {
	Endpoint string
	Access   string
	Secret   string
	UseSSL   bool
}

// MinioFetcher reads objects from an S3-compatible endpoint, typically for local development.
type MinioFetcher struct {
	minio *minio.Client
}

// NewMinioFetcher creates a MinioFetcher for the endpoint.
func NewMinioFetcher(cfg MinioConfig) (*MinioFetcher, error) {
	var creds *credentials.Credentials
	if cfg.Access != "" {
		creds = credentials.NewStaticV4(cfg.Access, cfg.Secret, "")
	} else {
		creds = credentials.NewEnvAWS()
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  creds,
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create minio client")
	}
	return &MinioFetcher{minio: mc}, nil
}

// Fetch implements Fetcher.
func (f *MinioFetcher) Fetch(ctx context.Context, loc Location, key string) ([]byte, error) {
	if loc.Bucket == "" {
		return nil, ErrNoLocation
	}
	obj, err := f.minio.GetObject(ctx, loc.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrapf(classifyMinio(err), "get object %s/%s", loc.Bucket, key)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, errors.Wrapf(classifyMinio(err), "read object %s/%s", loc.Bucket, key)
	}
	return data, nil
}

func classifyMinio(err error) error {
	return Classify(minio.ToErrorResponse(err).Code, err)
}
