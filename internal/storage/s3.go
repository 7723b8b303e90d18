package storage

import (
	"context"
)

// ObjectGetter reads a whole object from a bucket. A non-empty region overrides the client's region.
type ObjectGetter interface {
	GetS3Object(ctx context.Context, bucket, region, key string) ([]byte, error)
}

// S3Fetcher reads objects from the bucket of the location through an ObjectGetter.
type S3Fetcher struct {
	Objects ObjectGetter
}

// NewS3Fetcher returns an S3Fetcher backed by objects.
func NewS3Fetcher(objects ObjectGetter) *S3Fetcher {
	return &S3Fetcher{Objects: objects}
}

// Fetch implements Fetcher.
func (f *S3Fetcher) Fetch(ctx context.Context, loc Location, key string) ([]byte, error) {
	if loc.Bucket == "" {
		return nil, ErrNoLocation
	}
	return f.Objects.GetS3Object(ctx, loc.Bucket, loc.Region, key)
}
