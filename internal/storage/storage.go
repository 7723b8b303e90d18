// Package storage provides the read-only object fetchers used to re-fetch the original image from its origin.
package storage

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is reported when the object (or its bucket) does not exist.
	ErrNotFound = errors.New("object not found")
	// ErrAccessDenied is reported when the credentials cannot read the object.
	ErrAccessDenied = errors.New("access denied")
	// ErrNoLocation is reported when a location carries neither a bucket nor a base URL.
	ErrNoLocation = errors.New("location has no bucket nor base URL")
)

// Location identifies where an object is read from: a bucket (with an optional region), or a base URL.
type Location struct {
	Bucket  string
	Region  string
	BaseURL string
}

func (l Location) String() string {
	if l.BaseURL != "" {
		return l.BaseURL
	}
	return "s3://" + l.Bucket
}

// Fetcher retrieves the bytes of an object. Implementations are safe for concurrent use.
type Fetcher interface {
	Fetch(ctx context.Context, loc Location, key string) ([]byte, error)
}

// Router dispatches a fetch to the bucket or URL fetcher depending on the location.
type Router struct {
	Bucket Fetcher
	URL    Fetcher
}

// Fetch implements Fetcher.
func (r Router) Fetch(ctx context.Context, loc Location, key string) ([]byte, error) {
	switch {
	case loc.BaseURL != "" && r.URL != nil:
		return r.URL.Fetch(ctx, loc, key)
	case loc.Bucket != "" && r.Bucket != nil:
		return r.Bucket.Fetch(ctx, loc, key)
	default:
		return nil, errors.Wrapf(ErrNoLocation, "fetch %s", key)
	}
}

// HTTPStatusError is reported by the HTTP fetcher for unexpected statuses.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

type classifiedError struct {
	kind  error
	cause error
}

func (e *classifiedError) Error() string   { return fmt.Sprintf("%v: %v", e.kind, e.cause) }
func (e *classifiedError) Unwrap() []error { return []error{e.kind, e.cause} }

// Classify maps an S3 error code onto ErrNotFound or ErrAccessDenied, keeping cause in the chain.
// Unknown codes return cause unchanged.
func Classify(code string, cause error) error {
	var kind error
	switch code {
	case "NoSuchKey", "NoSuchBucket", "NotFound", "NoSuchObject":
		kind = ErrNotFound
	case "AccessDenied", "Forbidden", "AllAccessDisabled", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		kind = ErrAccessDenied
	default:
		return cause
	}
	return &classifiedError{kind: kind, cause: cause}
}
