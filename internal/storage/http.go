package storage

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HTTPFetcher reads objects below a base URL.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates an HTTPFetcher whose requests are traced and bounded by timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{client: &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   timeout,
	}}
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, loc Location, key string) ([]byte, error) {
	if loc.BaseURL == "" {
		return nil, ErrNoLocation
	}
	target := ObjectURL(loc.BaseURL, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "build request for %s", target)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", target)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, Classify("NotFound", &HTTPStatusError{URL: target, StatusCode: resp.StatusCode})
	case resp.StatusCode == http.StatusForbidden:
		return nil, Classify("Forbidden", &HTTPStatusError{URL: target, StatusCode: resp.StatusCode})
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &HTTPStatusError{URL: target, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read body of %s", target)
	}
	return data, nil
}

// ObjectURL joins base and key, escaping every key segment.
func ObjectURL(base, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}
