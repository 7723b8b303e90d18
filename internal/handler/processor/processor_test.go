package processor_test

import (
	"context"
	"encoding/base64"
	"log/slog"
	"testing"

	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/codec"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/config"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/filter"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/handler/processor"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/helpers"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/models"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/storage"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/telemetry"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	data   []byte
	err    error
	gotLoc storage.Location
	gotKey string
}

func (f *fakeFetcher) Fetch(_ context.Context, loc storage.Location, key string) ([]byte, error) {
	f.gotLoc, f.gotKey = loc, key
	return f.data, f.err
}

type fakeTranscoder struct {
	out []byte
	err error
}

func (f *fakeTranscoder) Transcode(_ context.Context, _ []byte, _ codec.Format, _ int) ([]byte, codec.Format, error) {
	return f.out, codec.FormatJPEG, f.err
}

type recordingProcessor struct {
	name   string
	err    error
	called *[]string
}

func (r *recordingProcessor) Name() string            { return r.name }
func (r *recordingProcessor) SetLogger(_ *slog.Logger) {}
func (r *recordingProcessor) Process(_ context.Context, _ *filter.Bus) error {
	*r.called = append(*r.called, r.name)
	return r.err
}

func s3Request(uri, domain string) models.Request {
	return models.Request{
		URI: uri,
		Origin: &models.Origin{
			S3: &models.S3Origin{DomainName: domain, Region: "eu-west-1"},
		},
	}
}

func TestProcess_StopsAtFirstError(t *testing.T) {
	var called []string
	err := processor.Process(context.Background(), helpers.NewNoopLogger(), &filter.Bus{},
		&recordingProcessor{name: "a", called: &called},
		&recordingProcessor{name: "b", called: &called, err: &filter.StatusGateError{Status: "404"}},
		&recordingProcessor{name: "c", called: &called},
	)

	var gate *filter.StatusGateError
	require.ErrorAs(t, err, &gate)
	assert.Equal(t, []string{"a", "b"}, called)
}

func TestStatusGate(t *testing.T) {
	testCases := []struct {
		Name     string
		Policy   string
		Status   string
		Eligible bool
	}{
		{Name: "ok", Policy: config.StatusGateError, Status: "200", Eligible: true},
		{Name: "not_modified", Policy: config.StatusGateError, Status: "304", Eligible: true},
		{Name: "not_found", Policy: config.StatusGateError, Status: "404", Eligible: false},
		{Name: "server_error", Policy: config.StatusGateError, Status: "503", Eligible: false},
		{Name: "strict_ok", Policy: config.StatusGateStrict, Status: "200", Eligible: true},
		{Name: "strict_partial", Policy: config.StatusGateStrict, Status: "206", Eligible: false},
		{Name: "unparsable", Policy: config.StatusGateError, Status: "OK", Eligible: false},
		{Name: "empty", Policy: config.StatusGateError, Status: "", Eligible: false},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			bus := &filter.Bus{Response: models.Response{Status: tc.Status}}
			err := processor.NewStatusGateProcessor(tc.Policy).Process(context.Background(), bus)
			if tc.Eligible {
				assert.NoError(t, err)
				assert.NotZero(t, bus.Status)
				return
			}
			var gate *filter.StatusGateError
			require.ErrorAs(t, err, &gate)
			assert.Equal(t, "Original Status "+tc.Status, gate.Reason())
		})
	}
}

func TestOriginResolver(t *testing.T) {
	testCases := []struct {
		Name       string
		Settings   processor.OriginSettings
		Request    models.Request
		Expected   storage.Location
		Prefix     string
		Unresolved bool
	}{
		{
			Name:     "virtual_hosted_regional",
			Request:  s3Request("/a.jpg", "images.s3.eu-west-1.amazonaws.com"),
			Expected: storage.Location{Bucket: "images", Region: "eu-west-1"},
		},
		{
			Name:     "virtual_hosted_global",
			Request:  s3Request("/a.jpg", "images.s3.amazonaws.com"),
			Expected: storage.Location{Bucket: "images", Region: "eu-west-1"},
		},
		{
			Name:     "dotted_bucket",
			Request:  s3Request("/a.jpg", "static.example.com.s3.amazonaws.com"),
			Expected: storage.Location{Bucket: "static.example.com", Region: "eu-west-1"},
		},
		{
			Name: "origin_path_prefix",
			Request: models.Request{URI: "/a.jpg", Origin: &models.Origin{
				S3: &models.S3Origin{DomainName: "images.s3.amazonaws.com", Path: "/assets/"},
			}},
			Expected: storage.Location{Bucket: "images"},
			Prefix:   "assets",
		},
		{
			Name:       "no_origin",
			Request:    models.Request{URI: "/a.jpg"},
			Unresolved: true,
		},
		{
			Name: "custom_origin",
			Request: models.Request{URI: "/a.jpg", Origin: &models.Origin{
				Custom: &models.CustomOrigin{DomainName: "example.com"},
			}},
			Unresolved: true,
		},
		{
			Name:       "empty_domain",
			Request:    s3Request("/a.jpg", ""),
			Unresolved: true,
		},
		{
			Name:       "cloudfront_domain",
			Request:    s3Request("/a.jpg", "d111111abcdef8.cloudfront.net"),
			Unresolved: true,
		},
		{
			Name:       "configured_distribution_domain",
			Settings:   processor.OriginSettings{DistributionDomains: []string{"cdn.example.com"}},
			Request:    s3Request("/a.jpg", "CDN.example.com"),
			Unresolved: true,
		},
		{
			Name:     "bucket_mode",
			Settings: processor.OriginSettings{Mode: config.OriginModeBucket, Bucket: "fixed"},
			Request:  models.Request{URI: "/a.jpg"},
			Expected: storage.Location{Bucket: "fixed"},
		},
		{
			Name:     "url_mode",
			Settings: processor.OriginSettings{Mode: config.OriginModeURL, BaseURL: "https://origin.example.com/img"},
			Request:  models.Request{URI: "/a.jpg"},
			Expected: storage.Location{BaseURL: "https://origin.example.com/img"},
		},
		{
			Name:       "url_mode_relative",
			Settings:   processor.OriginSettings{Mode: config.OriginModeURL, BaseURL: "/img"},
			Request:    models.Request{URI: "/a.jpg"},
			Unresolved: true,
		},
		{
			Name:       "url_mode_cloudfront",
			Settings:   processor.OriginSettings{Mode: config.OriginModeURL, BaseURL: "https://d1.cloudfront.net"},
			Request:    models.Request{URI: "/a.jpg"},
			Unresolved: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			bus := &filter.Bus{Request: tc.Request}
			err := processor.NewOriginResolverProcessor(tc.Settings).Process(context.Background(), bus)
			if tc.Unresolved {
				var unresolved *filter.OriginUnresolvedError
				require.ErrorAs(t, err, &unresolved)
				assert.Equal(t, "No S3 Origin Detected", unresolved.Reason())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.Expected, bus.Location)
			assert.Equal(t, tc.Prefix, bus.KeyPrefix)
		})
	}
}

func TestOriginResolver_CurrentDistribution(t *testing.T) {
	bus := &filter.Bus{
		Distribution: "images.example.com",
		Request:      s3Request("/a.jpg", "images.example.com"),
	}
	err := processor.NewOriginResolverProcessor(processor.OriginSettings{}).Process(context.Background(), bus)

	var unresolved *filter.OriginUnresolvedError
	assert.ErrorAs(t, err, &unresolved)
}

func TestBucketFromDomain(t *testing.T) {
	testCases := []struct {
		Name     string
		Input    string
		Expected string
	}{
		{Name: "regional", Input: "bucket.s3.us-east-1.amazonaws.com", Expected: "bucket"},
		{Name: "legacy_dash_region", Input: "bucket.s3-eu-west-1.amazonaws.com", Expected: "bucket"},
		{Name: "dotted", Input: "a.b.c.s3.amazonaws.com", Expected: "a.b.c"},
		{Name: "website", Input: "bucket.example.com", Expected: "bucket"},
		{Name: "bare", Input: "bucket", Expected: "bucket"},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Expected, processor.BucketFromDomain(tc.Input))
		})
	}
}

func TestNegotiator(t *testing.T) {
	testCases := []struct {
		Name     string
		Headers  models.Headers
		Accepted bool
	}{
		{
			Name:     "browser_accept",
			Headers:  models.Headers{"accept": {{Key: "Accept", Value: "image/avif,image/webp,*/*"}}},
			Accepted: true,
		},
		{
			Name:     "mixed_case",
			Headers:  models.Headers{"accept": {{Key: "Accept", Value: "IMAGE/WEBP"}}},
			Accepted: true,
		},
		{
			Name: "second_entry",
			Headers: models.Headers{"accept": {
				{Key: "Accept", Value: "image/png"},
				{Key: "Accept", Value: "image/webp"},
			}},
			Accepted: true,
		},
		{
			Name:     "html_only",
			Headers:  models.Headers{"accept": {{Key: "Accept", Value: "text/html"}}},
			Accepted: false,
		},
		{
			Name:     "missing",
			Headers:  models.Headers{},
			Accepted: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			bus := &filter.Bus{Request: models.Request{Headers: tc.Headers}}
			err := processor.NewNegotiatorProcessor("image/webp").Process(context.Background(), bus)
			if tc.Accepted {
				assert.NoError(t, err)
				return
			}
			var unsupported *filter.CapabilityUnsupportedError
			require.ErrorAs(t, err, &unsupported)
			assert.Equal(t, "Client did not send Accept: image/webp", unsupported.Reason())
		})
	}
}

func TestObjectKey(t *testing.T) {
	testCases := []struct {
		Name     string
		Prefix   string
		URI      string
		Expected string
	}{
		{Name: "simple", URI: "/images/cat.jpg", Expected: "images/cat.jpg"},
		{Name: "double_slash", URI: "//images/cat.jpg", Expected: "images/cat.jpg"},
		{Name: "encoded_space", URI: "/my%20photo.jpg", Expected: "my photo.jpg"},
		{Name: "invalid_escape", URI: "/100%.jpg", Expected: "100%.jpg"},
		{Name: "prefixed", Prefix: "assets", URI: "/cat.jpg", Expected: "assets/cat.jpg"},
		{Name: "prefixed_slashes", Prefix: "/assets/", URI: "/cat.jpg", Expected: "assets/cat.jpg"},
		{Name: "prefixed_inner_double_slash", Prefix: "assets", URI: "/a//b.jpg", Expected: "assets/a//b.jpg"},
		{Name: "prefixed_dot_segment", Prefix: "assets", URI: "/dir/./x.jpg", Expected: "assets/dir/./x.jpg"},
		{Name: "prefixed_parent_segment", Prefix: "assets", URI: "/../secret.jpg", Expected: "assets/../secret.jpg"},
		{Name: "prefixed_encoded_parent", Prefix: "assets", URI: "/..%2Fsecret.jpg", Expected: "assets/../secret.jpg"},
		{Name: "inner_double_slash", URI: "/a//b.jpg", Expected: "a//b.jpg"},
		{Name: "root", URI: "/", Expected: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Expected, processor.ObjectKey(tc.Prefix, tc.URI))
		})
	}
}

func TestFetch(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		fetcher := &fakeFetcher{data: []byte("image")}
		bus := &filter.Bus{
			Request:  models.Request{URI: "/cat.jpg"},
			Location: storage.Location{Bucket: "images"},
		}
		require.NoError(t, processor.NewFetchProcessor(fetcher).Process(context.Background(), bus))
		assert.Equal(t, []byte("image"), bus.Source)
		assert.Equal(t, "cat.jpg", fetcher.gotKey)
		assert.Equal(t, "images", fetcher.gotLoc.Bucket)
	})

	t.Run("not_found", func(t *testing.T) {
		fetcher := &fakeFetcher{err: storage.Classify("NoSuchKey", errors.New("missing"))}
		bus := &filter.Bus{Request: models.Request{URI: "/cat.jpg"}}
		err := processor.NewFetchProcessor(fetcher).Process(context.Background(), bus)

		var fetchErr *filter.FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.Nil(t, bus.Source)
	})

	t.Run("prefixed_key_verbatim", func(t *testing.T) {
		fetcher := &fakeFetcher{data: []byte("image")}
		bus := &filter.Bus{
			Request:   models.Request{URI: "/a//../b.jpg"},
			Location:  storage.Location{Bucket: "images"},
			KeyPrefix: "assets",
		}
		require.NoError(t, processor.NewFetchProcessor(fetcher).Process(context.Background(), bus))
		assert.Equal(t, "assets/a//../b.jpg", fetcher.gotKey)
		assert.Equal(t, "assets/a//../b.jpg", bus.Key)
	})

	t.Run("empty_key", func(t *testing.T) {
		fetcher := &fakeFetcher{}
		bus := &filter.Bus{Request: models.Request{URI: "/"}}
		err := processor.NewFetchProcessor(fetcher).Process(context.Background(), bus)

		var fetchErr *filter.FetchError
		assert.ErrorAs(t, err, &fetchErr)
		assert.Empty(t, fetcher.gotKey)
	})
}

func TestTranscode(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		metrics := telemetry.NewMetrics()
		bus := &filter.Bus{Source: []byte("original")}
		p := processor.NewTranscodeProcessor(&fakeTranscoder{out: []byte("webp")}, codec.FormatWebP, 80, metrics)
		require.NoError(t, p.Process(context.Background(), bus))
		assert.True(t, bus.Outcome.Succeeded())
		assert.Equal(t, "image/webp", bus.Outcome.ContentType)
		assert.Equal(t, []byte("webp"), bus.Outcome.Body)
	})

	t.Run("failure", func(t *testing.T) {
		bus := &filter.Bus{Source: []byte("garbage")}
		p := processor.NewTranscodeProcessor(&fakeTranscoder{err: codec.ErrUnsupportedSource}, codec.FormatWebP, 80, nil)
		err := p.Process(context.Background(), bus)

		var transcodeErr *filter.TranscodeError
		require.ErrorAs(t, err, &transcodeErr)
		assert.ErrorIs(t, err, codec.ErrUnsupportedSource)
		assert.False(t, bus.Outcome.Succeeded())
	})
}

func TestSizeGuard(t *testing.T) {
	t.Run("within_ceiling", func(t *testing.T) {
		bus := &filter.Bus{Outcome: filter.TranscodeOutcome{Body: []byte("abc")}}
		require.NoError(t, processor.NewSizeGuardProcessor(4).Process(context.Background(), bus))
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("abc")), bus.Payload)
	})

	t.Run("exceeds_ceiling", func(t *testing.T) {
		bus := &filter.Bus{Outcome: filter.TranscodeOutcome{Body: []byte("abcd")}}
		err := processor.NewSizeGuardProcessor(4).Process(context.Background(), bus)

		var tooLarge *filter.PayloadTooLargeError
		require.ErrorAs(t, err, &tooLarge)
		assert.Equal(t, 8, tooLarge.Size)
		assert.Empty(t, bus.Payload)
	})

	t.Run("no_outcome", func(t *testing.T) {
		err := processor.NewSizeGuardProcessor(4).Process(context.Background(), &filter.Bus{})

		var transcodeErr *filter.TranscodeError
		assert.ErrorAs(t, err, &transcodeErr)
	})
}
