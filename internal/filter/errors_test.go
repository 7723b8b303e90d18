package filter_test

import (
	"fmt"
	"testing"

	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/filter"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/storage"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestPassThroughReasons(t *testing.T) {
	testCases := []struct {
		Name   string
		Err    filter.PassThrough
		Kind   string
		Reason string
	}{
		{
			Name:   "status_gate",
			Err:    &filter.StatusGateError{Status: "404"},
			Kind:   "status_gate",
			Reason: "Original Status 404",
		},
		{
			Name:   "origin_unresolved",
			Err:    &filter.OriginUnresolvedError{Cause: errors.New("missing s3 origin")},
			Kind:   "origin_unresolved",
			Reason: "No S3 Origin Detected",
		},
		{
			Name:   "capability_unsupported",
			Err:    &filter.CapabilityUnsupportedError{MediaType: "image/webp"},
			Kind:   "capability_unsupported",
			Reason: "Client did not send Accept: image/webp",
		},
		{
			Name:   "fetch_error",
			Err:    &filter.FetchError{Key: "missing.jpg", Cause: storage.ErrNotFound},
			Kind:   "fetch_error",
			Reason: "Error: object not found",
		},
		{
			Name:   "fetch_access_denied",
			Err:    &filter.FetchError{Key: "a.jpg", Cause: errors.Wrap(storage.ErrAccessDenied, "bucket images key a.jpg request id 4442587FB7D0A2F9")},
			Kind:   "fetch_error",
			Reason: "Error: access denied",
		},
		{
			Name:   "fetch_unclassified",
			Err:    &filter.FetchError{Key: "a.jpg", Cause: errors.New("dial tcp images.s3.amazonaws.com:443: i/o timeout")},
			Kind:   "fetch_error",
			Reason: "Error: fetch failed",
		},
		{
			Name:   "payload_too_large",
			Err:    &filter.PayloadTooLargeError{Size: 1_400_000, Ceiling: 1_300_000},
			Kind:   "payload_too_large",
			Reason: "Generated image too big (>1.3MB)",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Kind, tc.Err.Kind())
			assert.Equal(t, tc.Reason, tc.Err.Reason())
			assert.NotEmpty(t, tc.Err.Error())
		})
	}
}

func TestFetchErrorUnwraps(t *testing.T) {
	err := fmt.Errorf("stage: %w", &filter.FetchError{Key: "a.jpg", Cause: storage.ErrAccessDenied})
	assert.ErrorIs(t, err, storage.ErrAccessDenied)

	pt := filter.AsPassThrough(err)
	assert.Equal(t, "fetch_error", pt.Kind())
}

func TestAsPassThroughForeignError(t *testing.T) {
	pt := filter.AsPassThrough(errors.New("boom"))
	assert.Equal(t, "transcode_error", pt.Kind())
	assert.Equal(t, "Error: boom", pt.Reason())
}

func TestTranscodeOutcome(t *testing.T) {
	assert.False(t, filter.TranscodeOutcome{}.Succeeded())
	assert.False(t, filter.TranscodeOutcome{Body: []byte{1}, Err: errors.New("x")}.Succeeded())
	assert.True(t, filter.TranscodeOutcome{Body: []byte{1}, ContentType: "image/webp"}.Succeeded())
}
