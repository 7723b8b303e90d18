package filter

import (
	"fmt"

	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/storage"
	"github.com/pkg/errors"
)

// PassThrough is implemented by every error that resolves an invocation to the original response.
type PassThrough interface {
	error
	// Kind is a stable, low-cardinality identifier used for metrics.
	Kind() string
	// Reason is the human-readable text carried by the diagnostic header.
	Reason() string
}

// StatusGateError is returned when the upstream response status is not eligible for transcoding.
type StatusGateError struct {
	Status string
}

func (m *StatusGateError) Error() string  { return "status gate: " + m.Reason() }
func (m *StatusGateError) Kind() string   { return "status_gate" }
func (m *StatusGateError) Reason() string { return fmt.Sprintf("Original Status %s", m.Status) }

// OriginUnresolvedError is returned when the storage location cannot be derived from the origin.
type OriginUnresolvedError struct {
	Cause error
}

func (m *OriginUnresolvedError) Error() string  { return fmt.Sprintf("origin unresolved: %v", m.Cause) }
func (m *OriginUnresolvedError) Unwrap() error  { return m.Cause }
func (m *OriginUnresolvedError) Kind() string   { return "origin_unresolved" }
func (m *OriginUnresolvedError) Reason() string { return "No S3 Origin Detected" }

// CapabilityUnsupportedError is returned when the client did not negotiate for the target format.
type CapabilityUnsupportedError struct {
	MediaType string
}

func (m *CapabilityUnsupportedError) Error() string {
	return fmt.Sprintf("capability unsupported: client does not accept %s", m.MediaType)
}
func (m *CapabilityUnsupportedError) Kind() string { return "capability_unsupported" }
func (m *CapabilityUnsupportedError) Reason() string {
	return fmt.Sprintf("Client did not send Accept: %s", m.MediaType)
}

// FetchError is returned when the original object cannot be retrieved from storage.
type FetchError struct {
	Key   string
	Cause error
}

func (m *FetchError) Error() string  { return fmt.Sprintf("fetch %q: %v", m.Key, m.Cause) }
func (m *FetchError) Unwrap() error  { return m.Cause }
func (m *FetchError) Kind() string   { return "fetch_error" }

// Reason names the failure class only. Bucket, key and request identifiers stay in the logs.
func (m *FetchError) Reason() string {
	switch {
	case errors.Is(m.Cause, storage.ErrNotFound):
		return "Error: " + storage.ErrNotFound.Error()
	case errors.Is(m.Cause, storage.ErrAccessDenied):
		return "Error: " + storage.ErrAccessDenied.Error()
	default:
		return "Error: fetch failed"
	}
}

// TranscodeError is returned when the original bytes cannot be decoded or re-encoded.
type TranscodeError struct {
	Cause error
}

func (m *TranscodeError) Error() string  { return fmt.Sprintf("transcode: %v", m.Cause) }
func (m *TranscodeError) Unwrap() error  { return m.Cause }
func (m *TranscodeError) Kind() string   { return "transcode_error" }
func (m *TranscodeError) Reason() string { return fmt.Sprintf("Error: %v", m.Cause) }

// PayloadTooLargeError is returned when the encoded body exceeds the transport ceiling.
type PayloadTooLargeError struct {
	Size    int
	Ceiling int
}

func (m *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("payload too large: %d > %d", m.Size, m.Ceiling)
}
func (m *PayloadTooLargeError) Kind() string { return "payload_too_large" }
func (m *PayloadTooLargeError) Reason() string {
	return fmt.Sprintf("Generated image too big (>%s)", humanSize(m.Ceiling))
}

// NewTranscodeError wraps a formatted cause into a TranscodeError.
func NewTranscodeError(format string, args ...any) error {
	return &TranscodeError{Cause: errors.Errorf(format, args...)}
}

// AsPassThrough converts err into a PassThrough. Errors outside the taxonomy are reported as transcode errors.
func AsPassThrough(err error) PassThrough {
	var pt PassThrough
	if errors.As(err, &pt) {
		return pt
	}
	return &TranscodeError{Cause: err}
}

func humanSize(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%gMB", float64(n/100_000)/10)
	case n >= 1_000:
		return fmt.Sprintf("%gKB", float64(n/100)/10)
	default:
		return fmt.Sprintf("%dB", n)
	}
}
