// Package codec provides the image transcoders used to re-encode an original image into the negotiated format.
package codec

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// Format is an image encoding understood by the transcoders.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatGIF  Format = "gif"
	FormatWebP Format = "webp"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

var (
	// ErrUnsupportedFormat is reported for target formats a transcoder cannot encode.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrUnsupportedSource is reported for source images that are not transcoded.
	ErrUnsupportedSource = errors.New("unsupported source image")
	// ErrTooManyPixels is reported when the source dimensions exceed the configured pixel budget.
	ErrTooManyPixels = errors.New("image exceeds pixel budget")
)

// ParseFormat normalizes a format name ("jpg", "JPEG", "image/webp").
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimPrefix(name, "image/")
	switch name {
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "png", "gif", "webp", "bmp", "tiff":
		return Format(name), nil
	default:
		return "", errors.Wrapf(ErrUnsupportedFormat, "%q", name)
	}
}

// ContentType returns the media type of the format.
func (f Format) ContentType() string {
	return "image/" + string(f)
}

// Transcoder decodes an image and re-encodes it into the target format.
// Implementations are stateless and safe for concurrent use.
type Transcoder interface {
	Transcode(ctx context.Context, input []byte, target Format, quality int) (data []byte, source Format, err error)
}

// Option configures a Transcoder.
type Option func(*options)

type options struct {
	maxPixels int
}

// WithMaxPixels rejects source images whose width*height exceeds n. Zero disables the check.
func WithMaxPixels(n int) Option {
	return func(o *options) {
		o.maxPixels = n
	}
}

// New returns the transcoder selected at build time: libvips with the govips tag, the standard library otherwise.
func New(opts ...Option) (Transcoder, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return newTranscoder(*o)
}

func checkPixels(width, height, maxPixels int) error {
	if maxPixels > 0 && width*height > maxPixels {
		return errors.Wrapf(ErrTooManyPixels, "%dx%d > %d", width, height, maxPixels)
	}
	return nil
}

func normalizeQuality(quality int) int {
	if quality <= 0 || quality > 100 {
		return 80
	}
	return quality
}
