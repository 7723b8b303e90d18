package codec

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"github.com/gen2brain/webp"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type stdlibTranscoder struct {
	maxPixels int
}

func (t stdlibTranscoder) Transcode(ctx context.Context, input []byte, target Format, quality int) ([]byte, Format, error) {
	select {
	case <-ctx.Done():
		return nil, "", ctx.Err()
	default:
	}

	src, source, err := Decode(input, t.maxPixels)
	if err != nil {
		return nil, source, err
	}

	out, err := Encode(src, target, quality)
	if err != nil {
		return nil, source, err
	}
	return out, source, nil
}

// Decode decodes input with the registered standard library decoders.
// GIF sources are refused: only the first frame of an animation would survive the transcode.
func Decode(input []byte, maxPixels int) (image.Image, Format, error) {
	cfg, name, err := image.DecodeConfig(bytes.NewReader(input))
	if err != nil {
		return nil, "", errors.Wrap(err, "decode source image")
	}
	source, err := ParseFormat(name)
	if err != nil {
		return nil, "", errors.Wrap(ErrUnsupportedSource, name)
	}
	if err = checkPixels(cfg.Width, cfg.Height, maxPixels); err != nil {
		return nil, source, err
	}
	if source == FormatGIF {
		return nil, source, errors.Wrap(ErrUnsupportedSource, "gif")
	}

	img, _, err := image.Decode(bytes.NewReader(input))
	if err != nil {
		return nil, source, errors.Wrap(err, "decode source image")
	}
	return img, source, nil
}

// Encode encodes img into format at the given lossy quality.
func Encode(img image.Image, format Format, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case FormatJPEG:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: normalizeQuality(quality)}); err != nil {
			return nil, errors.Wrap(err, "encode jpeg")
		}
	case FormatPNG:
		encoder := png.Encoder{CompressionLevel: png.BestCompression}
		if err := encoder.Encode(&buf, img); err != nil {
			return nil, errors.Wrap(err, "encode png")
		}
	case FormatWebP:
		if err := webp.Encode(&buf, img, webp.Options{Quality: normalizeQuality(quality)}); err != nil {
			return nil, errors.Wrap(err, "encode webp")
		}
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "encode %s", format)
	}

	return buf.Bytes(), nil
}
