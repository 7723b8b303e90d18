//go:build govips && cgo

package codec

import (
	"context"

	"github.com/davidbyttow/govips/v2/vips"
	"github.com/pkg/errors"
)

type govipsTranscoder struct {
	maxPixels int
}

func (t govipsTranscoder) Transcode(ctx context.Context, input []byte, target Format, quality int) ([]byte, Format, error) {
	select {
	case <-ctx.Done():
		return nil, "", ctx.Err()
	default:
	}

	source, err := sourceFormat(input)
	if err != nil {
		return nil, "", err
	}

	img, err := vips.NewImageFromBuffer(input)
	if err != nil {
		return nil, source, errors.Wrap(err, "decode source image")
	}
	defer img.Close()

	if err = checkPixels(img.Width(), img.Height(), t.maxPixels); err != nil {
		return nil, source, err
	}
	if img.Pages() > 1 {
		return nil, source, errors.Wrap(ErrUnsupportedSource, "animated image")
	}

	data, err := exportGovipsImage(img, target, quality)
	if err != nil {
		return nil, source, err
	}
	return data, source, nil
}

func sourceFormat(input []byte) (Format, error) {
	switch vips.DetermineImageType(input) {
	case vips.ImageTypeJPEG:
		return FormatJPEG, nil
	case vips.ImageTypePNG:
		return FormatPNG, nil
	case vips.ImageTypeWEBP:
		return FormatWebP, nil
	case vips.ImageTypeTIFF:
		return FormatTIFF, nil
	case vips.ImageTypeBMP:
		return FormatBMP, nil
	case vips.ImageTypeGIF:
		return FormatGIF, nil
	default:
		return "", errors.Wrap(ErrUnsupportedSource, "unknown image type")
	}
}

func exportGovipsImage(img *vips.ImageRef, format Format, quality int) ([]byte, error) {
	switch format {
	case FormatJPEG:
		params := vips.NewJpegExportParams()
		params.Quality = normalizeQuality(quality)
		params.StripMetadata = true
		data, _, err := img.ExportJpeg(params)
		if err != nil {
			return nil, errors.Wrap(err, "encode jpeg")
		}
		return data, nil
	case FormatPNG:
		params := vips.NewPngExportParams()
		params.StripMetadata = true
		data, _, err := img.ExportPng(params)
		if err != nil {
			return nil, errors.Wrap(err, "encode png")
		}
		return data, nil
	case FormatWebP:
		params := vips.NewWebpExportParams()
		params.Quality = normalizeQuality(quality)
		params.StripMetadata = true
		data, _, err := img.ExportWebp(params)
		if err != nil {
			return nil, errors.Wrap(err, "encode webp")
		}
		return data, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "encode %s", format)
	}
}
