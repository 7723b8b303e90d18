package processor

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/filter"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/helpers"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/storage"
	"github.com/pkg/errors"
)

type fetchProcessor struct {
	logger  *slog.Logger
	fetcher storage.Fetcher
}

// NewFetchProcessor returns the stage that re-fetches the original object from the resolved location.
func NewFetchProcessor(fetcher storage.Fetcher, opts ...Option) Processor {
	_inst := &fetchProcessor{fetcher: fetcher, logger: helpers.NewNoopLogger()}
	applyOpts(_inst, opts...)
	return _inst
}

func (p *fetchProcessor) Name() string { return "fetch" }

func (p *fetchProcessor) SetLogger(logger *slog.Logger) {
	p.logger = logger.WithGroup("processor:fetch")
}

func (p *fetchProcessor) Process(ctx context.Context, bus *filter.Bus) error {
	key := ObjectKey(bus.KeyPrefix, bus.Request.URI)
	if key == "" {
		return &filter.FetchError{Key: key, Cause: errors.New("empty object key")}
	}
	bus.Key = key

	data, err := p.fetcher.Fetch(ctx, bus.Location, key)
	if err != nil {
		p.logger.Error("failed to fetch original object", slog.String("key", key), slog.Any("error", err))
		return &filter.FetchError{Key: key, Cause: err}
	}
	p.logger.Debug("fetched original object", slog.String("key", key), slog.Int("bytes", len(data)))
	bus.Source = data
	return nil
}

// ObjectKey derives the storage key from the request URI: leading separators stripped,
// percent-encoding decoded (the raw form is kept when it does not decode), prefixed by prefix.
// Object keys are opaque, so the key is never cleaned: "a//b" and "../x" name distinct objects.
func ObjectKey(prefix, uri string) string {
	key := strings.TrimLeft(uri, "/")
	if decoded, err := url.PathUnescape(key); err == nil {
		key = decoded
	}
	if key == "" {
		return ""
	}
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		return prefix + "/" + key
	}
	return key
}
