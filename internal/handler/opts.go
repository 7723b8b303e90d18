package handler

import (
	"log/slog"

	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/codec"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/handler/processor"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/storage"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/telemetry"
)

// WithLogger sets the logger instance for the handler.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithFetcher sets the storage fetcher used to retrieve original objects.
func WithFetcher(fetcher storage.Fetcher) Option {
	return func(h *Handler) {
		h.fetcher = fetcher
	}
}

// WithTranscoder overrides the transcoder.
func WithTranscoder(transcoder codec.Transcoder) Option {
	return func(h *Handler) {
		h.transcoder = transcoder
	}
}

// WithMetrics sets the metrics recorder. A nil recorder disables metrics.
func WithMetrics(metrics *telemetry.Metrics) Option {
	return func(h *Handler) {
		h.metrics = metrics
	}
}

// WithTarget sets the negotiated format and its encoding quality.
func WithTarget(target codec.Format, quality int) Option {
	return func(h *Handler) {
		h.target = target
		h.quality = quality
	}
}

// WithSizeCeiling sets the maximum length, in base64 characters, of a transcoded body.
func WithSizeCeiling(ceiling int) Option {
	return func(h *Handler) {
		h.ceiling = ceiling
	}
}

// WithStatusGate sets the upstream status policy.
func WithStatusGate(policy string) Option {
	return func(h *Handler) {
		h.statusGate = policy
	}
}

// WithOrigin sets how the storage location of original objects is resolved.
func WithOrigin(settings processor.OriginSettings) Option {
	return func(h *Handler) {
		h.origin = settings
	}
}

func WithDebugHeader(enabled bool) Option {
	return func(h *Handler) {
		h.debugHeader = enabled
	}
}

func WithVary(enabled bool) Option {
	return func(h *Handler) {
		h.vary = enabled
	}
}
