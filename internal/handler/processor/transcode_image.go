package processor

import (
	"context"
	"log/slog"
	"time"

	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/codec"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/filter"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/helpers"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/telemetry"
)

type transcodeProcessor struct {
	logger     *slog.Logger
	transcoder codec.Transcoder
	metrics    *telemetry.Metrics
	target     codec.Format
	quality    int
}

// NewTranscodeProcessor returns the stage that re-encodes the fetched bytes into target at quality.
func NewTranscodeProcessor(transcoder codec.Transcoder, target codec.Format, quality int, metrics *telemetry.Metrics, opts ...Option) Processor {
	_inst := &transcodeProcessor{
		transcoder: transcoder,
		target:     target,
		quality:    quality,
		metrics:    metrics,
		logger:     helpers.NewNoopLogger(),
	}
	applyOpts(_inst, opts...)
	return _inst
}

func (p *transcodeProcessor) Name() string { return "transcode" }

func (p *transcodeProcessor) SetLogger(logger *slog.Logger) {
	p.logger = logger.WithGroup("processor:transcode")
}

func (p *transcodeProcessor) Process(ctx context.Context, bus *filter.Bus) error {
	start := time.Now()
	data, source, err := p.transcoder.Transcode(ctx, bus.Source, p.target, p.quality)
	if err != nil {
		p.logger.Error("failed to transcode image", slog.String("source", string(source)), slog.Any("error", err))
		bus.Outcome = filter.TranscodeOutcome{Err: err}
		return &filter.TranscodeError{Cause: err}
	}
	elapsed := time.Since(start)

	bus.Outcome = filter.TranscodeOutcome{Body: data, ContentType: p.target.ContentType()}
	p.metrics.ObserveTranscode(elapsed, len(bus.Source), len(data))
	p.logger.Debug("transcoded image",
		slog.String("source", string(source)),
		slog.String("target", string(p.target)),
		slog.Int("originalBytes", len(bus.Source)),
		slog.Int("transcodedBytes", len(data)),
		slog.Duration("elapsed", elapsed))
	return nil
}
