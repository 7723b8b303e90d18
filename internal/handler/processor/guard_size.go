package processor

import (
	"context"
	"encoding/base64"
	"log/slog"

	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/filter"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/helpers"
)

type sizeGuardProcessor struct {
	logger  *slog.Logger
	ceiling int
}

// NewSizeGuardProcessor returns the stage that base64-encodes the transcoded body
// and refuses it when the encoded length exceeds ceiling characters.
func NewSizeGuardProcessor(ceiling int, opts ...Option) Processor {
	_inst := &sizeGuardProcessor{ceiling: ceiling, logger: helpers.NewNoopLogger()}
	applyOpts(_inst, opts...)
	return _inst
}

func (p *sizeGuardProcessor) Name() string { return "size-guard" }

func (p *sizeGuardProcessor) SetLogger(logger *slog.Logger) {
	p.logger = logger.WithGroup("processor:size-guard")
}

func (p *sizeGuardProcessor) Process(_ context.Context, bus *filter.Bus) error {
	if !bus.Outcome.Succeeded() {
		return filter.NewTranscodeError("no transcoded body to encode")
	}

	size := base64.StdEncoding.EncodedLen(len(bus.Outcome.Body))
	if size > p.ceiling {
		p.logger.Warn("encoded body exceeds ceiling", slog.Int("size", size), slog.Int("ceiling", p.ceiling))
		return &filter.PayloadTooLargeError{Size: size, Ceiling: p.ceiling}
	}

	bus.Payload = base64.StdEncoding.EncodeToString(bus.Outcome.Body)
	return nil
}
