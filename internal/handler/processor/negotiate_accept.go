package processor

import (
	"context"
	"log/slog"
	"strings"

	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/filter"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/helpers"
)

const acceptHeader = "accept"

type negotiatorProcessor struct {
	logger    *slog.Logger
	mediaType string
}

// NewNegotiatorProcessor returns the stage that checks whether the client accepts mediaType.
// Every accept value is searched for mediaType as a substring; a missing accept header never matches.
func NewNegotiatorProcessor(mediaType string, opts ...Option) Processor {
	_inst := &negotiatorProcessor{mediaType: strings.ToLower(mediaType), logger: helpers.NewNoopLogger()}
	applyOpts(_inst, opts...)
	return _inst
}

func (p *negotiatorProcessor) Name() string { return "negotiator" }

func (p *negotiatorProcessor) SetLogger(logger *slog.Logger) {
	p.logger = logger.WithGroup("processor:negotiator")
}

func (p *negotiatorProcessor) Process(_ context.Context, bus *filter.Bus) error {
	if Accepts(bus.Request.Headers.Values(acceptHeader), p.mediaType) {
		return nil
	}
	p.logger.Debug("client does not accept target format", slog.String("mediaType", p.mediaType))
	return &filter.CapabilityUnsupportedError{MediaType: p.mediaType}
}

// Accepts reports whether any of the accept values mentions mediaType.
func Accepts(values []string, mediaType string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), mediaType) {
			return true
		}
	}
	return false
}
