package processor

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/config"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/filter"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/helpers"
)

type statusGateProcessor struct {
	logger *slog.Logger
	policy string
}

// NewStatusGateProcessor returns the stage that refuses upstream responses not eligible for transcoding.
// With config.StatusGateError every status >= 400 is refused, with config.StatusGateStrict every status but 200.
// An unparsable status is always refused.
func NewStatusGateProcessor(policy string, opts ...Option) Processor {
	_inst := &statusGateProcessor{policy: policy, logger: helpers.NewNoopLogger()}
	applyOpts(_inst, opts...)
	return _inst
}

func (p *statusGateProcessor) Name() string { return "status-gate" }

func (p *statusGateProcessor) SetLogger(logger *slog.Logger) {
	p.logger = logger.WithGroup("processor:status-gate")
}

func (p *statusGateProcessor) Process(_ context.Context, bus *filter.Bus) error {
	status, err := strconv.Atoi(strings.TrimSpace(bus.Response.Status))
	if err != nil {
		p.logger.Debug("unparsable upstream status", slog.String("status", bus.Response.Status))
		return &filter.StatusGateError{Status: bus.Response.Status}
	}

	var eligible bool
	switch p.policy {
	case config.StatusGateStrict:
		eligible = status == http.StatusOK
	default:
		eligible = status < http.StatusBadRequest
	}
	if !eligible {
		p.logger.Debug("upstream status not eligible", slog.Int("status", status), slog.String("policy", p.policy))
		return &filter.StatusGateError{Status: bus.Response.Status}
	}

	bus.Status = status
	return nil
}
