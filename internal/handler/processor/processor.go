// Package processor provides the decision stages of the filter and the chain that runs them in order.
package processor

import (
	"context"
	"log/slog"

	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/filter"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Option is a function that applies an option to a Processor.
type Option = func(Processor)

// Processor is a single stage of the filter. A stage either enriches the bus and returns nil,
// or returns a filter.PassThrough error that resolves the invocation to the original response.
// Processors are built per invocation and are not shared between goroutines.
type Processor interface {
	Name() string
	SetLogger(logger *slog.Logger)
	Process(ctx context.Context, bus *filter.Bus) error
}

// WithLogger sets the logger of a Processor.
func WithLogger(logger *slog.Logger) Option {
	return func(p Processor) {
		p.SetLogger(logger)
	}
}

// Process runs the processors in order and stops at the first error.
func Process(ctx context.Context, logger *slog.Logger, bus *filter.Bus, processors ...Processor) error {
	for _, p := range processors {
		p.SetLogger(logger)
		if err := run(ctx, p, bus); err != nil {
			return err
		}
	}
	return nil
}

func run(ctx context.Context, p Processor, bus *filter.Bus) error {
	ctx, span := telemetry.Tracer().Start(ctx, "processor."+p.Name())
	defer span.End()

	err := p.Process(ctx, bus)
	if err != nil {
		pt := filter.AsPassThrough(err)
		span.SetAttributes(attribute.String("filter.pass_through", pt.Kind()))
		span.SetStatus(codes.Error, pt.Reason())
	}
	return err
}

func applyOpts(m Processor, opts ...Option) {
	for _, opt := range opts {
		opt(m)
	}
}
