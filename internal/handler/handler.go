package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/codec"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/config"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/filter"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/handler/processor"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/helpers"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/models"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/storage"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/telemetry"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	HeaderDebugReason   = "X-Debug-Reason"
	HeaderContentType   = "Content-Type"
	HeaderVary          = "Vary"
	headerContentLength = "content-length"
	headerContentEncode = "content-encoding"

	// maxReasonLength bounds the diagnostic header value.
	maxReasonLength = 256
)

type Option func(*Handler)

// Handler negotiates the image format of a single origin response.
// It is safe for concurrent use once built.
type Handler struct {
	logger     *slog.Logger
	fetcher    storage.Fetcher
	transcoder codec.Transcoder
	metrics    *telemetry.Metrics

	target      codec.Format
	quality     int
	ceiling     int
	statusGate  string
	origin      processor.OriginSettings
	debugHeader bool
	vary        bool
}

// NewHandler creates a Handler. A fetcher is mandatory; the transcoder defaults to codec.New().
func NewHandler(options ...Option) (*Handler, error) {
	_inst := &Handler{
		logger:      helpers.NewNoopLogger(),
		target:      codec.FormatWebP,
		quality:     80,
		ceiling:     1_300_000,
		statusGate:  config.StatusGateError,
		origin:      processor.OriginSettings{Mode: config.OriginModeDynamic},
		debugHeader: true,
		vary:        true,
	}
	for _, opt := range options {
		opt(_inst)
	}

	if _inst.fetcher == nil {
		return nil, errors.New("a storage fetcher is required")
	}
	if _inst.transcoder == nil {
		t, err := codec.New()
		if err != nil {
			return nil, errors.Wrap(err, "failed to create the default transcoder")
		}
		_inst.transcoder = t
	}
	return _inst, nil
}

// Process runs the negotiation stages against the exchange and returns the outgoing response.
// Any stage failure yields the original response, annotated with the diagnostic header when enabled.
func (h *Handler) Process(ctx context.Context, exchange *models.CloudFront) models.Response {
	logger := h.logger.With(slog.String("requestId", exchange.Config.RequestID))
	ctx, span := telemetry.Tracer().Start(ctx, "filter.Process")
	defer span.End()
	span.SetAttributes(attribute.String("http.uri", exchange.Request.URI))

	bus := filter.NewBus(exchange)
	if err := h.run(ctx, logger, bus); err != nil {
		pt := filter.AsPassThrough(err)
		span.SetAttributes(attribute.String("filter.outcome", pt.Kind()))
		span.SetStatus(codes.Error, pt.Reason())
		h.logPassThrough(logger, bus, pt)
		h.metrics.ObserveOutcome(pt.Kind())
		return h.passThrough(exchange.Response, pt.Reason())
	}

	span.SetAttributes(attribute.String("filter.outcome", telemetry.OutcomeTranscoded))
	h.metrics.ObserveOutcome(telemetry.OutcomeTranscoded)
	logger.Info("image transcoded", slog.Any("invocation", bus), slog.Int("payloadBytes", len(bus.Payload)))
	return h.build(bus)
}

func (h *Handler) run(ctx context.Context, logger *slog.Logger, bus *filter.Bus) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("recovered from panic", slog.Any("panic", r))
			err = filter.NewTranscodeError("panic: %v", r)
		}
	}()
	return processor.Process(ctx, logger, bus, h.chain()...)
}

// chain builds fresh stage instances so concurrent invocations never share a stage logger.
func (h *Handler) chain() []processor.Processor {
	return []processor.Processor{
		processor.NewStatusGateProcessor(h.statusGate),
		processor.NewOriginResolverProcessor(h.origin),
		processor.NewNegotiatorProcessor(h.target.ContentType()),
		processor.NewFetchProcessor(h.fetcher),
		processor.NewTranscodeProcessor(h.transcoder, h.target, h.quality, h.metrics),
		processor.NewSizeGuardProcessor(h.ceiling),
	}
}

func (h *Handler) logPassThrough(logger *slog.Logger, bus *filter.Bus, pt filter.PassThrough) {
	attrs := []any{slog.Any("invocation", bus), slog.String("outcome", pt.Kind()), slog.Any("error", pt)}
	switch pt.(type) {
	case *filter.FetchError, *filter.TranscodeError:
		logger.Error("serving original response", attrs...)
	case *filter.PayloadTooLargeError:
		logger.Warn("serving original response", attrs...)
	default:
		logger.Debug("serving original response", attrs...)
	}
}

func (h *Handler) passThrough(original models.Response, reason string) models.Response {
	if !h.debugHeader {
		return original
	}
	response := original.Clone()
	response.Headers.Set(HeaderDebugReason, sanitizeReason(reason))
	return response
}

func (h *Handler) build(bus *filter.Bus) models.Response {
	headers := bus.Response.Headers.Clone()
	headers.Set(HeaderContentType, bus.Outcome.ContentType)
	headers.Del(headerContentLength)
	headers.Del(headerContentEncode)
	if h.vary {
		mergeVary(headers)
	}
	if h.debugHeader {
		headers.Set(HeaderDebugReason, "Success: Converted to "+displayName(h.target))
	}

	return models.Response{
		Status:            "200",
		StatusDescription: http.StatusText(http.StatusOK),
		Headers:           headers,
		Body:              bus.Payload,
		BodyEncoding:      models.BodyEncodingBase64,
	}
}

// mergeVary adds Accept to the vary header unless it is already named.
func mergeVary(headers models.Headers) {
	existing := headers.Values(HeaderVary)
	for _, v := range existing {
		for _, field := range strings.Split(v, ",") {
			field = strings.TrimSpace(field)
			if strings.EqualFold(field, "accept") || field == "*" {
				return
			}
		}
	}
	if len(existing) == 0 {
		headers.Set(HeaderVary, "Accept")
		return
	}
	headers.Set(HeaderVary, strings.Join(append(existing, "Accept"), ", "))
}

// sanitizeReason keeps the header value printable and bounded.
func sanitizeReason(reason string) string {
	reason = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return ' '
		}
		return r
	}, reason)
	return helpers.Truncate(reason, maxReasonLength)
}

func displayName(f codec.Format) string {
	switch f {
	case codec.FormatWebP:
		return "WebP"
	default:
		return strings.ToUpper(string(f))
	}
}
