// Package filter provides the per-invocation state shared by the negotiation stages and the pass-through error taxonomy.
package filter

import (
	"log/slog"

	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/models"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/storage"
)

// Bus carries the state of a single invocation through the stages.
// Response is the original response and is never mutated by a stage.
type Bus struct {
	Distribution string
	Request      models.Request
	Response     models.Response

	Status    int
	Location  storage.Location
	KeyPrefix string
	Key       string
	Source    []byte
	Outcome   TranscodeOutcome
	Payload   string
}

// NewBus creates a bus for the given exchange.
func NewBus(exchange *models.CloudFront) *Bus {
	return &Bus{
		Distribution: exchange.Config.DistributionDomainName,
		Request:      exchange.Request,
		Response:     exchange.Response,
	}
}

// LogValue returns the attributes describing the invocation.
func (b *Bus) LogValue() slog.Value {
	logAttr := make([]slog.Attr, 2, 5)
	logAttr[0] = slog.String("uri", b.Request.URI)
	logAttr[1] = slog.String("status", b.Response.Status)
	if b.Location.Bucket != "" {
		logAttr = append(logAttr, slog.String("bucket", b.Location.Bucket))
	}
	if b.Location.BaseURL != "" {
		logAttr = append(logAttr, slog.String("baseURL", b.Location.BaseURL))
	}
	if b.Outcome.ContentType != "" {
		logAttr = append(logAttr, slog.String("contentType", b.Outcome.ContentType))
	}
	return slog.GroupValue(logAttr...)
}

// TranscodeOutcome is the result of the transcode stage: either a body with its content type, or a failure.
type TranscodeOutcome struct {
	Body        []byte
	ContentType string
	Err         error
}

// Succeeded reports whether the outcome carries a transcoded body.
func (o TranscodeOutcome) Succeeded() bool {
	return o.Err == nil && o.Body != nil
}
