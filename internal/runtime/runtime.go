package runtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/handler"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/helpers"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/models"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/pkg/errors"
)

// maxEventBytes bounds the body accepted in service mode.
const maxEventBytes = 8 << 20

type Option func(*Runtime)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

type Runtime struct {
	handler *handler.Handler
	logger  *slog.Logger
}

// NewRuntime creates a new runtime instance
func NewRuntime(handler *handler.Handler, opts ...Option) *Runtime {
	_inst := &Runtime{handler: handler}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	return _inst
}

// HandleEvent is the Lambda handler for the runtime.
// An error is only returned for events without a record; every other outcome is a response.
func (r *Runtime) HandleEvent(ctx context.Context, event models.Event) (models.Response, error) {
	exchange, ok := event.Exchange()
	if !ok {
		r.logger.Error("rejecting event", slog.Any("error", handler.ErrNoExchange))
		return models.Response{}, handler.ErrNoExchange
	}
	if exchange.Config.RequestID == "" {
		if lc, found := lambdacontext.FromContext(ctx); found {
			exchange.Config.RequestID = lc.AwsRequestID
		}
	}
	return r.handler.Process(ctx, exchange), nil
}

// ServeHTTP accepts an origin-response event as a JSON body and replies with the resulting response.
func (r *Runtime) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.logger.Debug("rejecting HTTP request...", slog.Any("requestor", req.RemoteAddr), "reason", "method not allowed", slog.Any("method", req.Method))
		helpers.RespondError(resp, http.StatusMethodNotAllowed, nil)
		return
	}

	r.logger.Debug("received HTTP request...", slog.Any("requestor", req.RemoteAddr), slog.Any("path", req.URL.Path))
	var event models.Event
	if err := json.NewDecoder(http.MaxBytesReader(resp, req.Body, maxEventBytes)).Decode(&event); err != nil {
		r.logger.Warn("failed to decode event", slog.Any("error", err))
		helpers.RespondError(resp, http.StatusBadRequest, errors.Wrap(err, "invalid event"))
		return
	}

	result, err := r.HandleEvent(req.Context(), event)
	if err != nil {
		helpers.RespondError(resp, http.StatusUnprocessableEntity, err)
		return
	}
	helpers.RespondJSON(resp, http.StatusOK, result)
}
