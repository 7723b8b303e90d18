package cmd

import (
	"context"
	"log/slog"

	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/codec"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/config"
	awsctl "github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/controllers/aws"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/handler"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/handler/processor"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/runtime"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/storage"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/telemetry"
	"github.com/pkg/errors"
)

// app holds the components shared by every invocation.
type app struct {
	runtime  *runtime.Runtime
	metrics  *telemetry.Metrics
	shutdown func(context.Context) error
}

func (a *app) Close(ctx context.Context) {
	if err := a.shutdown(ctx); err != nil {
		logger.Warn("failed to flush traces", slog.Any("error", err))
	}
	codec.Shutdown()
}

func setup(ctx context.Context) (*app, error) {
	logger.Debug("creating AWS controller...")
	awsController, err := awsctl.NewController(
		awsctl.WithLogger(logger.With("component", "aws-controller")),
		awsctl.WithContext(ctx))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create AWS controller")
	}

	if err = loadRemoteConfig(ctx, awsController); err != nil {
		return nil, err
	}
	if err = config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	shutdown, err := telemetry.SetupTracing(ctx, telemetry.TraceConfig{
		ServiceName:  config.Telemetry.ServiceName,
		Exporter:     config.Telemetry.Exporter,
		OTLPEndpoint: config.Telemetry.OTLPEndpoint,
		OTLPInsecure: config.Telemetry.OTLPInsecure,
	}, logger.With("component", "telemetry"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to setup tracing")
	}

	fetcher, err := newFetcher(awsController)
	if err != nil {
		return nil, err
	}

	target, err := codec.ParseFormat(config.Filter.TargetFormat)
	if err != nil {
		return nil, errors.Wrap(err, "invalid target format")
	}
	transcoder, err := codec.New(codec.WithMaxPixels(config.Filter.MaxPixels))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create transcoder")
	}

	metrics := telemetry.NewMetrics()

	logger.Debug("creating negotiation handler...")
	hdl, err := handler.NewHandler(
		handler.WithFetcher(fetcher),
		handler.WithTranscoder(transcoder),
		handler.WithMetrics(metrics),
		handler.WithTarget(target, config.Filter.Quality),
		handler.WithSizeCeiling(config.Filter.SizeCeiling),
		handler.WithStatusGate(config.Filter.StatusGate),
		handler.WithOrigin(processor.OriginSettings{
			Mode:                config.Origin.Mode,
			Bucket:              config.Origin.Bucket,
			BaseURL:             config.Origin.BaseURL,
			DistributionDomains: config.Origin.DistributionDomains,
		}),
		handler.WithDebugHeader(!config.Filter.DisableDebugHeader),
		handler.WithVary(!config.Filter.DisableVary),
		handler.WithLogger(logger.With("component", "handler")))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create negotiation handler")
	}

	logger.Debug("creating runtime...")
	return &app{
		runtime:  runtime.NewRuntime(hdl, runtime.WithLogger(logger.With("component", "runtime"))),
		metrics:  metrics,
		shutdown: shutdown,
	}, nil
}

// loadRemoteConfig replaces the configuration with the YAML document stored in the SSM parameter, if any.
func loadRemoteConfig(ctx context.Context, awsController *awsctl.Controller) error {
	key := config.Lambda.SSMParameter
	if key == "" {
		return nil
	}
	logger.Debug("loading configuration from SSM...", slog.String("parameter", key))
	document, err := awsController.GetParameter(ctx, key, true)
	if err != nil {
		return errors.Wrap(err, "failed to load configuration from SSM")
	}
	if err = config.Load([]byte(document)); err != nil {
		return errors.Wrapf(err, "SSM parameter %s", key)
	}
	config.Lambda.SSMParameter = key
	return nil
}

func newFetcher(awsController *awsctl.Controller) (storage.Fetcher, error) {
	var bucket storage.Fetcher
	switch config.Storage.Backend {
	case config.StorageBackendMinio:
		m, err := storage.NewMinioFetcher(storage.MinioConfig{
			Endpoint: config.Storage.Minio.Endpoint,
			Access:   config.Storage.Minio.AccessKey,
			Secret:   config.Storage.Minio.SecretKey,
			UseSSL:   config.Storage.Minio.UseSSL,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create minio fetcher")
		}
		bucket = m
	default:
		bucket = storage.NewS3Fetcher(awsController)
	}
	return storage.Router{
		Bucket: bucket,
		URL:    storage.NewHTTPFetcher(config.Storage.HTTPTimeout),
	}, nil
}
