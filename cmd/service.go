package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/config"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/runtime"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/telemetry"
	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const metricsPath = "/metrics"

// cmdService is the command for running the filter as a standalone HTTP service.
func cmdService() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "service",
		Aliases: []string{"s", "serve", "standalone", "server"},
		Short:   "Serve origin-response events over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			config.Global.Mode = config.ModeService
			logger = logger.With("mode", config.Global.Mode)
			logger.Info("Spawning...")

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := setup(ctx)
			if err != nil {
				return pkgerrors.Wrap(err, "failed to setup service")
			}
			defer a.Close(context.Background())

			logger.Debug("Creating HTTP server...")
			s := &http.Server{
				Handler:      newServeMux(config.Service.Path, a.runtime, a.metrics),
				Addr:         net.JoinHostPort(config.Service.Addr, config.Service.Port),
				WriteTimeout: config.Service.Timeout,
				ReadTimeout:  config.Service.Timeout,
				IdleTimeout:  config.Service.Timeout,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Serving...", "address", s.Addr, "path", config.Service.Path, "timeout", config.Service.Timeout.String())
				errCh <- s.ListenAndServe()
			}()

			select {
			case err = <-errCh:
			case <-ctx.Done():
				logger.Info("Shutting down...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Service.Timeout)
				defer cancel()
				err = s.Shutdown(shutdownCtx)
			}
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		},
	}

	bindEnvMap(cmd, svcEnvMapString)
	bindEnvMap(cmd, svcEnvMapDuration)
	return cmd
}

func newServeMux(path string, rt *runtime.Runtime, metrics *telemetry.Metrics) http.Handler {
	h := http.NewServeMux()
	h.Handle(path, otelhttp.NewHandler(rt, "origin-response"))
	if path != metricsPath {
		h.Handle(metricsPath, metrics.Handler())
	}
	return h
}
