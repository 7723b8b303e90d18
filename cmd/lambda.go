package cmd

import (
	"context"

	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/config"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// cmdLambda is the command for running inside the Lambda@Edge runtime.
func cmdLambda() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "lambda",
		Aliases: []string{"l", "edge"},
		Short:   "Run as a CloudFront origin-response trigger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			config.Global.Mode = config.ModeLambda
			a, err := setup(cmd.Context())
			if err != nil {
				return errors.Wrap(err, "failed to setup lambda")
			}

			logger = logger.With("mode", config.Global.Mode)
			logger.Info("lambda starting...")
			lambda.StartWithOptions(a.runtime.HandleEvent,
				lambda.WithContext(cmd.Context()),
				lambda.WithEnableSIGTERM(func() {
					a.Close(context.Background())
				}))
			return nil
		},
	}

	bindEnvMap(cmd, lambdaEnvMapString)
	return cmd
}
