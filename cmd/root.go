// Package cmd provides the entrypoint for the aws-image-optimizer cli.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// configFileEnv names the environment variable holding the configuration file path.
const configFileEnv = "IMAGE_OPTIMIZER_CONFIG"

var logger *slog.Logger

type boundEnvVar[T argType] struct {
	Name, Description string
	Env, Short        *string
	Hidden            bool
	// Count binds an int as a repeatable counter flag (-vvv) instead of a numeric value.
	Count bool
}

// New returns the root command for the aws-image-optimizer.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "aws-image-optimizer",
		Short:         "Serve WebP variants of images to negotiating clients from a CloudFront origin-response trigger",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			config.Global.Mode = strings.TrimSpace(config.Global.Mode)
			logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				AddSource: config.Global.Logging.CallerTrace,
				Level:     slog.LevelWarn - slog.Level(config.Global.Logging.Verbosity*4),
			})).With("mode", config.Global.Mode)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch config.Global.Mode {
			case config.ModeService:
				return cmdService().RunE(cmd, args)
			case config.ModeLambda:
				return cmdLambda().RunE(cmd, args)
			default:
				return fmt.Errorf("invalid mode: %s", config.Global.Mode)
			}
		},
	}

	// Configuration loading & defaults
	configFilePath := "config.yaml"
	if v, found := os.LookupEnv(configFileEnv); found {
		configFilePath = v
	}
	if err := errors.Join(
		config.LoadFromFile(configFilePath),
		config.SetDefaults(),
	); err != nil {
		panic(err)
	}

	// Dynamic flags
	setupDynamicFlags(cmd)

	// Subcommands
	cmd.AddCommand(
		cmdLambda(),
		cmdService(),
	)

	return cmd
}

func setupDynamicFlags(cmd *cobra.Command) {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(replacer)

	bindEnvMap(cmd, envMapString)
	bindEnvMap(cmd, envMapBool)
	bindEnvMap(cmd, envMapInt)
	bindEnvMap(cmd, envMapDuration)
	bindEnvMap(cmd, envMapStringSlice)
}
