// Package cmd provides the entrypoint for the convai-webhook cli.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/isometry/convai-webhook/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfigFile = "config.yaml"

var (
	configFilePath string
	logger         *slog.Logger
)

type boundEnvVar[T argType] struct {
	Name, Description string
	Env, Short        *string
	Hidden            bool
	// Count registers an int as a repeatable counter flag (-vvv).
	Count             bool
}

// New returns the root command for the convai-webhook.
func New() *cobra.Command {
	return newWithArgs(os.Args[1:])
}

func newWithArgs(args []string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "convai-webhook",
		Short:         "Receives ElevenLabs post-call webhooks and emails the conversation recording",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			config.Global.Mode = strings.TrimSpace(config.Global.Mode)
			logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				AddSource: config.Global.Logging.CallerTrace,
				Level:     slog.LevelWarn - slog.Level(config.Global.Logging.Verbosity*4),
			})).With("mode", config.Global.Mode)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch config.Global.Mode {
			case config.ModeService:
				return runService(cmd)
			case config.ModeLambda:
				return runLambda(cmd)
			default:
				return fmt.Errorf("invalid mode: %s", config.Global.Mode)
			}
		},
	}
	cmd.SetArgs(args)

	// Configuration loading & defaults
	configFilePath = configPath(args)
	if err := errors.Join(
		config.LoadFromFile(configFilePath),
		config.SetDefaults(),
	); err != nil {
		panic(err)
	}

	// Root command flags
	cmd.PersistentFlags().StringVarP(&configFilePath, "config", "c", configFilePath, "path to the configuration file")

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
	bindEnvMap(cmd, envMapInt64)
	bindEnvMap(cmd, envMapDuration)
	bindEnvMap(cmd, envMapStringSlice)
	bindEnvMap(cmd, svcEnvMapString)
	bindEnvMap(cmd, svcEnvMapInt)
	bindEnvMap(cmd, svcEnvMapInt64)
	bindEnvMap(cmd, svcEnvMapDuration)
	bindEnvMap(cmd, lambdaEnvMapString)
}
