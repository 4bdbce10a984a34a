package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// defaultConfigPath is used when --config is not given; unlike an
// explicitly requested path, a missing default config is not an error.
const defaultConfigPath = "runtime/config.yml"

// BuildInfo holds the build metadata injected at compile time.
type BuildInfo struct {
	Version string
	AppName string
}

type cmdFlags struct {
	version    string
	appName    string
	ConfigPath string `mapstructure:"config"`
	LogLevel   string `mapstructure:"log_level"`
	TextFormat bool   `mapstructure:"log_text"`
	DataDir    string `mapstructure:"data_dir"`
}

// InitCommand initializes the root command of the CLI application with its subcommands and flags.
func InitCommand(build BuildInfo) cobra.Command {
	flags := cmdFlags{
		version: build.Version,
		appName: build.AppName,
	}

	cmd := cobra.Command{
		Use:     flags.appName,
		Version: flags.version,
		Short:   "Local, offline full-text search over your documents",
		Long:    "localdex indexes the document folders you point it at and lets you search them, fully offline.",
	}

	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&flags.TextFormat, "log-text", true, "log in text format, otherwise JSON")
	cmd.PersistentFlags().StringVar(&flags.ConfigPath, "config", defaultConfigPath, "path to the configuration file")
	cmd.PersistentFlags().StringVar(&flags.DataDir, "data-dir", "", "override the configured data directory")

	for _, name := range []string{"log_level", "log_text", "data_dir"} {
		if err := viper.BindEnv(name); err != nil {
			slog.Error("failed to bind env var", "name", name, "error", err)
		}
	}

	viper.AutomaticEnv()

	if err := viper.Unmarshal(&flags); err != nil {
		slog.Error("failed to unmarshal env vars", "error", err)
	}

	cmd.AddCommand(
		newAddCmd(&flags),
		newRemoveCmd(&flags),
		newScanCmd(&flags),
		newFoldersCmd(&flags),
		newTreeCmd(&flags),
		newExcludeCmd(&flags),
		newIncludeCmd(&flags),
		newExcludedCmd(&flags),
		newSearchCmd(&flags),
		newHistoryCmd(&flags),
		newFilesCmd(&flags),
		newOpenCmd(&flags),
		newRevealCmd(&flags),
		newDeleteCmd(&flags),
		newWatchCmd(&flags),
		newStatusCmd(&flags),
		newLoadCmd(&flags),
		newSaveCmd(&flags),
		newClearCmd(&flags),
		newHealthCmd(&flags),
	)

	return cmd
}
