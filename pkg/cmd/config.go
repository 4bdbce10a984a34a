package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// appConfig holds configuration read from --config (default
// runtime/config.yml) and environment variables, layered under the
// command-line flags in cmdFlags.
type appConfig struct {
	Engine EngineConfig `mapstructure:"engine"`
}

// EngineConfig configures where the engine keeps its on-disk state.
type EngineConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// defaultDataDir is used when neither --config nor ENGINE_DATA_DIR supplies
// one.
const defaultDataDir = "./.localdex"

// loadConfig loads the application configuration from the specified file path and environment variables.
// It uses the provided args structure to determine the configuration path.
// The function returns a pointer to the appConfig structure and an error if something goes wrong.
func loadConfig(flags *cmdFlags) (*appConfig, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())

	v.SetDefault("engine.data_dir", defaultDataDir)

	if flags.ConfigPath != "" {
		v.SetConfigFile(flags.ConfigPath)

		if err := v.ReadInConfig(); err != nil {
			if flags.ConfigPath != defaultConfigPath {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg appConfig

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if flags.DataDir != "" {
		cfg.Engine.DataDir = flags.DataDir
	}

	slog.Debug("Config loaded", slog.Any("config", cfg))

	return &cfg, nil
}
