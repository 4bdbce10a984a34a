package cmd

import (
	"fmt"
	"log/slog"

	"github.com/localdex/engine/pkg/engine"
)

// withEngine loads configuration, opens the engine against its configured
// data directory, runs fn, and always closes the engine afterward even if
// fn returns an error.
func withEngine(flags *cmdFlags, fn func(e *engine.Engine) error) error {
	if err := initLogger(flags); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	e, err := engine.New(cfg.Engine.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}

	defer func() {
		if closeErr := e.Close(); closeErr != nil {
			slog.Warn("failed to close engine cleanly", "error", closeErr)
		}
	}()

	return fn(e)
}
