package cmd

import (
	"fmt"

	"github.com/localdex/engine/pkg/engine"
	"github.com/spf13/cobra"
)

// newHealthCmd checks that the configured data directory can be opened as
// a valid engine state (store.db and the full-text index both open
// cleanly), without running a scan.
func newHealthCmd(flags *cmdFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the local index can be opened",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEngine(flags, func(e *engine.Engine) error {
				stats := e.GetIndexStats()

				fmt.Printf("ok: %d folders, %d bytes indexed\n", stats.FolderCount, stats.TotalBytes) //nolint:forbidigo // CLI output is intentional

				return nil
			})
		},
	}
}
