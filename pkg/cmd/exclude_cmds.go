package cmd

import (
	"fmt"

	"github.com/localdex/engine/pkg/engine"
	"github.com/spf13/cobra"
)

// newExcludeCmd excludes one or more directories from indexing (spec:
// add_excluded_folder / exclude_folders_batch).
func newExcludeCmd(flags *cmdFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "exclude <folder>...",
		Short: "Exclude folders from the index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(flags, func(e *engine.Engine) error {
				if len(args) == 1 {
					return e.AddExcludedFolder(args[0])
				}

				return e.ExcludeFoldersBatch(args)
			})
		},
	}
}

// newIncludeCmd removes the exclusion on one or more directories (spec:
// remove_excluded_folder / include_folders_batch).
func newIncludeCmd(flags *cmdFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "include <folder>...",
		Short: "Remove an exclusion on folders",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(flags, func(e *engine.Engine) error {
				if len(args) == 1 {
					return e.RemoveExcludedFolder(args[0])
				}

				return e.IncludeFoldersBatch(args)
			})
		},
	}
}

// newExcludedCmd lists every currently excluded directory (spec:
// get_excluded_folders).
func newExcludedCmd(flags *cmdFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "excluded",
		Short: "List excluded folders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEngine(flags, func(e *engine.Engine) error {
				for _, p := range e.GetExcludedFolders() {
					fmt.Println(p) //nolint:forbidigo // CLI output is intentional
				}

				return nil
			})
		},
	}
}
