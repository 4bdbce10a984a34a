package cmd

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/localdex/engine/pkg/engine"
	"github.com/spf13/cobra"
)

// newFilesCmd lists indexed files, optionally filtered by a doublestar glob
// against each file's path (spec: get_all_files).
func newFilesCmd(flags *cmdFlags) *cobra.Command {
	var pattern string

	cmd := &cobra.Command{
		Use:   "files",
		Short: "List every indexed file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEngine(flags, func(e *engine.Engine) error {
				for _, f := range e.GetAllFiles() {
					if pattern != "" {
						matched, err := doublestar.Match(pattern, f.Path)
						if err != nil {
							return fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
						}

						if !matched {
							continue
						}
					}

					fmt.Printf("%s\t%s\t%d bytes\n", f.Path, f.Type, f.Size) //nolint:forbidigo // CLI output is intentional
				}

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&pattern, "pattern", "", "doublestar glob to filter listed paths, e.g. **/*.pdf")

	return cmd
}

// newOpenCmd launches the OS default handler for a file (spec: open_file).
func newOpenCmd(flags *cmdFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "open <file>",
		Short: "Open a file with the OS default application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(flags, func(e *engine.Engine) error {
				return e.OpenFile(args[0])
			})
		},
	}
}

// newRevealCmd opens the OS file manager with a file selected (spec:
// show_in_folder).
func newRevealCmd(flags *cmdFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reveal <file>",
		Short: "Reveal a file in the OS file manager",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(flags, func(e *engine.Engine) error {
				return e.ShowInFolder(args[0])
			})
		},
	}
}

// newDeleteCmd removes a file from disk and the index (spec: delete_file).
func newDeleteCmd(flags *cmdFlags) *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "delete <file>",
		Short: "Delete a file from disk and the index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("refusing to delete %s without --yes", args[0])
			}

			return withEngine(flags, func(e *engine.Engine) error {
				return e.DeleteFile(args[0])
			})
		},
	}

	cmd.Flags().BoolVar(&confirm, "yes", false, "confirm deleting the file")

	return cmd
}
