package cmd

import (
	"fmt"

	"github.com/localdex/engine/pkg/engine"
	"github.com/spf13/cobra"
)

// newAddCmd adds one or more folders to the index and runs an initial scan
// of each (spec: add_folders).
func newAddCmd(flags *cmdFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "add <folder>...",
		Short: "Add folders to the index and scan them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(flags, func(e *engine.Engine) error {
				summaries, err := e.AddFolders(args)
				if err != nil {
					return err
				}

				for _, s := range summaries {
					fmt.Printf("%s\t%d files\n", s.Path, s.FileCount) //nolint:forbidigo // CLI output is intentional
				}

				return nil
			})
		},
	}
}

// newRemoveCmd removes a previously added root folder and everything
// indexed under it (spec: remove_folder).
func newRemoveCmd(flags *cmdFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <folder>",
		Short: "Remove a folder from the index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(flags, func(e *engine.Engine) error {
				return e.RemoveFolder(args[0])
			})
		},
	}
}

// newScanCmd re-scans an already-added root folder (spec: scan_folder).
func newScanCmd(flags *cmdFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <folder>",
		Short: "Re-scan an already-added folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(flags, func(e *engine.Engine) error {
				files, err := e.ScanFolder(args[0])
				if err != nil {
					return err
				}

				fmt.Printf("indexed %d files\n", len(files)) //nolint:forbidigo // CLI output is intentional

				return nil
			})
		},
	}
}

// newFoldersCmd lists every current root folder (spec: get_indexed_folders).
func newFoldersCmd(flags *cmdFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "folders",
		Short: "List indexed root folders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEngine(flags, func(e *engine.Engine) error {
				for _, f := range e.GetIndexedFolders() {
					fmt.Printf("%s\t%d files\n", f.Path, f.FileCount) //nolint:forbidigo // CLI output is intentional
				}

				return nil
			})
		},
	}
}

// newTreeCmd prints the folder tree of every root, annotated with
// exclusion state (spec: get_folder_tree).
func newTreeCmd(flags *cmdFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print the indexed folder tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEngine(flags, func(e *engine.Engine) error {
				for _, root := range e.GetFolderTree() {
					printFolderTree(root, 0)
				}

				return nil
			})
		},
	}
}

func printFolderTree(node *engine.FolderTreeNode, depth int) {
	marker := ""
	if node.IsExcluded {
		marker = " (excluded)"
	}

	fmt.Printf("%*s%s\t%d files%s\n", depth*2, "", node.Name, node.FileCount, marker) //nolint:forbidigo // CLI output is intentional

	for _, child := range node.Children {
		printFolderTree(child, depth+1)
	}
}

// newLoadCmd reloads the Document Store and Full-Text Index from
// persistence (spec: load_index).
func newLoadCmd(flags *cmdFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Reload the index from disk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEngine(flags, func(e *engine.Engine) error {
				result, err := e.LoadIndex()
				if err != nil {
					return err
				}

				fmt.Printf("loaded %d documents across %d roots\n", result.Documents, result.Roots) //nolint:forbidigo // CLI output is intentional

				return nil
			})
		},
	}
}

// newSaveCmd persists the current root and exclusion configuration (spec:
// save_index).
func newSaveCmd(flags *cmdFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Save the current index configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEngine(flags, func(e *engine.Engine) error {
				return e.SaveIndex()
			})
		},
	}
}

// newClearCmd wipes every document, root, and exclusion (spec: clear_index).
func newClearCmd(flags *cmdFlags) *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the entire index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !confirm {
				return fmt.Errorf("refusing to clear the index without --yes")
			}

			return withEngine(flags, func(e *engine.Engine) error {
				return e.ClearIndex()
			})
		},
	}

	cmd.Flags().BoolVar(&confirm, "yes", false, "confirm clearing the entire index")

	return cmd
}

// newStatusCmd prints index statistics and the background PDF queue's
// progress (spec: get_index_stats, get_pdf_queue_status).
func newStatusCmd(flags *cmdFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show index statistics and background queue progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEngine(flags, func(e *engine.Engine) error {
				stats := e.GetIndexStats()

				fmt.Printf("state: %s\n", e.State())                 //nolint:forbidigo // CLI output is intentional
				fmt.Printf("folders: %d\n", stats.FolderCount)        //nolint:forbidigo // CLI output is intentional
				fmt.Printf("total bytes: %d\n", stats.TotalBytes)     //nolint:forbidigo // CLI output is intentional
				fmt.Printf("pending pdf: %d\n", stats.PendingQueue) //nolint:forbidigo // CLI output is intentional

				for t, n := range stats.CountByType {
					fmt.Printf("  %s: %d\n", t, n) //nolint:forbidigo // CLI output is intentional
				}

				q := e.GetPDFQueueStatus()
				if q.Total > 0 {
					fmt.Printf("pdf queue: %d/%d (%.0f%%)\n", q.Completed, q.Total, q.ProgressPercent) //nolint:forbidigo // CLI output is intentional
				}

				return nil
			})
		},
	}
}
