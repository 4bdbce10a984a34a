package cmd

import (
	"fmt"
	"strings"

	"github.com/localdex/engine/pkg/core"
	"github.com/localdex/engine/pkg/engine"
	"github.com/spf13/cobra"
)

// newSearchCmd runs a query against the Full-Text Index and prints ranked
// results with snippets (spec: search_index).
func newSearchCmd(flags *cmdFlags) *cobra.Command {
	var (
		limit   int
		types   []string
		pathPfx string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			opts := core.SearchOpts{
				Limit: limit,
				Filters: core.SearchFilters{
					PathPrefix: pathPfx,
				},
			}

			for _, t := range types {
				opts.Filters.Types = append(opts.Filters.Types, core.DocType(t))
			}

			return withEngine(flags, func(e *engine.Engine) error {
				results, err := e.SearchIndex(query, opts)
				if err != nil {
					return err
				}

				for _, hit := range results.Hits {
					fmt.Printf("%s  (%s, score %.2f)\n", hit.Path, hit.Type, hit.Score) //nolint:forbidigo // CLI output is intentional

					for _, snippet := range hit.Snippets {
						fmt.Printf("  ...%s...\n", snippet.Text) //nolint:forbidigo // CLI output is intentional
					}
				}

				fmt.Printf("%d results\n", results.Total) //nolint:forbidigo // CLI output is intentional

				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", core.DefaultSearchLimit, "maximum number of results")
	cmd.Flags().StringSliceVar(&types, "type", nil, "restrict to one or more document types (word, pdf, text, ...)")
	cmd.Flags().StringVar(&pathPfx, "path-prefix", "", "restrict results to paths under this prefix")

	return cmd
}

// newHistoryCmd groups the search-history subcommands (spec:
// get_search_history, clear_search_history, remove_from_search_history).
func newHistoryCmd(flags *cmdFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect or modify search history",
	}

	cmd.AddCommand(newHistoryListCmd(flags), newHistoryClearCmd(flags), newHistoryRemoveCmd(flags))

	return cmd
}

func newHistoryListCmd(flags *cmdFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List past queries, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEngine(flags, func(e *engine.Engine) error {
				entries, err := e.GetSearchHistory(limit)
				if err != nil {
					return err
				}

				for _, entry := range entries {
					fmt.Printf("%s\t%d results\t%s\n", entry.Query, entry.ResultCount, entry.Timestamp.Format("2006-01-02 15:04:05")) //nolint:forbidigo // CLI output is intentional
				}

				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of entries (0 for every retained entry)")

	return cmd
}

func newHistoryClearCmd(flags *cmdFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all search history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEngine(flags, func(e *engine.Engine) error {
				return e.ClearSearchHistory()
			})
		},
	}
}

func newHistoryRemoveCmd(flags *cmdFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <query>",
		Short: "Remove every history entry matching a query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(flags, func(e *engine.Engine) error {
				return e.RemoveFromSearchHistory(args[0])
			})
		},
	}
}
