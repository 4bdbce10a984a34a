package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/localdex/engine/pkg/core"
	"github.com/localdex/engine/pkg/engine"
	"github.com/spf13/cobra"
)

// newWatchCmd starts the Change Watcher and blocks, printing file-change
// and progress events until interrupted (spec: start_watching,
// stop_watching).
func newWatchCmd(flags *cmdFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch indexed folders and re-index changes until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEngine(flags, func(e *engine.Engine) error {
				if err := e.StartWatching(); err != nil {
					return err
				}

				events, unsubscribe := e.Events()
				defer unsubscribe()

				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

				fmt.Println("watching, press ctrl-c to stop") //nolint:forbidigo // CLI output is intentional

				for {
					select {
					case <-sigCh:
						return e.StopWatching()
					case ev, ok := <-events:
						if !ok {
							return nil
						}

						printEvent(ev)
					}
				}
			})
		},
	}
}

func printEvent(ev core.Event) {
	switch ev.Type {
	case core.EventFileChanged:
		fmt.Printf("%s %s\n", ev.ChangeType, ev.Path) //nolint:forbidigo // CLI output is intentional
	case core.EventPDFIndexed:
		fmt.Printf("pdf indexed %s\n", ev.Path) //nolint:forbidigo // CLI output is intentional
	case core.EventPDFSkipped:
		fmt.Printf("pdf skipped %s: %s\n", ev.Path, ev.Reason) //nolint:forbidigo // CLI output is intentional
	case core.EventPDFComplete:
		fmt.Printf("pdf queue drained: %d indexed, %d skipped\n", ev.Indexed, ev.Skipped) //nolint:forbidigo // CLI output is intentional
	}
}
