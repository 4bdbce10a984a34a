// Command localdex is the CLI entry point for the local, offline
// document-search engine.
package main

import (
	"os"

	"github.com/localdex/engine/pkg/cmd"
)

// version is set via -ldflags "-X main.version=..." at build time.
var version = "dev"

func main() {
	root := cmd.InitCommand(cmd.BuildInfo{
		Version: version,
		AppName: "localdex",
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
