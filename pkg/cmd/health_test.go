package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, dataDir string, args ...string) error {
	t.Helper()

	cmd := InitCommand(BuildInfo{AppName: "localdex"})
	cmd.SetArgs(append(args, "--data-dir", dataDir))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	return cmd.Execute()
}

func TestHealthCmd(t *testing.T) {
	dataDir := t.TempDir()

	err := runCLI(t, dataDir, "health")
	require.NoError(t, err)
}

func TestAddScanSearch(t *testing.T) {
	docsDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(docsDir, "budget.txt"), []byte("quarterly budget projections"), 0o644))

	dataDir := t.TempDir()

	require.NoError(t, runCLI(t, dataDir, "add", docsDir))
	require.NoError(t, runCLI(t, dataDir, "search", "budget"))
	require.NoError(t, runCLI(t, dataDir, "status"))
	require.NoError(t, runCLI(t, dataDir, "folders"))

	err := runCLI(t, dataDir, "clear")
	assert.ErrorContains(t, err, "--yes")

	require.NoError(t, runCLI(t, dataDir, "clear", "--yes"))
}
