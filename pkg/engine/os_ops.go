package engine

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// OpenFile launches the OS default handler for path (spec §6: open_file,
// "delegated to OS").
func (e *Engine) OpenFile(path string) error {
	return openWithOS(path)
}

// ShowInFolder opens the OS file manager with path selected, falling back
// to opening its parent directory on platforms without a "reveal" verb
// (spec §6: show_in_folder).
func (e *Engine) ShowInFolder(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path %s: %w", path, err)
	}

	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", "-R", abs).Run()
	case "windows":
		return exec.Command("explorer", "/select,", abs).Run()
	default:
		return openWithOS(filepath.Dir(abs))
	}
}

// DeleteFile removes path from disk and, if it was indexed, from the Store,
// the Index, and persistence (spec §6: delete_file).
func (e *Engine) DeleteFile(path string) error {
	e.mailbox.Lock()
	defer e.mailbox.Unlock()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path %s: %w", path, err)
	}

	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("delete %s: %w", abs, err)
	}

	doc, ok := e.store.Get(abs)
	if !ok {
		return nil
	}

	e.store.Remove(abs)

	if err := e.index.Remove(doc.ID); err != nil {
		return fmt.Errorf("remove %s from index: %w", abs, err)
	}

	return e.persist.DeleteDocument(abs)
}

// openWithOS invokes the platform's default-application launcher for path.
func openWithOS(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	return nil
}
