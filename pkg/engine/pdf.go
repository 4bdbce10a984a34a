package engine

import (
	"log/slog"
	"path/filepath"

	"github.com/localdex/engine/pkg/core"
)

// awaitPDFDrain waits for one generation of the background PDF queue to
// finish (by draining or by a later Reset/Shutdown cancelling it) and
// emits the pdf-complete event with the totals accumulated along the way
// (spec §4.5: "On queue drain, emit pdf-complete with totals").
func (e *Engine) awaitPDFDrain(done <-chan struct{}, total int) {
	<-done

	e.pdfMu.Lock()
	indexed := e.pdfIndexed
	skipped := e.pdfSkipped
	skippedFiles := e.pdfSkippedFiles
	e.pdfMu.Unlock()

	e.bus.Publish(core.Event{
		Type: core.EventPDFComplete, Total: total, Indexed: indexed, Skipped: skipped, SkippedFiles: skippedFiles,
	})
}

// processBackgroundPDF is the background queue's per-item handler: it
// extracts one PDF and upserts it, or records a skip, then emits the
// corresponding event (spec §4.5: pdf-indexed / pdf-skipped).
func (e *Engine) processBackgroundPDF(path string) {
	if _, ok := e.rootContaining(path); !ok {
		return
	}

	if e.excl.IsExcluded(path) {
		return
	}

	e.mailbox.Lock()
	doc, err := e.indexOneFile(path)
	e.mailbox.Unlock()

	if err != nil {
		reason := err.Error()

		e.pdfMu.Lock()
		e.pdfSkipped++
		e.pdfSkippedFiles = append(e.pdfSkippedFiles, core.SkippedFile{Path: path, Name: filepath.Base(path), Reason: reason})
		e.pdfMu.Unlock()

		slog.Info("engine: pdf skipped", "path", path, "reason", reason)

		e.bus.Publish(core.Event{Type: core.EventPDFSkipped, Path: path, Reason: reason})

		return
	}

	e.pdfMu.Lock()
	e.pdfIndexed++
	completed := e.pdfIndexed + e.pdfSkipped
	e.pdfMu.Unlock()

	e.bus.Publish(core.Event{Type: core.EventPDFProgress, Path: path, Completed: completed})
	e.bus.Publish(core.Event{Type: core.EventPDFIndexed, Path: doc.Path})
}
