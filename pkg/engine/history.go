package engine

import "github.com/localdex/engine/pkg/core"

// GetSearchHistory returns up to limit past queries, most recent first
// (limit <= 0 returns every retained entry) (spec §6: get_search_history).
func (e *Engine) GetSearchHistory(limit int) ([]core.SearchHistoryEntry, error) {
	entries, err := e.persist.LoadSearchHistory()
	if err != nil {
		return nil, err
	}

	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}

	return entries, nil
}

// ClearSearchHistory deletes every recorded query (spec §6:
// clear_search_history).
func (e *Engine) ClearSearchHistory() error {
	return e.persist.ClearSearchHistory()
}

// RemoveFromSearchHistory deletes every history entry matching query
// (spec §6: remove_from_search_history).
func (e *Engine) RemoveFromSearchHistory(query string) error {
	return e.persist.RemoveSearchHistoryEntry(query)
}

// GetPDFQueueStatus reports the background PDF queue's current progress
// (spec §6: get_pdf_queue_status).
func (e *Engine) GetPDFQueueStatus() PDFQueueStatus {
	return e.queue.Status()
}
