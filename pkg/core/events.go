package core

// Phase identifies a stage of a scan, matching the progress events emitted
// by the Coordinator (spec §4.5).
type Phase string

const (
	PhaseDiscovering Phase = "discovering"
	PhaseIndexing    Phase = "indexing"
	PhaseFinalizing  Phase = "finalizing"
)

// EventType is the closed set of fire-and-forget events the engine emits.
type EventType string

const (
	EventFileChanged      EventType = "file-changed"
	EventIndexingProgress EventType = "indexing-progress"
	EventPDFProgress      EventType = "pdf-progress"
	EventPDFIndexed       EventType = "pdf-indexed"
	EventPDFSkipped       EventType = "pdf-skipped"
	EventPDFComplete      EventType = "pdf-complete"
)

// FileChangeType labels a file-changed event.
type FileChangeType string

const (
	FileChangeAdded    FileChangeType = "added"
	FileChangeModified FileChangeType = "modified"
	FileChangeRemoved  FileChangeType = "removed"
)

// Event is the tagged union delivered over the engine's EventBus. Only the
// field(s) relevant to Type are populated.
type Event struct {
	Type EventType

	// file-changed
	ChangeType FileChangeType
	Path       string

	// indexing-progress
	Phase   Phase
	Current int
	Total   int
	Name    string

	// pdf-progress / pdf-indexed / pdf-skipped / pdf-complete
	Completed     int
	Reason        string
	Indexed       int
	Skipped       int
	SkippedFiles  []SkippedFile
}
