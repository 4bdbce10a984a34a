package core

import "errors"

// Sentinel errors implementing the taxonomy of spec §7. Components wrap
// these with fmt.Errorf("...: %w", ErrX) so callers can errors.Is against
// a stable set regardless of the wrapping context.
var (
	// ErrNotFound is returned when a path does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnsupported is returned for an extension outside the closed set.
	ErrUnsupported = errors.New("unsupported file type")
	// ErrExtractSkipped marks a file that produced no usable content
	// (e.g. an image-only PDF). It is never indexed.
	ErrExtractSkipped = errors.New("extraction skipped")
	// ErrIndexWrite is returned when the full-text engine refuses a
	// commit after the single automatic retry.
	ErrIndexWrite = errors.New("index write failed")
	// ErrCorruptState is returned when startup invariant checks fail and
	// self-repair could not reconcile the store and index.
	ErrCorruptState = errors.New("corrupt persisted state")
	// ErrCancelled marks an explicit cancellation; not surfaced as a
	// user-facing error.
	ErrCancelled = errors.New("cancelled")
	// ErrAlreadyRoot describes a path already covered by an existing root.
	// AddFolders does not return it: such paths are skipped without error.
	ErrAlreadyRoot = errors.New("path already covered by an indexed root")
)
