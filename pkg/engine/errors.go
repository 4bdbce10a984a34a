package engine

import "errors"

// Engine-level sentinel errors, layered on top of the taxonomy in
// pkg/core/errors.go for conditions specific to command sequencing rather
// than a single document, following the same pattern of small, wrapped
// sentinels as ErrNotFound and the others in pkg/core/errors.go.
var (
	// ErrAlreadyWatching is returned by StartWatching when the watcher is
	// already running.
	ErrAlreadyWatching = errors.New("already watching")
	// ErrNotWatching is returned by StopWatching when the watcher is not
	// running.
	ErrNotWatching = errors.New("not watching")
)
