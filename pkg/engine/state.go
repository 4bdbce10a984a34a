package engine

// State is one state of the engine's scan/watch state machine (spec §4.5).
type State string

const (
	StateIdle          State = "idle"
	StateScanning      State = "scanning"
	StateIndexing      State = "indexing"
	StateFinalizing    State = "finalizing"
	StateWatching      State = "watching"
	StateClearingIndex State = "clearing_index"
)
