package settings

import "errors"

// Domain errors for the settings package.
var (
	// ErrConfigFetch is returned when the backend cannot be reached or a
	// fetch fails partway. Recoverable: the previous snapshot stays in
	// effect and the cached one is served when nothing newer exists.
	ErrConfigFetch = errors.New("settings: config fetch failed")

	// ErrNoSnapshot is returned when neither a live fetch nor a cached
	// snapshot is available. Only a first run that has never synced can
	// hit this; it is a genuine blocking condition.
	ErrNoSnapshot = errors.New("settings: no snapshot available")

	// ErrSnapshotStale flags a cached snapshot older than the staleness
	// window. Non-fatal: surfaced to the UI as a hint only.
	ErrSnapshotStale = errors.New("settings: snapshot is stale")
)
