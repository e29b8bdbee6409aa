package state

// Store persists the mapping from target name to last-notified status.
//
// Implementations do not need to be safe for concurrent use; the watcher
// is the only caller and runs a single sequential loop.
type Store interface {
	// Load returns the persisted mapping. A missing backing file is not an
	// error and yields an empty mapping; read or parse failures return an
	// error alongside an empty mapping so the caller can warn and continue.
	Load() (map[string]string, error)

	// Save overwrites the persisted mapping with the full current state.
	Save(statuses map[string]string) error
}
