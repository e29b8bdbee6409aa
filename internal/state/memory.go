package state

// MemoryStore is an in-memory implementation of [Store].
//
// It is used in tests and for state-less runs where nothing should touch
// the filesystem. Load returns a copy, so callers can mutate the result
// without affecting the store.
type MemoryStore struct {
	statuses map[string]string
}

// NewMemoryStore creates an empty in-memory [Store].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{statuses: map[string]string{}}
}

// Load returns a copy of the current mapping. Never returns an error.
func (m *MemoryStore) Load() (map[string]string, error) {
	out := make(map[string]string, len(m.statuses))
	for k, v := range m.statuses {
		out[k] = v
	}
	return out, nil
}

// Save replaces the stored mapping with a copy of the given one.
func (m *MemoryStore) Save(statuses map[string]string) error {
	out := make(map[string]string, len(statuses))
	for k, v := range statuses {
		out[k] = v
	}
	m.statuses = out
	return nil
}
