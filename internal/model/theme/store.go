package theme

// Entry pairs a theme identifier with its palette for listing endpoints.
type Entry struct {
	ID      ID      `json:"id"`
	Palette Palette `json:"palette"`
}

// Store exposes theme lookup for HTTP handlers.
type Store interface {
	List() []Entry
	FindByID(id string) (Entry, bool)
}

// MemoryStore implements Store over a fixed slice.
type MemoryStore struct {
	items []Entry
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied entries.
func NewMemoryStore(items []Entry) *MemoryStore {
	return &MemoryStore{items: append([]Entry(nil), items...)}
}

// Seed returns every built-in theme in selector order.
func Seed() []Entry {
	entries := make([]Entry, 0, len(palettes))
	for _, id := range All() {
		entries = append(entries, Entry{ID: id, Palette: Resolve(id)})
	}
	return entries
}

// List returns a copy of the stored entries.
func (s *MemoryStore) List() []Entry {
	return append([]Entry(nil), s.items...)
}

// FindByID looks up an entry, accepting any casing of the identifier.
func (s *MemoryStore) FindByID(id string) (Entry, bool) {
	parsed, ok := Parse(id)
	if !ok {
		return Entry{}, false
	}
	for _, item := range s.items {
		if item.ID == parsed {
			return item, true
		}
	}
	return Entry{}, false
}
