// Package whitelist tracks which note identifiers the current session is
// allowed to lazily create. Only ids minted by an explicit "new note" action
// land here, which stops arbitrary ids typed into the address bar from
// materialising as empty notes. Entries are session-scoped (they live in
// memory, not in the durable store) and are one-time use: the id is removed
// as soon as the note is first persisted.
package whitelist

import "sync"

type Whitelist struct {
	mu    sync.Mutex
	slugs map[string]struct{}
}

func New() *Whitelist {
	return &Whitelist{slugs: make(map[string]struct{})}
}

// Add marks a freshly minted slug as creatable.
func (w *Whitelist) Add(slug string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.slugs[slug] = struct{}{}
}

// Contains reports whether the slug may be lazily created.
func (w *Whitelist) Contains(slug string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.slugs[slug]
	return ok
}

// Remove consumes the entry, typically right after first persistence.
func (w *Whitelist) Remove(slug string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.slugs, slug)
}
