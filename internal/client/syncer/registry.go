package syncer

import (
	"context"
	stdsync "sync"
)

// Registry is the process-wide slot holding the active note's flush function.
// One note is open at a time; sibling views (a sidebar about to navigate
// away, a manual-save keybinding) use FlushActive to push pending edits out
// before changing routes. The slot is cleared when the note's view closes.
type Registry struct {
	mu     stdsync.Mutex
	noteID string
	flush  func(ctx context.Context) error
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register installs the flush function for the note now being viewed,
// replacing whatever was registered before.
func (r *Registry) Register(noteID string, flush func(ctx context.Context) error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.noteID = noteID
	r.flush = flush
}

// Unregister clears the slot.
func (r *Registry) Unregister() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.noteID = ""
	r.flush = nil
}

// ActiveNoteID returns the note currently registered, or "".
func (r *Registry) ActiveNoteID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.noteID
}

// FlushActive invokes the registered flush function, if any.
func (r *Registry) FlushActive(ctx context.Context) error {
	r.mu.Lock()
	flush := r.flush
	r.mu.Unlock()

	if flush == nil {
		return nil
	}
	return flush(ctx)
}
