package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/monotes/monotes/internal/client/broadcast"
	"github.com/monotes/monotes/internal/client/models"
)

// newNote mints a fresh note id and opens it. Nothing is written to the
// database until the first edit.
func (a *App) newNote(ctx context.Context) error {
	n, err := a.notes.Create(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("New note %s (unsaved until first edit)\n", n.ID)
	return a.openNote(ctx, n.ID)
}

// openNote makes the note the active one: the previous note is flushed and
// detached, a broadcast view is attached so edits from elsewhere surface, and
// the engine baseline is reset to the loaded content.
func (a *App) openNote(ctx context.Context, id string) error {
	n, err := a.notes.Open(ctx, id)
	if err != nil {
		return err
	}

	a.closeActiveView(ctx)

	view := broadcast.NewView(a.bus, id, func(content string) {
		fmt.Printf("\n[note %s updated in another view]\n", id)
	})

	a.mu.Lock()
	a.activeID = id
	a.activeView = view
	a.mu.Unlock()

	a.engine.Observe(n.ID, n.Content, n.CloudStatus)
	a.registry.Register(id, a.engine.SyncNow)

	fmt.Printf("--- %s [%s] ---\n", n.ID, n.CloudStatus)
	if n.Content != "" {
		fmt.Println(n.Content)
	}
	return nil
}

// closeActiveView flushes pending edits of the active note, then detaches it.
func (a *App) closeActiveView(ctx context.Context) {
	a.mu.Lock()
	id, view := a.activeID, a.activeView
	a.activeID, a.activeView = "", nil
	a.mu.Unlock()

	if id == "" {
		return
	}

	if err := a.registry.FlushActive(ctx); err != nil {
		a.log.Warn(ctx, "flush on close failed", "note", id, "error", err)
	}
	a.registry.Unregister()
	a.engine.Detach()
	if view != nil {
		view.Close()
	}
}

func (a *App) activeNoteID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.activeID
}

// editNote reads new content for the active note and persists it. The save
// both feeds the sync engine and broadcasts to sibling views of the note.
func (a *App) editNote(ctx context.Context) error {
	id := a.activeNoteID()
	if id == "" {
		fmt.Println("No note open. Use 'new' or 'open <id>' first.")
		return nil
	}

	content, err := GetMultiline(a.reader, "Enter note content", os.Stdout)
	if err != nil {
		return err
	}

	n, err := a.notes.Save(ctx, id, content)
	if err != nil {
		return err
	}

	a.mu.Lock()
	view := a.activeView
	a.mu.Unlock()
	if view != nil {
		view.Broadcast(n.Content)
	}

	fmt.Printf("Saved locally [%s]\n", n.CloudStatus)
	return nil
}

// saveNote is the manual save: it flushes the active note immediately instead
// of waiting out the quiet period.
func (a *App) saveNote(ctx context.Context) error {
	if a.activeNoteID() == "" {
		fmt.Println("No note open.")
		return nil
	}
	if err := a.registry.FlushActive(ctx); err != nil {
		return err
	}
	fmt.Println("Flushed.")
	return nil
}

func preview(content string) string {
	line := content
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if len(line) > 60 {
		line = line[:57] + "..."
	}
	if line == "" {
		line = "(empty)"
	}
	return line
}

func printNotes(list []models.Note) {
	if len(list) == 0 {
		fmt.Println("No notes.")
		return
	}
	for _, n := range list {
		ts := time.UnixMilli(n.UpdatedAt).Format("2006-01-02 15:04")
		fmt.Printf("%s  %-10s  %s  %s\n", n.ID, n.CloudStatus, ts, preview(n.Content))
	}
}

func (a *App) listNotes(ctx context.Context) error {
	list, err := a.notes.List(ctx)
	if err != nil {
		return err
	}
	printNotes(list)
	return nil
}

func (a *App) searchNotes(ctx context.Context, q string) error {
	list, err := a.notes.Search(ctx, q)
	if err != nil {
		return err
	}
	printNotes(list)
	return nil
}

// deleteNote removes a note locally and soft-deletes its remote counterpart.
func (a *App) deleteNote(ctx context.Context, id string) error {
	if id == a.activeNoteID() {
		a.closeActiveView(ctx)
	}
	if err := a.notes.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", id)
	return nil
}

// syncToCloud is the explicit first-sync confirmation for the active note.
func (a *App) syncToCloud(ctx context.Context) error {
	id := a.activeNoteID()
	if id == "" {
		fmt.Println("No note open.")
		return nil
	}
	if err := a.notes.SyncToCloud(ctx, id); err != nil {
		return err
	}
	fmt.Println("Synced to cloud.")
	return nil
}

// sweepAll pushes every sync-eligible note that drifted ahead of its remote
// copy.
func (a *App) sweepAll(ctx context.Context) error {
	n, err := a.notes.SweepAll(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Synced %d note(s).\n", n)
	return nil
}

func (a *App) printStatus(ctx context.Context) error {
	a.mu.Lock()
	mode, id := a.mode, a.activeID
	a.mu.Unlock()

	fmt.Printf("Connectivity: %s\n", mode)
	if user := a.remote.CurrentUserID(); user != "" {
		fmt.Printf("Logged in as: %s\n", user)
	} else {
		fmt.Println("Not logged in.")
	}

	if id == "" {
		return nil
	}
	fmt.Printf("Open note: %s\n", id)
	if n, err := a.notes.Open(ctx, id); err == nil {
		fmt.Printf("Cloud status: %s\n", n.CloudStatus)
	}
	switch {
	case a.engine.Syncing():
		fmt.Println("Sync: in progress")
	case a.engine.SyncComplete():
		fmt.Println("Sync: complete")
	}
	return nil
}
