// Package syncer keeps the note being edited in step with the remote store.
//
// The engine observes (noteID, content, cloudStatus) triples as the editor
// produces them and guarantees that a trailing burst of edits results in
// exactly one remote upsert carrying the final content, that no two upserts
// for the active note are ever in flight at once, and that edits which undo
// back to the last-synced content produce no network traffic at all.
package syncer

import (
	"context"
	"errors"
	"fmt"
	stdsync "sync"
	"time"

	"github.com/monotes/monotes/internal/client/models"
	"github.com/monotes/monotes/internal/common"
	"github.com/monotes/monotes/internal/logging"
)

const (
	// DefaultQuietPeriod is how long the active note must stay untouched
	// before a scheduled sync fires.
	DefaultQuietPeriod = 3 * time.Second

	// DefaultDisplayWindow is how long SyncComplete stays true after a
	// successful upsert, for "saved to cloud" style indicators.
	DefaultDisplayWindow = 3 * time.Second
)

// ErrSyncInFlight is returned by explicit sync requests that arrive while an
// upsert for the same engine is still running.
var ErrSyncInFlight = errors.New("sync already in flight")

// syncMode distinguishes the three ways a sync attempt can be triggered. The
// flush and promote paths differ in exactly one place: only promote may move
// a note out of "local", and only promote uploads regardless of the baseline.
type syncMode int

const (
	// modeBackground is the debounced path: silent, eligible notes only.
	modeBackground syncMode = iota
	// modeFlush is manual save and navigation away: pushes pending edits of
	// eligible notes, errors surface to the caller.
	modeFlush
	// modePromote is the "sync to cloud" confirmation: uploads
	// unconditionally and walks a local note through syncing to synced.
	modePromote
)

// NoteSource supplies the freshest persisted state of a note. Reading at sync
// time (rather than trusting the observation that armed the timer) guards
// against stale content captured in closures.
type NoteSource interface {
	Get(ctx context.Context, id string) (*models.Note, error)
	SetStatus(ctx context.Context, id string, status models.CloudStatus) error
}

// Uploader pushes one note to the remote store.
type Uploader interface {
	UpsertNote(ctx context.Context, noteID, content string, updatedAt int64) (string, error)
}

// Engine is the debounced sync engine for the currently open note.
type Engine struct {
	source NoteSource
	remote Uploader
	online func() bool
	log    logging.Logger

	quiet         time.Duration
	displayWindow time.Duration
	sched         *Scheduler

	mu       stdsync.Mutex
	noteID   string // active note; "" when no note is open
	baseline string // last content known to match the remote copy
	inFlight bool
	complete bool
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithQuietPeriod overrides the debounce quiet period.
func WithQuietPeriod(d time.Duration) EngineOption {
	return func(e *Engine) { e.quiet = d }
}

// WithDisplayWindow overrides how long SyncComplete stays set.
func WithDisplayWindow(d time.Duration) EngineOption {
	return func(e *Engine) { e.displayWindow = d }
}

// WithOnlineProbe installs the runtime connectivity signal. When the probe
// reports false at the moment a sync would fire, the attempt is skipped
// entirely: not queued, not retried until the next debounce trigger.
func WithOnlineProbe(online func() bool) EngineOption {
	return func(e *Engine) { e.online = online }
}

// WithEngineLogger sets the logger.
func WithEngineLogger(log logging.Logger) EngineOption {
	return func(e *Engine) { e.log = log }
}

// NewEngine returns an engine wired to the local source and the remote store.
func NewEngine(source NoteSource, remote Uploader, opts ...EngineOption) *Engine {
	e := &Engine{
		source:        source,
		remote:        remote,
		online:        func() bool { return true },
		log:           logging.Nop(),
		quiet:         DefaultQuietPeriod,
		displayWindow: DefaultDisplayWindow,
		sched:         NewScheduler(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Observe feeds one editor change event into the engine.
//
// Switching notes resets the last-synced baseline to the freshly loaded
// content and never schedules a sync by itself. Content equal to the baseline
// cancels any pending sync. Notes whose status is not sync-eligible are left
// alone; everything else (re)arms the trailing debounce timer.
func (e *Engine) Observe(noteID, content string, status models.CloudStatus) {
	e.mu.Lock()

	if noteID != e.noteID {
		if e.noteID != "" {
			e.sched.Cancel(e.noteID)
		}
		e.noteID = noteID
		e.baseline = content
		e.complete = false
		e.mu.Unlock()
		return
	}

	if content == e.baseline {
		e.sched.Cancel(noteID)
		e.mu.Unlock()
		return
	}

	if !status.EligibleForSync() {
		e.mu.Unlock()
		return
	}

	e.mu.Unlock()

	e.sched.Schedule(noteID, e.quiet, func() {
		if err := e.attempt(context.Background(), noteID, modeBackground); err != nil {
			e.log.Error(context.Background(), "background sync failed", "note", noteID, "error", err)
		}
	})
}

// SyncNow cancels any pending debounce timer for the active note and flushes
// its pending edits immediately. Used on manual save and on navigation away
// from a note. Like the background path it only touches sync-eligible notes;
// a local-only note keeps waiting for its sync-to-cloud confirmation. Unlike
// background syncs, errors are returned to the caller.
func (e *Engine) SyncNow(ctx context.Context) error {
	e.mu.Lock()
	id := e.noteID
	e.mu.Unlock()

	if id == "" {
		return nil
	}
	e.sched.Cancel(id)
	return e.attempt(ctx, id, modeFlush)
}

// SyncNote performs an explicit, immediate sync of the given note, moving a
// still-local note through syncing to synced. This is the "sync to cloud"
// confirmation path; it uploads even when the content matches the baseline,
// so an unedited note still gets its first upload (or a desync repair). It
// works for notes other than the active one.
func (e *Engine) SyncNote(ctx context.Context, id string) error {
	e.sched.Cancel(id)
	return e.attempt(ctx, id, modePromote)
}

// Detach forgets the active note and cancels its pending timer. A sync
// already in flight is allowed to complete.
func (e *Engine) Detach() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.noteID != "" {
		e.sched.Cancel(e.noteID)
	}
	e.noteID = ""
	e.baseline = ""
	e.complete = false
}

// Close cancels all pending work.
func (e *Engine) Close() {
	e.sched.CancelAll()
}

// Syncing reports whether an upsert is currently in flight.
func (e *Engine) Syncing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inFlight
}

// SyncComplete reports whether a sync finished within the last display
// window; the flag clears on note switch.
func (e *Engine) SyncComplete() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.complete
}

// attempt runs one sync cycle for the note id. User-initiated modes (flush
// and promote) may not be silently swallowed when offline and report an
// in-flight conflict instead of quietly yielding; only promote may move a
// note out of "local" or bypass the baseline no-op check.
func (e *Engine) attempt(ctx context.Context, id string, mode syncMode) error {
	e.mu.Lock()
	if e.inFlight {
		e.mu.Unlock()
		if mode != modeBackground {
			return ErrSyncInFlight
		}
		// the next debounce cycle picks up the latest content
		return nil
	}
	e.inFlight = true
	baseline, isActive := e.baseline, id == e.noteID
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.inFlight = false
		e.mu.Unlock()
	}()

	if !e.online() {
		if mode != modeBackground {
			return common.ErrOffline
		}
		e.log.Debug(ctx, "skipping sync, offline", "note", id)
		return nil
	}

	// re-read: the persisted note, not the observation that armed the timer
	note, err := e.source.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("note %s: %w", id, err)
	}

	if mode != modePromote && isActive && note.Content == baseline {
		return nil
	}

	prev := note.CloudStatus
	if prev == models.StatusLocal {
		if mode != modePromote {
			return nil
		}
		if err := e.source.SetStatus(ctx, id, models.StatusSyncing); err != nil {
			return err
		}
	}

	if _, err := e.remote.UpsertNote(ctx, note.ID, note.Content, note.UpdatedAt); err != nil {
		// never leave a note believed synced after a failed attempt
		if stErr := e.source.SetStatus(ctx, id, models.StatusLocal); stErr != nil {
			e.log.Error(ctx, "failed to reset status after sync error", "note", id, "error", stErr)
		}
		return fmt.Errorf("sync note %s: %w", id, err)
	}

	if err := e.source.SetStatus(ctx, id, prev.AfterSuccessfulSync()); err != nil {
		return err
	}

	e.mu.Lock()
	if e.noteID == id {
		e.baseline = note.Content
		e.complete = true
	}
	e.mu.Unlock()

	e.sched.Schedule(id+"/complete", e.displayWindow, func() {
		e.mu.Lock()
		if e.noteID == id {
			e.complete = false
		}
		e.mu.Unlock()
	})

	return nil
}
