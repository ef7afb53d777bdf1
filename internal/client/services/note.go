// Package services contains the client-side application services that tie the
// local store, the whitelist gate, the sync engine and the remote client
// together.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/monotes/monotes/internal/client/models"
	"github.com/monotes/monotes/internal/client/remote"
	"github.com/monotes/monotes/internal/client/store"
	"github.com/monotes/monotes/internal/client/whitelist"
	"github.com/monotes/monotes/internal/common"
	"github.com/monotes/monotes/internal/logging"
	"github.com/monotes/monotes/internal/slugx"
)

// Syncer is the slice of the sync engine the note service needs.
type Syncer interface {
	Observe(noteID, content string, status models.CloudStatus)
	SyncNote(ctx context.Context, id string) error
}

// NoteService implements the note lifecycle: lazy creation behind the
// whitelist gate, local persistence, deletion with remote soft delete, and
// the explicit first sync that moves a note out of "local".
type NoteService struct {
	store  *store.Store
	remote remote.Client
	engine Syncer
	wl     *whitelist.Whitelist
	online func() bool
	log    logging.Logger
	now    func() time.Time
}

// NoteOption configures a NoteService.
type NoteOption func(*NoteService)

// WithOnlineProbe installs the runtime connectivity signal.
func WithOnlineProbe(online func() bool) NoteOption {
	return func(s *NoteService) { s.online = online }
}

// WithLogger sets the logger.
func WithLogger(log logging.Logger) NoteOption {
	return func(s *NoteService) { s.log = log }
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) NoteOption {
	return func(s *NoteService) { s.now = now }
}

func NewNoteService(st *store.Store, rc remote.Client, engine Syncer, wl *whitelist.Whitelist, opts ...NoteOption) *NoteService {
	s := &NoteService{
		store:  st,
		remote: rc,
		engine: engine,
		wl:     wl,
		online: func() bool { return true },
		log:    logging.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create mints a fresh slug, whitelists it for lazy creation, and returns an
// ephemeral in-memory note. Nothing is persisted until the first save.
func (s *NoteService) Create(ctx context.Context) (*models.Note, error) {
	slug, err := slugx.New()
	if err != nil {
		return nil, fmt.Errorf("failed to mint slug: %w", err)
	}
	s.wl.Add(slug)

	return &models.Note{
		ID:          slug,
		Content:     "",
		UpdatedAt:   s.now().UnixMilli(),
		CloudStatus: models.StatusLocal,
	}, nil
}

// Open resolves a note id to a note. A persisted note is returned as stored;
// an unknown id is only resolvable when the current session whitelisted it,
// in which case an ephemeral empty note comes back. Anything else is
// not-found; navigating to an arbitrary id never creates a note.
func (s *NoteService) Open(ctx context.Context, id string) (*models.Note, error) {
	if !slugx.Valid(id) {
		return nil, fmt.Errorf("%w: malformed note id %q", common.ErrValidation, id)
	}

	n, err := s.store.Get(ctx, id)
	if err == nil {
		return n, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	if !s.wl.Contains(id) {
		return nil, common.ErrNotFound
	}

	return &models.Note{
		ID:          id,
		Content:     "",
		UpdatedAt:   s.now().UnixMilli(),
		CloudStatus: models.StatusLocal,
	}, nil
}

// Save persists content for the note, creating the row on first write when
// the id is whitelisted (consuming the entry), and feeds the observation to
// the sync engine.
func (s *NoteService) Save(ctx context.Context, id string, content string) (*models.Note, error) {
	_, err := s.store.Get(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		if !s.wl.Contains(id) {
			return nil, common.ErrNotFound
		}
	} else if err != nil {
		return nil, err
	}

	n, err := s.store.Save(ctx, id, content)
	if err != nil {
		return nil, err
	}

	// first persistence consumes the whitelist entry
	s.wl.Remove(id)

	if s.engine != nil {
		s.engine.Observe(n.ID, n.Content, n.CloudStatus)
	}

	return n, nil
}

// List returns all local notes, newest first.
func (s *NoteService) List(ctx context.Context) ([]models.Note, error) {
	return s.store.List(ctx)
}

// Search matches local note content case-insensitively, newest first.
func (s *NoteService) Search(ctx context.Context, q string) ([]models.Note, error) {
	return s.store.Search(ctx, q)
}

// Delete removes the note locally and soft-deletes the remote counterpart
// when one exists. A missing remote record is not an error.
func (s *NoteService) Delete(ctx context.Context, id string) error {
	n, err := s.store.Get(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	hadRemote := n.CloudStatus.EligibleForSync()

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	if hadRemote && s.remote.CurrentUserID() != "" {
		err := s.remote.SoftDeleteNote(ctx, id)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("local note deleted, remote soft delete failed: %w", err)
		}
	}

	return nil
}

// SyncToCloud is the explicit "sync to cloud" confirmation: it performs the
// first upload for a local note (or repairs a desynced one), walking the
// status through syncing to synced. Requires an authenticated session.
func (s *NoteService) SyncToCloud(ctx context.Context, id string) error {
	if s.remote.CurrentUserID() == "" {
		return common.ErrUnauthenticated
	}
	return s.engine.SyncNote(ctx, id)
}

// SweepAll is the full-sweep sync: every sync-eligible local note that is
// newer than (or missing from) its remote copy gets uploaded. Per-note
// failures are logged and do not stop the sweep. Returns how many notes were
// pushed.
func (s *NoteService) SweepAll(ctx context.Context) (int, error) {
	if !s.online() {
		return 0, common.ErrOffline
	}
	if s.remote.CurrentUserID() == "" {
		return 0, common.ErrUnauthenticated
	}

	local, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}

	remoteNotes, err := s.remote.ListNotes(ctx)
	if err != nil {
		return 0, err
	}
	byID := make(map[string]remote.Note, len(remoteNotes))
	for _, rn := range remoteNotes {
		byID[rn.NoteID] = rn
	}

	pushed := 0
	for _, n := range local {
		if !n.CloudStatus.EligibleForSync() {
			continue
		}

		rn, exists := byID[n.ID]
		if exists {
			if n.UpdatedAt <= rn.UpdatedAt {
				// remote copy is current or newer
				continue
			}
			// an update never revives a record soft-deleted elsewhere
			if _, err := s.remote.UpdateNote(ctx, n.ID, n.Content, n.UpdatedAt); err != nil {
				s.log.Error(ctx, "sweep: failed to sync note", "note", n.ID, "error", err)
				continue
			}
		} else {
			if _, err := s.remote.UpsertNote(ctx, n.ID, n.Content, n.UpdatedAt); err != nil {
				s.log.Error(ctx, "sweep: failed to sync note", "note", n.ID, "error", err)
				continue
			}
		}
		pushed++
	}

	return pushed, nil
}
