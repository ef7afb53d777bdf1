// Package store wraps the local note repository with reactive change
// notifications: every mutation re-runs the recency-ordered listing and pushes
// it to all subscribers, so any number of views stay consistent without
// explicit cache invalidation.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/monotes/monotes/internal/client/models"
	"github.com/monotes/monotes/internal/client/repositories/notes"
	"github.com/monotes/monotes/internal/common"
	"github.com/monotes/monotes/internal/logging"
)

// Store is the client's single source of truth for notes. It is safe for
// concurrent use.
type Store struct {
	repo notes.Repository
	log  logging.Logger
	now  func() time.Time

	mu      sync.Mutex
	subs    map[int]chan []models.Note
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(log logging.Logger) Option {
	return func(s *Store) { s.log = log }
}

// New returns a Store over the given repository.
func New(repo notes.Repository, opts ...Option) *Store {
	s := &Store{
		repo: repo,
		log:  logging.Nop(),
		now:  time.Now,
		subs: make(map[int]chan []models.Note),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscription delivers the full recency-ordered note list after every store
// mutation. Delivery is latest-wins: a slow consumer may miss intermediate
// states but always ends up observing the most recent one.
type Subscription struct {
	C      <-chan []models.Note
	id     int
	parent *Store
}

// Cancel detaches the subscription. The channel is closed.
func (sub *Subscription) Cancel() {
	sub.parent.mu.Lock()
	defer sub.parent.mu.Unlock()
	if ch, ok := sub.parent.subs[sub.id]; ok {
		delete(sub.parent.subs, sub.id)
		close(ch)
	}
}

// Subscribe registers an observer of the ordered note list.
func (s *Store) Subscribe() *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan []models.Note, 1)
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	return &Subscription{C: ch, id: id, parent: s}
}

// Get returns a note by id, or common.ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*models.Note, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all notes, most recently updated first.
func (s *Store) List(ctx context.Context) ([]models.Note, error) {
	return s.repo.List(ctx)
}

// Search returns notes matching q (case-insensitive substring), newest first.
func (s *Store) Search(ctx context.Context, q string) ([]models.Note, error) {
	return s.repo.Search(ctx, q)
}

// Save persists content for the note id, creating the row on first write with
// status "local". UpdatedAt strictly increases across saves even when the
// wall clock does not.
func (s *Store) Save(ctx context.Context, id string, content string) (*models.Note, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	ts := s.now().UnixMilli()

	n := &models.Note{ID: id, Content: content, UpdatedAt: ts, CloudStatus: models.StatusLocal}
	if existing != nil {
		n.CloudStatus = existing.CloudStatus
		if ts <= existing.UpdatedAt {
			n.UpdatedAt = existing.UpdatedAt + 1
		}
	}

	if err := s.repo.Upsert(ctx, n); err != nil {
		return nil, err
	}

	s.notify(ctx)
	return n, nil
}

// SetStatus rewrites only the cloud status of an existing note.
func (s *Store) SetStatus(ctx context.Context, id string, status models.CloudStatus) error {
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.notify(ctx)
	return nil
}

// Delete removes a note from the local store. Idempotent.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.notify(ctx)
	return nil
}

func (s *Store) notify(ctx context.Context) {
	list, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error(ctx, "failed to refresh note list for subscribers", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		// latest-wins: replace a stale pending update instead of blocking
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- list:
		default:
		}
	}
}
