package services

import (
	"context"
	"database/sql"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/monotes/monotes/internal/common"
	"github.com/monotes/monotes/internal/dbx"
	"github.com/monotes/monotes/internal/server/models"
	notesrepo "github.com/monotes/monotes/internal/server/repositories/notes"
	"github.com/monotes/monotes/internal/server/repositories/refreshtokens"
	usersrepo "github.com/monotes/monotes/internal/server/repositories/users"

	_ "modernc.org/sqlite"
)

// In-memory repositories. The manager hands out the same instances whatever
// handle it is given; the sqlite db below only hosts the transactions the
// services open.

type memUsers struct {
	mu     sync.Mutex
	byName map[string]*models.User
	nextID int
}

func (m *memUsers) Create(ctx context.Context, user *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byName[user.UserName]; ok {
		return nil, common.ErrAlreadyExists
	}
	m.nextID++
	u := *user
	u.ID = "user-" + strconv.Itoa(m.nextID)
	u.CreatedAt = time.Now()
	m.byName[u.UserName] = &u
	return &u, nil
}

func (m *memUsers) GetByUserName(ctx context.Context, userName string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byName[userName]; ok {
		out := *u
		return &out, nil
	}
	return nil, common.ErrNotFound
}

type memTokens struct {
	mu     sync.Mutex
	tokens map[string]models.RefreshToken
}

func (m *memTokens) Create(ctx context.Context, userID, token string, validity time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token] = models.RefreshToken{Token: token, UserID: userID, Expires: time.Now().Add(validity)}
	return nil
}

func (m *memTokens) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tokens[token]; ok {
		return &t, nil
	}
	return nil, common.ErrNotFound
}

func (m *memTokens) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, token)
	return nil
}

type memNotes struct {
	mu     sync.Mutex
	notes  map[string]*models.Note // userID + "/" + noteID
	nextID int
}

func (m *memNotes) key(userID, noteID string) string { return userID + "/" + noteID }

func (m *memNotes) Upsert(ctx context.Context, userID, noteID, content string, updatedAt int64) (*models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := m.key(userID, noteID)
	n, ok := m.notes[k]
	if !ok {
		m.nextID++
		n = &models.Note{ID: "rec-" + strconv.Itoa(m.nextID), UserID: userID, NoteID: noteID}
		m.notes[k] = n
	}
	n.Content = content
	n.UpdatedAt = updatedAt
	n.DeletedAt = nil
	out := *n
	return &out, nil
}

func (m *memNotes) GetByNoteID(ctx context.Context, userID, noteID string) (*models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[m.key(userID, noteID)]
	if !ok || n.DeletedAt != nil {
		return nil, common.ErrNotFound
	}
	out := *n
	return &out, nil
}

func (m *memNotes) live(userID string) []models.Note {
	var out []models.Note
	for _, n := range m.notes {
		if n.UserID == userID && n.DeletedAt == nil {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt > out[j].UpdatedAt })
	return out
}

func (m *memNotes) List(ctx context.Context, userID string) ([]models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live(userID), nil
}

func (m *memNotes) Search(ctx context.Context, userID, q string) ([]models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Note
	for _, n := range m.live(userID) {
		if containsFold(n.Content, q) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memNotes) Update(ctx context.Context, userID, noteID, content string, updatedAt int64) (*models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[m.key(userID, noteID)]
	if !ok || n.DeletedAt != nil {
		return nil, common.ErrNotFound
	}
	n.Content = content
	n.UpdatedAt = updatedAt
	out := *n
	return &out, nil
}

func (m *memNotes) SoftDelete(ctx context.Context, userID, noteID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[m.key(userID, noteID)]
	if !ok || n.DeletedAt != nil {
		return common.ErrNotFound
	}
	now := time.Now()
	n.DeletedAt = &now
	return nil
}

type memManager struct {
	users  *memUsers
	tokens *memTokens
	notes  *memNotes
}

func newMemManager() *memManager {
	return &memManager{
		users:  &memUsers{byName: make(map[string]*models.User)},
		tokens: &memTokens{tokens: make(map[string]models.RefreshToken)},
		notes:  &memNotes{notes: make(map[string]*models.Note)},
	}
}

func (m *memManager) Users(dbx.DBTX) usersrepo.Repository            { return m.users }
func (m *memManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.tokens }
func (m *memManager) Notes(dbx.DBTX) notesrepo.Repository            { return m.notes }

func txHost(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
