// Package remote is the client's binding to the authoritative note server.
package remote

import "context"

// Note is a remote note record as seen by the client. Soft-deleted records
// are never returned.
type Note struct {
	NoteID    string `json:"noteId"`
	Content   string `json:"content"`
	UpdatedAt int64  `json:"updatedAt"`
}

// Client is the RPC surface of the remote store. Mutating operations require
// the caller to be authenticated and fail with common.ErrUnauthenticated
// otherwise; read operations degrade to null/empty results for anonymous
// callers.
type Client interface {
	// Register creates an account. Fails with common.ErrAlreadyExists when
	// the username is taken.
	Register(ctx context.Context, username, password string) error

	// Login authenticates and stores the token pair for subsequent calls.
	Login(ctx context.Context, username, password string) error

	// Logout drops the stored tokens.
	Logout()

	// CurrentUserID returns the authenticated owner id, or "" when signed out.
	CurrentUserID() string

	// Ping probes server reachability.
	Ping(ctx context.Context) error

	// UpsertNote creates the caller's record for noteID or overwrites its
	// content and updatedAt, clearing any soft-delete marker. Returns the
	// server-side record id.
	UpsertNote(ctx context.Context, noteID, content string, updatedAt int64) (string, error)

	// FetchNote returns the caller's note, or nil when it is absent,
	// soft-deleted, or the caller is anonymous.
	FetchNote(ctx context.Context, noteID string) (*Note, error)

	// ListNotes returns the caller's non-deleted notes, newest first.
	ListNotes(ctx context.Context) ([]Note, error)

	// SearchNotes returns the caller's non-deleted notes whose content
	// contains q (case-insensitive), newest first.
	SearchNotes(ctx context.Context, q string) ([]Note, error)

	// UpdateNote overwrites an existing record. Fails with
	// common.ErrNotFound when the caller has no such record.
	UpdateNote(ctx context.Context, noteID, content string, updatedAt int64) (*Note, error)

	// SoftDeleteNote marks the caller's record deleted. Fails with
	// common.ErrNotFound when the caller has no such record.
	SoftDeleteNote(ctx context.Context, noteID string) error
}
