package models

import "time"

// Note is one user's copy of a note. ID is the surrogate record id; NoteID is
// the client-minted slug, unique per owner. DeletedAt marks a soft delete:
// the row survives but reads treat it as absent until a later upsert revives
// it.
type Note struct {
	ID        string
	UserID    string
	NoteID    string
	Content   string
	UpdatedAt int64
	DeletedAt *time.Time
}
