package models

import "time"

// RefreshToken is a server-stored long-lived token. Tokens are rotated: a
// successful refresh deletes the old row and inserts a new one.
type RefreshToken struct {
	Token   string
	UserID  string
	Expires time.Time
}
