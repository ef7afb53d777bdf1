// Package models holds the server-side persistence entities.
package models

import "time"

// User is an account. PasswordHash is a bcrypt hash of the password.
type User struct {
	ID           string
	UserName     string
	PasswordHash []byte
	CreatedAt    time.Time
}
