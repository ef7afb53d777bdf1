// Package slugx mints and validates the URL-safe note identifiers.
package slugx

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Length is the number of characters in a note slug.
const Length = 10

// alphabet is base62: URL-safe without '-' or '_' so slugs read cleanly in paths.
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// New returns a fresh 10-character base62 slug.
func New() (string, error) {
	return gonanoid.Generate(alphabet, Length)
}

// Valid reports whether s is a well-formed note slug. It checks shape only;
// existence is the store's business.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		default:
			return false
		}
	}
	return true
}
