// Package models holds the client-side note entity and its cloud status
// lifecycle.
package models

// CloudStatus tags where a note lives in the sync lifecycle.
//
// A note starts out StatusLocal. An explicit "sync to cloud" action moves it
// through StatusSyncing to StatusSynced; from then on the debounced engine
// keeps it fresh in the background. StatusAIEnabled is a superset of synced
// reached only through an external upgrade; for sync purposes it behaves
// exactly like StatusSynced and is never downgraded by a successful cycle.
type CloudStatus string

const (
	StatusLocal     CloudStatus = "local"
	StatusSyncing   CloudStatus = "syncing"
	StatusSynced    CloudStatus = "synced"
	StatusAIEnabled CloudStatus = "ai-enabled"
)

// EligibleForSync reports whether a note with this status may be picked up by
// the autonomous background sync path. Local notes need an explicit user
// action first.
func (s CloudStatus) EligibleForSync() bool {
	return s == StatusSynced || s == StatusAIEnabled
}

// AfterSuccessfulSync returns the stable status to persist once an upsert
// succeeded. ai-enabled is preserved; everything else lands on synced.
func (s CloudStatus) AfterSuccessfulSync() CloudStatus {
	if s == StatusAIEnabled {
		return StatusAIEnabled
	}
	return StatusSynced
}

// Note is the locally persisted entity. Id is an immutable URL-safe slug,
// UpdatedAt is wall-clock milliseconds and strictly increases on every
// persisted mutation.
type Note struct {
	ID          string
	Content     string
	UpdatedAt   int64
	CloudStatus CloudStatus
}
