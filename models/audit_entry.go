package models

import "time"

// AuditEntry is an immutable record of a moderation or administrative
// action. Entries are write-once: nothing in the system updates or
// deletes them. An ActorID of zero means the action was taken
// automatically by the escalation engine.
type AuditEntry struct {
	ID         string `gorm:"primaryKey"`
	ActorID    uint64
	Action     string
	SubjectID  uint64
	Detail     string
	OccurredAt time.Time
}
