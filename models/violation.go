package models

import "time"

// The kinds of violation the scanner can record
const (
	ViolationProhibitedContent = "prohibited_content"
	ViolationBlockedLink       = "blocked_link"
	ViolationOther             = "other"
)

// Violation is one recorded instance of content failing policy
// scanning. Rows are append-only: they are never updated or deleted,
// and escalation only ever counts them within a time window.
type Violation struct {
	ID         string `gorm:"primaryKey"`
	AccountID  uint64
	Account    *Account
	ContentID  string
	Kind       string
	OccurredAt time.Time
}
