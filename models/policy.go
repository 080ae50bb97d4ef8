package models

import (
	"database/sql"
	"time"
)

// The kinds of filtered word. Blocked words are censored from content
// but do not count against the author; prohibited words are censored
// and recorded as a violation.
const (
	WordKindBlocked    = "blocked"
	WordKindProhibited = "prohibited"
)

// PolicyWord is a single word or phrase filtered from submitted content
type PolicyWord struct {
	ID          uint64 `gorm:"primaryKey"`
	Kind        string
	Word        string
	CreatedDate time.Time
	DeletedDate sql.NullTime
}

// PolicyDomain is a domain suffix whose links are stripped from
// submitted content and recorded as violations
type PolicyDomain struct {
	ID          uint64 `gorm:"primaryKey"`
	Domain      string
	CreatedDate time.Time
	DeletedDate sql.NullTime
}

// PolicySettings holds the escalation thresholds. There is a single
// row; administrators update it in place.
type PolicySettings struct {
	ID                   uint64 `gorm:"primaryKey"`
	ViolationWindowHours int
	ViolationThreshold   int
	AutoSuspendHours     int
	UpdatedDate          time.Time
}
