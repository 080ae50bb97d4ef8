package models

import (
	"database/sql"
	"time"
)

// ContentItem is a single piece of user-submitted content. The raw text
// is kept as submitted; when scanning found a policy violation the
// censored rendering is stored alongside it and that is what readers
// see. Items are immutable once created, except for moderation
// deletion.
type ContentItem struct {
	ID             string `gorm:"primaryKey"`
	AccountID      uint64
	Account        *Account
	RawText        string
	CensoredText   sql.NullString
	ViolatesPolicy bool
	CreatedDate    time.Time
	DeletedDate    sql.NullTime
}

// DisplayText returns the text that should be shown to readers
func (c *ContentItem) DisplayText() string {
	if c.CensoredText.Valid {
		return c.CensoredText.String
	}
	return c.RawText
}
