package models

import "time"

// The kinds of notification sent when an account's trust state changes
const (
	NotificationSuspended = "account_suspended"
	NotificationBanned    = "account_banned"
	NotificationUnbanned  = "account_unbanned"
	NotificationActivated = "account_activated"
)

// Notification is a message delivered to a user about their account.
// The only mutation ever applied to a notification is flipping Read.
type Notification struct {
	ID          string `gorm:"primaryKey"`
	RecipientID uint64
	Kind        string
	Message     string
	Read        bool
	CreatedDate time.Time
}
