package models

import (
	"database/sql"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// The roles an account can hold. Moderators can act on ordinary user
// accounts; admins can act on anyone and manage policy configuration.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// The trust states an account can be in. The state is never stored
// directly; it is derived from the suspension and ban fields so the
// two can never disagree.
const (
	TrustStateActive    = "active"
	TrustStateSuspended = "suspended"
	TrustStateBanned    = "banned"
)

// Account represents a user account on the platform
type Account struct {
	ID             uint64 `gorm:"primaryKey"`
	Email          string
	PasswordHash   string
	Role           string
	Banned         bool
	BannedUntil    sql.NullTime
	SuspendedUntil sql.NullTime
	CreatedDate    time.Time
	DeletedDate    sql.NullTime
}

// SetPassword hashes the provided password and stores it on the account
func (a *Account) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// VerifyPassword checks the provided password against the stored hash
func (a *Account) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(
		[]byte(a.PasswordHash),
		[]byte(password),
	) == nil
}

// TrustState derives the account's current trust state at the given
// instant. A ban with no until-date is permanent. Expired suspensions
// and bans read as active; the stored fields are cleaned up lazily the
// next time a moderation action touches the account.
func (a *Account) TrustState(now time.Time) string {
	if a.Banned {
		if !a.BannedUntil.Valid || a.BannedUntil.Time.After(now) {
			return TrustStateBanned
		}
	}
	if a.SuspendedUntil.Valid && a.SuspendedUntil.Time.After(now) {
		return TrustStateSuspended
	}
	return TrustStateActive
}

// IsActive reports whether the account may access the platform
func (a *Account) IsActive(now time.Time) bool {
	return a.TrustState(now) == TrustStateActive
}

// IsModerator reports whether the account holds moderator powers.
// Admins are moderators too.
func (a *Account) IsModerator() bool {
	return a.Role == RoleModerator || a.Role == RoleAdmin
}

// IsAdmin reports whether the account holds admin powers
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}
