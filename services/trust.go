package services

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/opengrove/commune-api/models"
	"gorm.io/gorm"
)

// Audit actions emitted by the trust state machine
const (
	ActionAutoSuspend      = "auto_suspend"
	ActionSuspend          = "suspend"
	ActionUnsuspend        = "unsuspend"
	ActionBan              = "ban"
	ActionUnban            = "unban"
	ActionUpdateSuspension = "update_suspension"
	ActionUpdateRole       = "update_role"
)

// messageTimeFormat is how expiry dates are rendered in user-facing
// messages
const messageTimeFormat = "January 2, 2006 at 15:04 MST"

// TrustService is the single owner of account trust state. Every
// transition, whether automatic or moderator-initiated, goes through
// here so that the state write, the audit entry, and the notification
// always land in one transaction.
type TrustService struct {
	DB            *gorm.DB
	Policy        *PolicyService
	Violations    *ViolationsService
	Notifications *NotificationsService
	Logger        *slog.Logger
}

func (s *TrustService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Evaluate checks the account's recent violation count against the
// policy threshold and, if crossed, suspends the account. This is the
// only automatic transition in the system. It is safe to run
// concurrently for the same account: the suspension write carries the
// active-state predicate, so of two racing evaluations only one row
// update sticks and the loser skips its audit entry and notification.
func (s *TrustService) Evaluate(accountID uint64) error {

	cfg := s.Policy.GetConfig()

	return s.transition(func(tx *gorm.DB) (*models.Notification, error) {

		// Re-read the account inside the transaction
		account, err := loadAccountTx(tx, accountID)
		if err != nil {
			return nil, err
		}

		// Only an active account can be auto-suspended. An account
		// that is already suspended keeps its current until-date; the
		// suspension is never shortened.
		now := time.Now()
		normalizeExpired(account, now)
		if account.TrustState(now) != models.TrustStateActive {
			return nil, nil
		}

		// Count the recent violations
		count, err := s.Violations.CountRecentTx(tx, accountID, cfg.ViolationWindowHours)
		if err != nil {
			return nil, err
		}
		if count < cfg.ViolationThreshold {
			return nil, nil
		}

		// Suspend the account. The guarded update is the serialization
		// point: the predicate re-checks that the row is still active at
		// commit time, so a competing evaluation or moderator action
		// that transitioned the account first makes this a no-op instead
		// of a second suspension.
		until := now.Add(time.Duration(cfg.AutoSuspendHours) * time.Hour)
		res := tx.
			Model(&models.Account{}).
			Where("id = ?", accountID).
			Where("deleted_date IS NULL").
			Where("banned = ? OR (banned_until IS NOT NULL AND banned_until <= ?)", false, now).
			Where("suspended_until IS NULL OR suspended_until <= ?", now).
			Update("suspended_until", until)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, nil
		}

		// Record why. An actor of zero marks the action as automatic.
		detail := fmt.Sprintf(
			"%d violations within %d hours (threshold %d)",
			count, cfg.ViolationWindowHours, cfg.ViolationThreshold,
		)
		if err := auditTx(tx, 0, ActionAutoSuspend, accountID, detail); err != nil {
			return nil, err
		}

		// Tell the user
		return s.Notifications.CreateTx(
			tx,
			accountID,
			models.NotificationSuspended,
			fmt.Sprintf(
				"Your account has been suspended until %s for repeated policy violations.",
				until.Format(messageTimeFormat),
			),
		)

	})

}

// Suspend suspends the account for the given number of days. Allowed
// from the active or suspended states; the new until-date replaces any
// existing one.
func (s *TrustService) Suspend(actor *models.Account, accountID uint64, days int, reason string) error {

	if days <= 0 {
		return errors.New("suspension days must be positive")
	}

	return s.transition(func(tx *gorm.DB) (*models.Notification, error) {

		account, err := loadAccountTx(tx, accountID)
		if err != nil {
			return nil, err
		}
		if err := authorizeModeration(actor, account); err != nil {
			return nil, err
		}

		// A banned account cannot be suspended; the ban must be lifted
		// first
		now := time.Now()
		normalizeExpired(account, now)
		if account.TrustState(now) == models.TrustStateBanned {
			return nil, ErrConflict
		}

		until := now.Add(time.Duration(days) * 24 * time.Hour)
		account.SuspendedUntil = sql.NullTime{Valid: true, Time: until}
		if err := tx.Save(account).Error; err != nil {
			return nil, err
		}

		detail := fmt.Sprintf("suspended for %d days, until %s", days, until.Format(time.RFC3339))
		if len(reason) > 0 {
			detail += ": " + reason
		}
		if err := auditTx(tx, actor.ID, ActionSuspend, accountID, detail); err != nil {
			return nil, err
		}

		return s.Notifications.CreateTx(
			tx,
			accountID,
			models.NotificationSuspended,
			fmt.Sprintf(
				"Your account has been suspended until %s.",
				until.Format(messageTimeFormat),
			),
		)

	})

}

// Unsuspend lifts the account's suspension and restores access
func (s *TrustService) Unsuspend(actor *models.Account, accountID uint64, reason string) error {

	return s.transition(func(tx *gorm.DB) (*models.Notification, error) {

		account, err := loadAccountTx(tx, accountID)
		if err != nil {
			return nil, err
		}
		if err := authorizeModeration(actor, account); err != nil {
			return nil, err
		}

		now := time.Now()
		normalizeExpired(account, now)
		if account.TrustState(now) != models.TrustStateSuspended {
			return nil, ErrConflict
		}

		account.SuspendedUntil = sql.NullTime{}
		if err := tx.Save(account).Error; err != nil {
			return nil, err
		}

		detail := "suspension lifted"
		if len(reason) > 0 {
			detail += ": " + reason
		}
		if err := auditTx(tx, actor.ID, ActionUnsuspend, accountID, detail); err != nil {
			return nil, err
		}

		return s.Notifications.CreateTx(
			tx,
			accountID,
			models.NotificationActivated,
			"Your account has been reactivated.",
		)

	})

}

// Ban bans the account from any state. A nil days means the ban is
// permanent. Any active suspension is cleared, since only one of the
// two can be meaningfully active at a time.
func (s *TrustService) Ban(actor *models.Account, accountID uint64, days *int, reason string) error {

	if days != nil && *days <= 0 {
		return errors.New("ban days must be positive")
	}

	return s.transition(func(tx *gorm.DB) (*models.Notification, error) {

		account, err := loadAccountTx(tx, accountID)
		if err != nil {
			return nil, err
		}
		if err := authorizeModeration(actor, account); err != nil {
			return nil, err
		}

		now := time.Now()
		account.Banned = true
		account.SuspendedUntil = sql.NullTime{}
		account.BannedUntil = sql.NullTime{}
		message := "Your account has been permanently banned."
		detail := "banned permanently"
		if days != nil {
			until := now.Add(time.Duration(*days) * 24 * time.Hour)
			account.BannedUntil = sql.NullTime{Valid: true, Time: until}
			message = fmt.Sprintf("Your account has been banned until %s.", until.Format(messageTimeFormat))
			detail = fmt.Sprintf("banned for %d days, until %s", *days, until.Format(time.RFC3339))
		}
		if len(reason) > 0 {
			detail += ": " + reason
		}

		if err := tx.Save(account).Error; err != nil {
			return nil, err
		}
		if err := auditTx(tx, actor.ID, ActionBan, accountID, detail); err != nil {
			return nil, err
		}

		return s.Notifications.CreateTx(tx, accountID, models.NotificationBanned, message)

	})

}

// Unban lifts the account's ban, clears both ban fields, and restores
// access
func (s *TrustService) Unban(actor *models.Account, accountID uint64, reason string) error {

	return s.transition(func(tx *gorm.DB) (*models.Notification, error) {

		account, err := loadAccountTx(tx, accountID)
		if err != nil {
			return nil, err
		}
		if err := authorizeModeration(actor, account); err != nil {
			return nil, err
		}

		// The ban flag rather than the derived state decides here, so an
		// expired timed ban can still have its stale fields cleared
		if !account.Banned {
			return nil, ErrConflict
		}

		account.Banned = false
		account.BannedUntil = sql.NullTime{}
		if err := tx.Save(account).Error; err != nil {
			return nil, err
		}

		detail := "ban lifted"
		if len(reason) > 0 {
			detail += ": " + reason
		}
		if err := auditTx(tx, actor.ID, ActionUnban, accountID, detail); err != nil {
			return nil, err
		}

		return s.Notifications.CreateTx(
			tx,
			accountID,
			models.NotificationUnbanned,
			"Your account ban has been lifted. Welcome back.",
		)

	})

}

// UpdateSuspensionDuration recomputes the suspension's until-date. A
// nil newDays clears the suspension entirely, which is the same as an
// unsuspend.
func (s *TrustService) UpdateSuspensionDuration(actor *models.Account, accountID uint64, newDays *int, reason string) error {

	if newDays == nil {
		return s.Unsuspend(actor, accountID, reason)
	}
	if *newDays <= 0 {
		return errors.New("suspension days must be positive")
	}

	return s.transition(func(tx *gorm.DB) (*models.Notification, error) {

		account, err := loadAccountTx(tx, accountID)
		if err != nil {
			return nil, err
		}
		if err := authorizeModeration(actor, account); err != nil {
			return nil, err
		}

		now := time.Now()
		normalizeExpired(account, now)
		if account.TrustState(now) != models.TrustStateSuspended {
			return nil, ErrConflict
		}

		until := now.Add(time.Duration(*newDays) * 24 * time.Hour)
		account.SuspendedUntil = sql.NullTime{Valid: true, Time: until}
		if err := tx.Save(account).Error; err != nil {
			return nil, err
		}

		detail := fmt.Sprintf("suspension changed to %d days, until %s", *newDays, until.Format(time.RFC3339))
		if len(reason) > 0 {
			detail += ": " + reason
		}
		if err := auditTx(tx, actor.ID, ActionUpdateSuspension, accountID, detail); err != nil {
			return nil, err
		}

		return s.Notifications.CreateTx(
			tx,
			accountID,
			models.NotificationSuspended,
			fmt.Sprintf(
				"Your account suspension now ends on %s.",
				until.Format(messageTimeFormat),
			),
		)

	})

}

// UpdateRole changes the account's role. Only admins may do this, and
// it is audited but produces no user notification.
func (s *TrustService) UpdateRole(actor *models.Account, accountID uint64, role string) error {

	if actor == nil || !actor.IsAdmin() {
		return ErrUnauthorized
	}
	if role != models.RoleUser && role != models.RoleModerator && role != models.RoleAdmin {
		return errors.New("unknown role: " + role)
	}

	return s.transition(func(tx *gorm.DB) (*models.Notification, error) {

		account, err := loadAccountTx(tx, accountID)
		if err != nil {
			return nil, err
		}

		previous := account.Role
		account.Role = role
		if err := tx.Save(account).Error; err != nil {
			return nil, err
		}

		detail := fmt.Sprintf("role changed from %s to %s", previous, role)
		if err := auditTx(tx, actor.ID, ActionUpdateRole, accountID, detail); err != nil {
			return nil, err
		}
		return nil, nil

	})

}

// transition runs a state transition inside a single transaction so
// the account write, the audit entry, and the notification commit or
// roll back together. A conflicting concurrent write is retried once
// against a fresh read before being surfaced. The realtime
// notification push happens only after a successful commit.
func (s *TrustService) transition(fn func(tx *gorm.DB) (*models.Notification, error)) error {

	var notification *models.Notification
	run := func() error {
		notification = nil
		return s.DB.Transaction(func(tx *gorm.DB) error {
			n, err := fn(tx)
			if err != nil {
				return err
			}
			notification = n
			return nil
		})
	}

	// Run the transition, retrying once on a write conflict
	err := run()
	if err != nil && isWriteConflict(err) {
		s.logger().Warn("trust transition hit a write conflict, retrying", "err", err)
		err = run()
		if err != nil && isWriteConflict(err) {
			return ErrConflict
		}
	}
	if err != nil {
		return err
	}

	// Deliver the notification now that the transaction committed
	if notification != nil {
		s.Notifications.Push(notification)
	}
	return nil

}

// loadAccountTx reads an account for update inside a transaction
func loadAccountTx(tx *gorm.DB, accountID uint64) (*models.Account, error) {
	var account models.Account
	err := tx.
		Where("deleted_date IS NULL").
		Where("id = ?", accountID).
		First(&account).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// authorizeModeration checks that the actor may act on the target.
// Moderators and admins can moderate, but only an admin can touch an
// admin account.
func authorizeModeration(actor, target *models.Account) error {
	if actor == nil || !actor.IsModerator() {
		return ErrUnauthorized
	}
	if target.IsAdmin() && !actor.IsAdmin() {
		return ErrUnauthorized
	}
	return nil
}

// normalizeExpired lazily clears suspension and ban fields whose
// until-date has passed. The derived trust state already ignores
// expired fields; this keeps the stored row in line with it.
func normalizeExpired(account *models.Account, now time.Time) {
	if account.SuspendedUntil.Valid && !account.SuspendedUntil.Time.After(now) {
		account.SuspendedUntil = sql.NullTime{}
	}
	if account.Banned && account.BannedUntil.Valid && !account.BannedUntil.Time.After(now) {
		account.Banned = false
		account.BannedUntil = sql.NullTime{}
	}
}

// auditTx appends an audit entry inside the transaction
func auditTx(tx *gorm.DB, actorID uint64, action string, subjectID uint64, detail string) error {
	entry := models.AuditEntry{
		ID:         uuid.NewString(),
		ActorID:    actorID,
		Action:     action,
		SubjectID:  subjectID,
		Detail:     detail,
		OccurredAt: time.Now(),
	}
	return tx.Create(&entry).Error
}

// isWriteConflict reports whether the error is a concurrent-write
// conflict worth one retry. The patterns cover the mysql and sqlite
// drivers.
func isWriteConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "deadlock") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}
