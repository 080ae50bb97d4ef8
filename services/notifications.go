package services

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/opengrove/commune-api/models"
	"gorm.io/gorm"
)

// NotificationTransport is the realtime delivery channel for
// notifications. The core only depends on this interface; the
// socket.io adapter implements it. Emit reports whether anyone was
// listening, which the dispatcher only uses for logging.
type NotificationTransport interface {
	Emit(accountID uint64, event string, payload map[string]interface{}) bool
}

// NotificationsService creates and delivers user notifications. The
// database row is the durable record and is written inside the
// caller's transaction; the realtime push afterwards is best-effort
// with a single delivery attempt.
type NotificationsService struct {
	DB        *gorm.DB
	Transport NotificationTransport
	Logger    *slog.Logger
}

func (s *NotificationsService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// CreateTx persists a notification inside an existing transaction
func (s *NotificationsService) CreateTx(tx *gorm.DB, recipientID uint64, kind, message string) (*models.Notification, error) {
	notification := models.Notification{
		ID:          uuid.NewString(),
		RecipientID: recipientID,
		Kind:        kind,
		Message:     message,
		CreatedDate: time.Now(),
	}
	if err := tx.Create(&notification).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

// Push makes one realtime delivery attempt for an already-persisted
// notification. Failure is logged and not retried; the persisted row
// and the audit entry remain the durable record.
func (s *NotificationsService) Push(notification *models.Notification) {
	if notification == nil || s.Transport == nil {
		return
	}
	delivered := s.Transport.Emit(
		notification.RecipientID,
		"notification",
		map[string]interface{}{
			"id":      notification.ID,
			"kind":    notification.Kind,
			"message": notification.Message,
		},
	)
	if !delivered {
		s.logger().Info("notification not delivered in realtime",
			"notification_id", notification.ID,
			"recipient_id", notification.RecipientID,
		)
	}
}

// ListForAccount returns the account's notifications, newest first
func (s *NotificationsService) ListForAccount(accountID uint64, limit int) ([]*models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	var notifications []*models.Notification
	err := s.DB.
		Where("recipient_id = ?", accountID).
		Order("created_date DESC").
		Limit(limit).
		Find(&notifications).
		Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead flips the read flag on one of the account's notifications.
// This is the only mutation a notification ever receives.
func (s *NotificationsService) MarkRead(accountID uint64, notificationID string) error {

	// Load the notification, scoped to the requesting account so users
	// cannot touch each other's notifications
	var notification models.Notification
	err := s.DB.
		Where("id = ?", notificationID).
		Where("recipient_id = ?", accountID).
		First(&notification).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	// Flip the flag
	return s.DB.
		Model(&notification).
		Update("read", true).
		Error

}
