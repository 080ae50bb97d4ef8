package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/opengrove/commune-api/models"
	"gorm.io/gorm"
)

// ViolationsService is the append-only ledger of policy violations.
// Rows are never updated or deleted; escalation works purely off
// windowed counts, so the window is a hard cutoff re-evaluated on each
// count rather than any kind of gradual decay.
type ViolationsService struct {
	DB *gorm.DB
}

// Record appends a violation for the account. Callers record at most
// one violation per content item.
func (s *ViolationsService) Record(accountID uint64, contentID, kind string) (*models.Violation, error) {
	return s.RecordTx(s.DB, accountID, contentID, kind)
}

// RecordTx appends a violation inside an existing transaction
func (s *ViolationsService) RecordTx(tx *gorm.DB, accountID uint64, contentID, kind string) (*models.Violation, error) {
	violation := models.Violation{
		ID:         uuid.NewString(),
		AccountID:  accountID,
		ContentID:  contentID,
		Kind:       kind,
		OccurredAt: time.Now(),
	}
	if err := tx.Create(&violation).Error; err != nil {
		return nil, err
	}
	return &violation, nil
}

// CountRecent counts the account's violations inside the trailing
// window. This count is the sole signal used for escalation.
func (s *ViolationsService) CountRecent(accountID uint64, windowHours int) (int, error) {
	return s.CountRecentTx(s.DB, accountID, windowHours)
}

// CountRecentTx counts recent violations inside an existing transaction
func (s *ViolationsService) CountRecentTx(tx *gorm.DB, accountID uint64, windowHours int) (int, error) {
	cutoff := time.Now().Add(-time.Duration(windowHours) * time.Hour)
	var count int64
	err := tx.
		Model(&models.Violation{}).
		Where("account_id = ?", accountID).
		Where("occurred_at >= ?", cutoff).
		Count(&count).
		Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// ListRecent returns the account's most recent violations, newest
// first, for the moderator review view
func (s *ViolationsService) ListRecent(accountID uint64, limit int) ([]*models.Violation, error) {
	if limit <= 0 {
		limit = 50
	}
	var violations []*models.Violation
	err := s.DB.
		Where("account_id = ?", accountID).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&violations).
		Error
	if err != nil {
		return nil, err
	}
	return violations, nil
}
