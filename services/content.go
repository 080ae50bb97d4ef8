package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/opengrove/commune-api/models"
	"gorm.io/gorm"
)

// SubmissionResult is the outcome of a content submission
type SubmissionResult struct {
	Accepted        bool
	StoredText      string
	RejectionReason string
	Content         *models.ContentItem
}

// ContentService is the entry point for user-submitted content. It
// runs the full pipeline: access check, policy scan, persistence,
// violation recording, and escalation.
type ContentService struct {
	DB         *gorm.DB
	Policy     *PolicyService
	Scanner    *ScannerService
	Violations *ViolationsService
	Trust      *TrustService
	Logger     *slog.Logger
}

func (s *ContentService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// SubmitContent processes one piece of submitted text for the account.
// Suspended and banned accounts are rejected outright with a message
// that names the end date when there is one. Otherwise the text is
// scanned, stored (censored if need be), and any violation is recorded
// and fed into escalation.
func (s *ContentService) SubmitContent(account *models.Account, text string) (*SubmissionResult, error) {

	// Reject the submission entirely when the account has no access
	now := time.Now()
	switch account.TrustState(now) {
	case models.TrustStateSuspended:
		return &SubmissionResult{
			RejectionReason: fmt.Sprintf(
				"Your account is suspended until %s. You cannot post until then.",
				account.SuspendedUntil.Time.Format(messageTimeFormat),
			),
		}, nil
	case models.TrustStateBanned:
		reason := "Your account has been permanently banned from posting."
		if account.BannedUntil.Valid {
			reason = fmt.Sprintf(
				"Your account is banned until %s. You cannot post until then.",
				account.BannedUntil.Time.Format(messageTimeFormat),
			)
		}
		return &SubmissionResult{RejectionReason: reason}, nil
	}

	// Scan the text against the current policy
	cfg := s.Policy.GetConfig()
	scan := s.Scanner.Scan(text, cfg)

	// Persist the content item. The raw text is stored unchanged; the
	// censored rendering is stored alongside it only when the scan
	// actually filtered something.
	content := models.ContentItem{
		ID:             uuid.NewString(),
		AccountID:      account.ID,
		RawText:        text,
		ViolatesPolicy: scan.Violated,
		CreatedDate:    now,
	}
	if len(scan.CensoredText) > 0 {
		content.CensoredText.Valid = true
		content.CensoredText.String = scan.CensoredText
	}
	if err := s.DB.Create(&content).Error; err != nil {
		return nil, err
	}

	// Record the violation and run escalation
	if scan.Violated {
		if _, err := s.Violations.Record(account.ID, content.ID, scan.Kind); err != nil {
			return nil, err
		}
		if err := s.Trust.Evaluate(account.ID); err != nil {

			// The submission itself already succeeded; escalation will
			// be re-run on the account's next violation
			s.logger().Error("escalation failed after violation",
				"account_id", account.ID,
				"content_id", content.ID,
				"err", err,
			)
		}
	}

	return &SubmissionResult{
		Accepted:   true,
		StoredText: content.DisplayText(),
		Content:    &content,
	}, nil

}

// GetContentByID gets a content item by its identifier
func (s *ContentService) GetContentByID(id string) (*models.ContentItem, error) {
	var content models.ContentItem
	err := s.DB.
		Where("deleted_date IS NULL").
		Where("id = ?", id).
		First(&content).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &content, nil
}
