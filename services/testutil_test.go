package services

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/opengrove/commune-api/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a throwaway database for one test. It lives in the
// test's temp directory so parallel tests never share state. Write
// transactions take the lock up front and waiters block instead of
// erroring, so tests can exercise concurrent transitions.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=5000", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Account{},
		&models.AuditEntry{},
		&models.ContentItem{},
		&models.Notification{},
		&models.PolicyDomain{},
		&models.PolicySettings{},
		&models.PolicyWord{},
		&models.Violation{},
	))
	return db
}

// newTestAccount creates an account with the given role
func newTestAccount(t *testing.T, db *gorm.DB, email, role string) *models.Account {
	t.Helper()
	account := models.Account{
		Email:       email,
		Role:        role,
		CreatedDate: time.Now(),
	}
	require.NoError(t, account.SetPassword("test-password"))
	require.NoError(t, db.Create(&account).Error)
	return &account
}

// testStack is the fully-wired service set used by the pipeline tests
type testStack struct {
	DB            *gorm.DB
	Policy        *PolicyService
	Scanner       *ScannerService
	Violations    *ViolationsService
	Notifications *NotificationsService
	Trust         *TrustService
	Content       *ContentService
	Transport     *fakeTransport
}

// fakeTransport records realtime emits instead of delivering them.
// Pushes can come from concurrent transitions, so access is locked.
type fakeTransport struct {
	mu    sync.Mutex
	emits []fakeEmit
}

type fakeEmit struct {
	AccountID uint64
	Event     string
	Payload   map[string]interface{}
}

func (f *fakeTransport) Emit(accountID uint64, event string, payload map[string]interface{}) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emits = append(f.emits, fakeEmit{AccountID: accountID, Event: event, Payload: payload})
	return true
}

// Emits returns a copy of the recorded emits
func (f *fakeTransport) Emits() []fakeEmit {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fakeEmit{}, f.emits...)
}

// newTestStack wires every service over a fresh test database
func newTestStack(t *testing.T) *testStack {
	t.Helper()
	db := newTestDB(t)
	transport := &fakeTransport{}
	policy := &PolicyService{DB: db}
	violations := &ViolationsService{DB: db}
	notifications := &NotificationsService{DB: db, Transport: transport}
	trust := &TrustService{
		DB:            db,
		Policy:        policy,
		Violations:    violations,
		Notifications: notifications,
	}
	content := &ContentService{
		DB:         db,
		Policy:     policy,
		Scanner:    &ScannerService{},
		Violations: violations,
		Trust:      trust,
	}
	return &testStack{
		DB:            db,
		Policy:        policy,
		Scanner:       &ScannerService{},
		Violations:    violations,
		Notifications: notifications,
		Trust:         trust,
		Content:       content,
		Transport:     transport,
	}
}

// countAuditEntries counts audit entries for a subject and action
func countAuditEntries(t *testing.T, db *gorm.DB, subjectID uint64, action string) int {
	t.Helper()
	var count int64
	query := db.Model(&models.AuditEntry{}).Where("subject_id = ?", subjectID)
	if len(action) > 0 {
		query = query.Where("action = ?", action)
	}
	require.NoError(t, query.Count(&count).Error)
	return int(count)
}

// countNotifications counts notifications for a recipient and kind
func countNotifications(t *testing.T, db *gorm.DB, recipientID uint64, kind string) int {
	t.Helper()
	var count int64
	query := db.Model(&models.Notification{}).Where("recipient_id = ?", recipientID)
	if len(kind) > 0 {
		query = query.Where("kind = ?", kind)
	}
	require.NoError(t, query.Count(&count).Error)
	return int(count)
}
