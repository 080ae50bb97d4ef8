package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/opengrove/commune-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListForAccountNewestFirst(t *testing.T) {
	db := newTestDB(t)
	notifications := &NotificationsService{DB: db}
	account := newTestAccount(t, db, "user@example.com", models.RoleUser)

	older := models.Notification{
		ID:          uuid.NewString(),
		RecipientID: account.ID,
		Kind:        models.NotificationSuspended,
		Message:     "older",
		CreatedDate: time.Now().Add(-time.Hour),
	}
	require.NoError(t, db.Create(&older).Error)
	newer, err := notifications.CreateTx(db, account.ID, models.NotificationActivated, "newer")
	require.NoError(t, err)

	listed, err := notifications.ListForAccount(account.ID, 10)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, newer.ID, listed[0].ID)
	assert.Equal(t, older.ID, listed[1].ID)
}

func TestMarkRead(t *testing.T) {
	db := newTestDB(t)
	notifications := &NotificationsService{DB: db}
	account := newTestAccount(t, db, "user@example.com", models.RoleUser)

	created, err := notifications.CreateTx(db, account.ID, models.NotificationSuspended, "hello")
	require.NoError(t, err)
	assert.False(t, created.Read)

	require.NoError(t, notifications.MarkRead(account.ID, created.ID))

	listed, err := notifications.ListForAccount(account.ID, 10)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.True(t, listed[0].Read)
}

func TestMarkReadScopedToRecipient(t *testing.T) {
	db := newTestDB(t)
	notifications := &NotificationsService{DB: db}
	owner := newTestAccount(t, db, "owner@example.com", models.RoleUser)
	other := newTestAccount(t, db, "other@example.com", models.RoleUser)

	created, err := notifications.CreateTx(db, owner.ID, models.NotificationSuspended, "hello")
	require.NoError(t, err)

	// Another account cannot touch it
	assert.ErrorIs(t, notifications.MarkRead(other.ID, created.ID), ErrNotFound)
}

func TestPushIsSingleAttempt(t *testing.T) {
	db := newTestDB(t)
	transport := &fakeTransport{}
	notifications := &NotificationsService{DB: db, Transport: transport}
	account := newTestAccount(t, db, "user@example.com", models.RoleUser)

	created, err := notifications.CreateTx(db, account.ID, models.NotificationBanned, "banned")
	require.NoError(t, err)
	notifications.Push(created)

	require.Len(t, transport.emits, 1)
	assert.Equal(t, account.ID, transport.emits[0].AccountID)
	assert.Equal(t, "notification", transport.emits[0].Event)
	assert.Equal(t, created.ID, transport.emits[0].Payload["id"])
}

func TestPushWithoutTransportIsSafe(t *testing.T) {
	db := newTestDB(t)
	notifications := &NotificationsService{DB: db}
	account := newTestAccount(t, db, "user@example.com", models.RoleUser)

	created, err := notifications.CreateTx(db, account.ID, models.NotificationBanned, "banned")
	require.NoError(t, err)

	// No transport configured; the durable row is still the record
	notifications.Push(created)
	notifications.Push(nil)
}
