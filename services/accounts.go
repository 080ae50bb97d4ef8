package services

import (
	"errors"
	"time"

	"github.com/opengrove/commune-api/models"
	"gorm.io/gorm"
)

// AccountsService manages account lookup and creation
type AccountsService struct {
	DB *gorm.DB
}

// GetAccountByID gets the account with the provided ID
func (s *AccountsService) GetAccountByID(id uint64) (*models.Account, error) {
	var account models.Account
	err := s.DB.
		Where("deleted_date IS NULL").
		Where("id = ?", id).
		First(&account).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetAccountByEmail gets the account with the provided email address
func (s *AccountsService) GetAccountByEmail(email string) (*models.Account, error) {
	var account models.Account
	err := s.DB.
		Where("deleted_date IS NULL").
		Where("email LIKE ?", email).
		First(&account).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// FindByLogin finds an account with the provided login credentials
func (s *AccountsService) FindByLogin(email, password string) (*models.Account, error) {

	// Find the account with the email
	account, err := s.GetAccountByEmail(email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, nil
	}

	// Verify the password
	if !account.VerifyPassword(password) {
		return nil, nil
	}

	// Return the account
	return account, nil

}

// CreateAccount creates a new account with the provided email and
// password. New accounts start as ordinary users in the active state.
func (s *AccountsService) CreateAccount(email, password string) (*models.Account, error) {

	// Create the account record
	account := models.Account{
		Email:       email,
		Role:        models.RoleUser,
		CreatedDate: time.Now(),
	}
	if err := account.SetPassword(password); err != nil {
		return nil, err
	}

	// Insert it into the database
	if err := s.DB.Create(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil

}
