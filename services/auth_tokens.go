package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/opengrove/commune-api/models"
	"gorm.io/gorm"
)

// AuthTokensService creates and validates the signed tokens used to
// authenticate API requests
type AuthTokensService struct {
	DB            *gorm.DB
	SigningPepper string
}

// CreateToken creates a signed token for the account with the provided
// validity window
func (s *AuthTokensService) CreateToken(
	account *models.Account,
	issued time.Time,
	expires time.Time,
) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": account.ID,
		"iat": issued.Unix(),
		"exp": expires.Unix(),
	})
	return token.SignedString([]byte(s.SigningPepper))
}

// ValidateToken validates a signed token and returns the account it
// belongs to. Returns nil with no error for tokens that are simply
// invalid or expired, and for accounts that no longer exist.
func (s *AuthTokensService) ValidateToken(tokenStr string) (*models.Account, error) {

	// Parse and verify the token signature
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.SigningPepper), nil
	})
	if err != nil || !token.Valid {
		return nil, nil
	}

	// Pull the account ID out of the claims
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, nil
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return nil, nil
	}

	// Load the account
	var account models.Account
	findErr := s.DB.
		Where("deleted_date IS NULL").
		Where("id = ?", uint64(sub)).
		First(&account).
		Error
	if findErr != nil {
		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, findErr
	}
	return &account, nil

}
