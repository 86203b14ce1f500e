package services

import (
	"errors"

	"github.com/raynaldlao/Blog-Comment/internal/models"
	"github.com/raynaldlao/Blog-Comment/internal/utils"
	"gorm.io/gorm"
)

// AuthService validates credentials against stored accounts. Read-only.
type AuthService struct {
	db *gorm.DB
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: db}
}

// Authenticate looks up the account by exact username and compares the
// password against the stored bcrypt hash. Unknown username and wrong
// password both come back as ErrInvalidCredentials so responses cannot
// be used to enumerate usernames.
func (s *AuthService) Authenticate(username, password string) (*models.Account, error) {
	var account models.Account
	if err := s.db.Where("username = ?", username).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !utils.CheckPasswordHash(password, account.Password) {
		return nil, ErrInvalidCredentials
	}

	return &account, nil
}
