package services

import (
	"errors"
	"strings"

	"github.com/raynaldlao/Blog-Comment/internal/models"
	"github.com/raynaldlao/Blog-Comment/internal/utils"
	"gorm.io/gorm"
)

// AccountService handles account registration and removal.
type AccountService struct {
	db *gorm.DB
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db}
}

// Register creates a new account with a hashed password. The username
// unique index is the source of truth for uniqueness; a duplicate is
// reported as ErrUsernameTaken.
func (s *AccountService) Register(username, password, email string, role models.Role) (*models.Account, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, ErrEmptyContent
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	var count int64
	if err := s.db.Model(&models.Account{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	account := models.Account{
		Username: username,
		Password: hash,
		Email:    email,
		Role:     role,
	}
	if err := s.db.Create(&account).Error; err != nil {
		// Lost the race on the unique index.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return &account, nil
}

// Delete removes an account and everything it owns: its articles (with
// their comments) and the comments it wrote elsewhere. Admin only. The
// dependent deletes run explicitly so the cascade holds inside the one
// transaction even when the storage has no FK enforcement.
func (s *AccountService) Delete(accountID uint, requesterRole models.Role) error {
	if !requesterRole.IsAdmin() {
		return ErrUnauthorized
	}

	var account models.Account
	if err := s.db.First(&account, accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	var articleIDs []uint
	if err := s.db.Model(&models.Article{}).Where("author_id = ?", account.ID).Pluck("id", &articleIDs).Error; err != nil {
		return err
	}
	if len(articleIDs) > 0 {
		if err := s.db.Where("article_id IN ?", articleIDs).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := s.db.Delete(&models.Article{}, articleIDs).Error; err != nil {
			return err
		}
	}

	// Comments the account wrote on other people's articles, plus any
	// replies hanging off them.
	var commentIDs []uint
	if err := s.db.Model(&models.Comment{}).Where("author_id = ?", account.ID).Pluck("id", &commentIDs).Error; err != nil {
		return err
	}
	if len(commentIDs) > 0 {
		if err := s.db.Where("reply_to IN ?", commentIDs).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := s.db.Where("author_id = ?", account.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
	}

	return s.db.Delete(&account).Error
}
