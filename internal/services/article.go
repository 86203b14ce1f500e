package services

import (
	"errors"
	"os"
	"strings"

	"github.com/raynaldlao/Blog-Comment/internal/models"
	"gorm.io/gorm"
)

// EditPolicy decides who may rewrite an existing article.
type EditPolicy int

const (
	// EditOwnerOnly lets only the original author edit. Admins can
	// still delete, they just cannot rewrite someone else's byline.
	EditOwnerOnly EditPolicy = iota
	// EditOwnerOrAdmin additionally grants admins edit rights.
	EditOwnerOrAdmin
)

// EditPolicyFromEnv reads ARTICLE_EDIT_POLICY ("owner" or
// "owner_or_admin"). Owner-only is the default.
func EditPolicyFromEnv() EditPolicy {
	if os.Getenv("ARTICLE_EDIT_POLICY") == "owner_or_admin" {
		return EditOwnerOrAdmin
	}
	return EditOwnerOnly
}

// ArticleService owns article CRUD and its authorization rules. The
// *gorm.DB handed in is the unit of work: callers pass a transaction
// for mutations so the authorization read and the write stay atomic.
type ArticleService struct {
	db         *gorm.DB
	editPolicy EditPolicy
}

func NewArticleService(db *gorm.DB, policy EditPolicy) *ArticleService {
	return &ArticleService{db: db, editPolicy: policy}
}

// ListPage returns one window of article summaries, newest first, plus
// the unfiltered total so callers can compute the page count. A page
// past the end yields an empty slice, not an error.
func (s *ArticleService) ListPage(page, perPage int) ([]models.ArticleSummary, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}

	var total int64
	if err := s.db.Model(&models.Article{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var summaries []models.ArticleSummary
	err := s.db.Model(&models.Article{}).
		Select("articles.id, articles.title, articles.author_id, articles.published_at, accounts.username AS author_username").
		Joins("JOIN accounts ON accounts.id = articles.author_id").
		Order("articles.id DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Scan(&summaries).Error
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

// GetDetail loads one article with its author preloaded.
func (s *ArticleService) GetDetail(articleID uint) (*models.Article, error) {
	var article models.Article
	if err := s.db.Preload("Author").First(&article, articleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &article, nil
}

// Create persists a new article. The role gate (author or admin) is the
// caller's responsibility; routes wrap this in RolesAccepted.
func (s *ArticleService) Create(title, content string, authorID uint) (*models.Article, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	article := models.Article{
		AuthorID: authorID,
		Title:    title,
		Content:  content,
	}
	if err := s.db.Create(&article).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

// Update overwrites title and content in place. Identity, author and
// publish time never change. Authorization follows the edit policy.
func (s *ArticleService) Update(articleID, requesterID uint, requesterRole models.Role, title, content string) (*models.Article, error) {
	var article models.Article
	if err := s.db.First(&article, articleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !s.canEdit(&article, requesterID, requesterRole) {
		return nil, ErrUnauthorized
	}
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	article.Title = title
	article.Content = content
	if err := s.db.Save(&article).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

// Delete removes an article and its comments. The author may delete
// their own article; an admin may delete anyone's.
func (s *ArticleService) Delete(articleID, requesterID uint, requesterRole models.Role) error {
	var article models.Article
	if err := s.db.First(&article, articleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if article.AuthorID != requesterID && !requesterRole.IsAdmin() {
		return ErrUnauthorized
	}

	if err := s.db.Where("article_id = ?", article.ID).Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	return s.db.Delete(&article).Error
}

func (s *ArticleService) canEdit(article *models.Article, requesterID uint, requesterRole models.Role) bool {
	if article.AuthorID == requesterID {
		return true
	}
	return s.editPolicy == EditOwnerOrAdmin && requesterRole.IsAdmin()
}
