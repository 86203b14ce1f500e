package services

import (
	"errors"
	"strings"

	"github.com/raynaldlao/Blog-Comment/internal/models"
	"gorm.io/gorm"
)

// CommentService owns the threaded-comment logic: creation, reply
// flattening, thread assembly and admin-only deletion.
type CommentService struct {
	db *gorm.DB
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{db: db}
}

// CreateTopLevel posts a new comment directly on an article.
func (s *CommentService) CreateTopLevel(articleID, authorID uint, content string) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	var count int64
	if err := s.db.Model(&models.Article{}).Where("id = ?", articleID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrArticleNotFound
	}

	comment := models.Comment{
		ArticleID: articleID,
		AuthorID:  authorID,
		Content:   content,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// CreateReply posts a reply to an existing comment. The thread is kept
// two levels deep: replying to a reply attaches the new comment to that
// reply's top-level ancestor instead. The article id is inherited from
// the parent, never taken from the caller, so a reply can never land on
// a different article than its parent. Returns the owning article id
// so the caller can redirect to the right page.
func (s *CommentService) CreateReply(parentCommentID, authorID uint, content string) (uint, error) {
	if strings.TrimSpace(content) == "" {
		return 0, ErrEmptyContent
	}

	var parent models.Comment
	if err := s.db.First(&parent, parentCommentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrParentNotFound
		}
		return 0, err
	}

	root := parent.ID
	if parent.ReplyTo != nil {
		root = *parent.ReplyTo
	}

	reply := models.Comment{
		ArticleID: parent.ArticleID,
		AuthorID:  authorID,
		ReplyTo:   &root,
		Content:   content,
	}
	if err := s.db.Create(&reply).Error; err != nil {
		return 0, err
	}
	return parent.ArticleID, nil
}

// GetThread returns the article's top-level comments in chronological
// order, each with its Replies collection populated (also
// chronological) and all authors preloaded. One query; the partition
// into parents and replies happens in memory.
func (s *CommentService) GetThread(articleID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.Preload("Author").
		Where("article_id = ?", articleID).
		Order("posted_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}

	topLevel := make([]models.Comment, 0, len(comments))
	index := make(map[uint]int)
	for _, c := range comments {
		if c.TopLevel() {
			index[c.ID] = len(topLevel)
			topLevel = append(topLevel, c)
		}
	}
	for _, c := range comments {
		if c.ReplyTo == nil {
			continue
		}
		if i, ok := index[*c.ReplyTo]; ok {
			topLevel[i].Replies = append(topLevel[i].Replies, c)
		}
	}
	return topLevel, nil
}

// Delete removes a comment and, if it was top-level, the replies under
// it. Strictly admin-only: even the comment's own author is refused.
// Returns the owning article id for the caller's redirect.
func (s *CommentService) Delete(commentID uint, requesterRole models.Role) (uint, error) {
	var comment models.Comment
	if err := s.db.First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}

	if !requesterRole.IsAdmin() {
		return 0, ErrUnauthorized
	}

	if err := s.db.Where("reply_to = ?", comment.ID).Delete(&models.Comment{}).Error; err != nil {
		return 0, err
	}
	if err := s.db.Delete(&comment).Error; err != nil {
		return 0, err
	}
	return comment.ArticleID, nil
}
