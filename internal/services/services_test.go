package services

import (
	"testing"

	"github.com/raynaldlao/Blog-Comment/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory database per test so the suites
// run without a postgres instance.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&models.Account{}, &models.Article{}, &models.Comment{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func makeAccount(t *testing.T, db *gorm.DB, username string, role models.Role) *models.Account {
	t.Helper()

	account := models.Account{
		Username: username,
		Password: "not-a-real-hash",
		Role:     role,
	}
	if err := db.Create(&account).Error; err != nil {
		t.Fatalf("failed to create account %s: %v", username, err)
	}
	return &account
}

func makeArticle(t *testing.T, db *gorm.DB, authorID uint, title string) *models.Article {
	t.Helper()

	article := models.Article{
		AuthorID: authorID,
		Title:    title,
		Content:  "content of " + title,
	}
	if err := db.Create(&article).Error; err != nil {
		t.Fatalf("failed to create article %s: %v", title, err)
	}
	return &article
}

func makeComment(t *testing.T, db *gorm.DB, articleID, authorID uint, content string, replyTo *uint) *models.Comment {
	t.Helper()

	comment := models.Comment{
		ArticleID: articleID,
		AuthorID:  authorID,
		Content:   content,
		ReplyTo:   replyTo,
	}
	if err := db.Create(&comment).Error; err != nil {
		t.Fatalf("failed to create comment %s: %v", content, err)
	}
	return &comment
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()

	var count int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&count).Error; err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	return count
}
