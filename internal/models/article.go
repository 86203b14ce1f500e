package models

import (
	"time"
)

type Article struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	AuthorID uint    `gorm:"not null;index" json:"author_id"`
	Author   Account `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Title    string  `gorm:"not null" json:"title"`
	Content  string  `gorm:"type:text;not null" json:"content"`

	Comments []Comment `gorm:"foreignKey:ArticleID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	// Primary sort key for listings, newest first.
	PublishedAt time.Time `gorm:"autoCreateTime" json:"published_at"`
}

// ArticleSummary is the listing projection: no body content, author
// username joined in so list pages need a single query.
type ArticleSummary struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	AuthorID       uint      `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	PublishedAt    time.Time `json:"published_at"`
}
