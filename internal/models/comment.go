package models

import (
	"time"
)

type Comment struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	ArticleID uint    `gorm:"not null;index" json:"article_id"`
	Article   Article `gorm:"foreignKey:ArticleID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	AuthorID  uint    `gorm:"not null;index" json:"author_id"`
	Author    Account `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`

	// Nil for top-level comments. Threads are flattened to two levels:
	// a reply always points at a top-level comment of the same article.
	ReplyTo *uint     `gorm:"index" json:"reply_to"`
	Replies []Comment `gorm:"foreignKey:ReplyTo;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"replies"`

	Content  string    `gorm:"type:text;not null" json:"content"`
	PostedAt time.Time `gorm:"autoCreateTime" json:"posted_at"`
}

// TopLevel reports whether the comment starts a thread.
func (c *Comment) TopLevel() bool {
	return c.ReplyTo == nil
}
