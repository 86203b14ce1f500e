package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/raynaldlao/Blog-Comment/internal/db"
	"github.com/raynaldlao/Blog-Comment/internal/middleware"
	"github.com/raynaldlao/Blog-Comment/internal/models"
	"github.com/raynaldlao/Blog-Comment/internal/services"
	"github.com/raynaldlao/Blog-Comment/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CommentHandler struct{}

func NewCommentHandler() *CommentHandler {
	return &CommentHandler{}
}

// Create posts a top-level comment on an article.
func (h *CommentHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.Account)
	articleID := utils.StringToUint(c.Param("article_id"))
	content := c.PostForm("content")

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		_, err := services.NewCommentService(tx).CreateTopLevel(articleID, user.ID, content)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrArticleNotFound):
			RenderError(c, http.StatusNotFound, "Article not found")
		case errors.Is(err, services.ErrEmptyContent):
			c.Redirect(http.StatusFound, fmt.Sprintf("/article/%d", articleID))
		default:
			RenderError(c, http.StatusInternalServerError, "Failed to add comment")
		}
		return
	}

	utils.GetCache().Delete(fmt.Sprintf("article:detail:%d", articleID))
	c.Redirect(http.StatusFound, fmt.Sprintf("/article/%d", articleID))
}

// Reply posts a reply to an existing comment. The owning article comes
// back from the service; the form never supplies it.
func (h *CommentHandler) Reply(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.Account)
	parentID := utils.StringToUint(c.Param("parent_comment_id"))
	content := c.PostForm("content")

	var articleID uint
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		articleID, err = services.NewCommentService(tx).CreateReply(parentID, user.ID, content)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrParentNotFound):
			RenderError(c, http.StatusNotFound, "Comment not found")
		case errors.Is(err, services.ErrEmptyContent):
			c.Redirect(http.StatusFound, "/")
		default:
			RenderError(c, http.StatusInternalServerError, "Failed to add reply")
		}
		return
	}

	utils.GetCache().Delete(fmt.Sprintf("article:detail:%d", articleID))
	c.Redirect(http.StatusFound, fmt.Sprintf("/article/%d", articleID))
}

// Delete removes a comment. Admin only; even the author is refused.
func (h *CommentHandler) Delete(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.Account)
	commentID := utils.StringToUint(c.Param("comment_id"))

	var articleID uint
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		articleID, err = services.NewCommentService(tx).Delete(commentID, user.Role)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			RenderError(c, http.StatusNotFound, "Comment not found")
		case errors.Is(err, services.ErrUnauthorized):
			RenderError(c, http.StatusForbidden, "Only an admin can delete comments")
		default:
			RenderError(c, http.StatusInternalServerError, "Failed to delete comment")
		}
		return
	}

	utils.GetCache().Delete(fmt.Sprintf("article:detail:%d", articleID))
	c.Redirect(http.StatusFound, fmt.Sprintf("/article/%d", articleID))
}
