package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/raynaldlao/Blog-Comment/internal/db"
	"github.com/raynaldlao/Blog-Comment/internal/middleware"
	"github.com/raynaldlao/Blog-Comment/internal/models"
	"github.com/raynaldlao/Blog-Comment/internal/services"
	"github.com/raynaldlao/Blog-Comment/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const articlesPerPage = 10

type ArticleHandler struct {
	editPolicy services.EditPolicy
}

func NewArticleHandler() *ArticleHandler {
	return &ArticleHandler{
		editPolicy: services.EditPolicyFromEnv(),
	}
}

func (h *ArticleHandler) articles(tx *gorm.DB) *services.ArticleService {
	return services.NewArticleService(tx, h.editPolicy)
}

// listCacheVersion is baked into every list page key; bumping it
// retires all cached list pages at once (the stale generation just
// ages out of the LRU).
var listCacheVersion atomic.Uint64

func listCacheKey(page int) string {
	return fmt.Sprintf("article:list:v%d:page:%d", listCacheVersion.Load(), page)
}

// invalidatePages retires the cached list pages and one detail page
// after a mutation.
func invalidatePages(articleID uint) {
	listCacheVersion.Add(1)
	if articleID > 0 {
		utils.GetCache().Delete(fmt.Sprintf("article:detail:%d", articleID))
	}
}

func (h *ArticleHandler) List(c *gin.Context) {
	page := utils.StringToInt(c.Query("page"))
	if page < 1 {
		page = 1
	}

	cacheKey := listCacheKey(page)
	if cachedData := utils.GetCache().Get(cacheKey); cachedData != nil {
		if hData, ok := cachedData.(gin.H); ok {
			Render(c, http.StatusOK, "article/list.html", hData)
			return
		}
	}

	summaries, total, err := h.articles(db.DB).ListPage(page, articlesPerPage)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to load articles")
		return
	}

	totalPages := int(math.Ceil(float64(total) / float64(articlesPerPage)))
	if totalPages == 0 {
		totalPages = 1
	}

	renderData := gin.H{
		"Articles":    summaries,
		"Title":       "Articles",
		"CurrentPage": page,
		"TotalPages":  totalPages,
		"Total":       total,
	}
	utils.GetCache().Set(cacheKey, renderData, 1*time.Minute)

	Render(c, http.StatusOK, "article/list.html", renderData)
}

func (h *ArticleHandler) Detail(c *gin.Context) {
	articleID := utils.StringToUint(c.Param("id"))

	cacheKey := fmt.Sprintf("article:detail:%d", articleID)
	if cachedData := utils.GetCache().Get(cacheKey); cachedData != nil {
		if hData, ok := cachedData.(gin.H); ok {
			Render(c, http.StatusOK, "article/detail.html", hData)
			return
		}
	}

	article, err := h.articles(db.DB).GetDetail(articleID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			RenderError(c, http.StatusNotFound, "Article not found")
			return
		}
		RenderError(c, http.StatusInternalServerError, "Failed to load article")
		return
	}

	thread, err := services.NewCommentService(db.DB).GetThread(article.ID)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to load comments")
		return
	}

	type CommentView struct {
		models.Comment
		ContentHTML template.HTML
		Replies     []CommentView
	}

	views := make([]CommentView, len(thread))
	for i, parent := range thread {
		replies := make([]CommentView, len(parent.Replies))
		for j, r := range parent.Replies {
			replies[j] = CommentView{Comment: r, ContentHTML: utils.RenderMarkdown(r.Content)}
		}
		views[i] = CommentView{
			Comment:     parent,
			ContentHTML: utils.RenderMarkdown(parent.Content),
			Replies:     replies,
		}
	}

	renderData := gin.H{
		"Article":        article,
		"ArticleContent": utils.RenderMarkdown(article.Content),
		"Comments":       views,
		"Title":          article.Title,
	}
	utils.GetCache().Set(cacheKey, renderData, 5*time.Minute)

	Render(c, http.StatusOK, "article/detail.html", renderData)
}

func (h *ArticleHandler) ShowCreate(c *gin.Context) {
	Render(c, http.StatusOK, "article/form.html", gin.H{"Title": "New article"})
}

func (h *ArticleHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.Account)

	title := c.PostForm("title")
	content := c.PostForm("content")

	var article *models.Article
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		article, err = h.articles(tx).Create(title, content, user.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, services.ErrEmptyContent) {
			Render(c, http.StatusBadRequest, "article/form.html", gin.H{
				"Error": "Title and content are required",
				"Title": "New article",
			})
			return
		}
		RenderError(c, http.StatusInternalServerError, "Failed to publish article")
		return
	}

	invalidatePages(0)
	c.Redirect(http.StatusFound, fmt.Sprintf("/article/%d", article.ID))
}

func (h *ArticleHandler) ShowEdit(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.Account)
	articleID := utils.StringToUint(c.Param("id"))

	article, err := h.articles(db.DB).GetDetail(articleID)
	if err != nil {
		RenderError(c, http.StatusNotFound, "Article not found")
		return
	}
	if article.AuthorID != user.ID && !(h.editPolicy == services.EditOwnerOrAdmin && user.Role.IsAdmin()) {
		RenderError(c, http.StatusForbidden, "You cannot edit this article")
		return
	}

	Render(c, http.StatusOK, "article/form.html", gin.H{
		"Title":   "Edit article",
		"Article": article,
	})
}

func (h *ArticleHandler) Update(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.Account)
	articleID := utils.StringToUint(c.Param("id"))

	title := c.PostForm("title")
	content := c.PostForm("content")

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		_, err := h.articles(tx).Update(articleID, user.ID, user.Role, title, content)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			RenderError(c, http.StatusNotFound, "Article not found")
		case errors.Is(err, services.ErrUnauthorized):
			RenderError(c, http.StatusForbidden, "You cannot edit this article")
		case errors.Is(err, services.ErrEmptyContent):
			RenderError(c, http.StatusBadRequest, "Title and content are required")
		default:
			RenderError(c, http.StatusInternalServerError, "Failed to update article")
		}
		return
	}

	invalidatePages(articleID)
	c.Redirect(http.StatusFound, fmt.Sprintf("/article/%d", articleID))
}

func (h *ArticleHandler) Delete(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.Account)
	articleID := utils.StringToUint(c.Param("id"))

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		return h.articles(tx).Delete(articleID, user.ID, user.Role)
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			RenderError(c, http.StatusNotFound, "Article not found")
		case errors.Is(err, services.ErrUnauthorized):
			RenderError(c, http.StatusForbidden, "You cannot delete this article")
		default:
			RenderError(c, http.StatusInternalServerError, "Failed to delete article")
		}
		return
	}

	invalidatePages(articleID)
	c.Redirect(http.StatusFound, "/")
}
