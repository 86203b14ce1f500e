package handlers

import (
	"fmt"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/raynaldlao/Blog-Comment/internal/db"
	"github.com/raynaldlao/Blog-Comment/internal/middleware"
	"github.com/raynaldlao/Blog-Comment/internal/models"
	"github.com/raynaldlao/Blog-Comment/internal/utils"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const templatesDir = "../../web/templates"

func loadTestTemplates(t *testing.T) multitemplate.Renderer {
	t.Helper()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil || len(layouts) == 0 {
		t.Fatalf("failed to locate layouts: %v", err)
	}

	assemble := func(view string) []string {
		files := make([]string, 0, len(layouts)+1)
		files = append(files, layouts...)
		files = append(files, view)
		return files
	}

	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"formatTime": func(v interface{}) string {
			timeVal, ok := v.(time.Time)
			if !ok {
				return ""
			}
			return timeVal.Format("2006-01-02 15:04")
		},
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s)
		},
	}

	r := multitemplate.NewRenderer()
	r.AddFromFilesFuncs("article/list.html", funcMap, assemble(templatesDir+"/views/article/list.html")...)
	r.AddFromFilesFuncs("article/form.html", funcMap, assemble(templatesDir+"/views/article/form.html")...)
	r.AddFromFilesFuncs("auth/login.html", funcMap, assemble(templatesDir+"/views/auth/login.html")...)
	r.AddFromFilesFuncs("error.html", funcMap, assemble(templatesDir+"/views/error.html")...)
	return r
}

// newTestRouter wires the handlers the way cmd/server does, on top of
// an in-memory database, and resets the shared page cache.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := gdb.AutoMigrate(&models.Account{}, &models.Article{}, &models.Comment{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	db.DB = gdb
	utils.GetCache().Purge()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("blog_session", cookie.NewStore([]byte("test-secret"))))
	r.HTMLRender = loadTestTemplates(t)
	r.Use(middleware.LoadUser())

	authHandler := NewAuthHandler()
	articleHandler := NewArticleHandler()

	r.GET("/", articleHandler.List)
	r.POST("/login", authHandler.Login)

	publish := r.Group("/article")
	publish.Use(middleware.RolesAccepted(models.RoleAdmin, models.RoleAuthor))
	publish.POST("/new", articleHandler.Create)

	return r
}

func seedAuthor(t *testing.T, username, password string) *models.Account {
	t.Helper()

	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	account := models.Account{Username: username, Password: hash, Role: models.RoleAuthor}
	if err := db.DB.Create(&account).Error; err != nil {
		t.Fatalf("failed to create account: %v", err)
	}
	return &account
}

// loginAs returns the session cookies of a fresh login.
func loginAs(t *testing.T, r *gin.Engine, username, password string) []*http.Cookie {
	t.Helper()

	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusFound {
		t.Fatalf("login as %s failed with status %d", username, w.Code)
	}
	return w.Result().Cookies()
}

func get(r *gin.Engine, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postForm(r *gin.Engine, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// A logged-in visitor priming the list cache must not leak their
// identity into the page an anonymous visitor gets on the cache hit.
func TestCachedListOmitsViewerIdentity(t *testing.T) {
	r := newTestRouter(t)
	alice := seedAuthor(t, "alice", "hunter22")
	db.DB.Create(&models.Article{AuthorID: alice.ID, Title: "Hello", Content: "World"})

	cookies := loginAs(t, r, "alice", "hunter22")

	// Alice's request fills the cache and sees her own nav entries.
	w := get(r, "/", cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("logged-in list failed with status %d", w.Code)
	}
	if body := w.Body.String(); !strings.Contains(body, "alice (author)") || !strings.Contains(body, "Logout") {
		t.Fatalf("logged-in page missing identity:\n%s", body)
	}

	// The anonymous cache hit must render an anonymous page.
	w = get(r, "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("anonymous list failed with status %d", w.Code)
	}
	body := w.Body.String()
	if strings.Contains(body, "alice (author)") || strings.Contains(body, "Logout") {
		t.Errorf("anonymous visitor sees the previous viewer's identity:\n%s", body)
	}
	if strings.Contains(body, "New article") {
		t.Errorf("anonymous visitor sees author-only links:\n%s", body)
	}
	if !strings.Contains(body, "Login") {
		t.Errorf("anonymous page missing login link:\n%s", body)
	}
	// The cached article listing itself is still served.
	if !strings.Contains(body, "Hello") {
		t.Errorf("anonymous page missing the article listing:\n%s", body)
	}
}

// Publishing must retire every cached list page, not just the first.
func TestListCacheInvalidationCoversAllPages(t *testing.T) {
	r := newTestRouter(t)
	alice := seedAuthor(t, "alice", "hunter22")
	for i := 1; i <= 11; i++ {
		db.DB.Create(&models.Article{AuthorID: alice.ID, Title: fmt.Sprintf("Old %02d", i), Content: "body"})
	}

	// Prime page 2 of the listing: with 11 articles at 10 per page it
	// holds only the oldest one.
	w := get(r, "/?page=2", nil)
	if body := w.Body.String(); !strings.Contains(body, "Old 01") || strings.Contains(body, "Old 02") {
		t.Fatalf("unexpected second page before publishing:\n%s", body)
	}

	cookies := loginAs(t, r, "alice", "hunter22")
	form := url.Values{"title": {"Fresh"}, "content": {"just published"}}
	if w := postForm(r, "/article/new", form, cookies); w.Code != http.StatusFound {
		t.Fatalf("publish failed with status %d", w.Code)
	}

	// The new article shifts Old 02 onto page 2; a stale cache entry
	// would still show only Old 01.
	w = get(r, "/?page=2", nil)
	if body := w.Body.String(); !strings.Contains(body, "Old 02") {
		t.Errorf("second page still stale after publishing:\n%s", body)
	}
}
