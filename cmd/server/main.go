package main

import (
	"html/template"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/raynaldlao/Blog-Comment/internal/db"
	"github.com/raynaldlao/Blog-Comment/internal/handlers"
	"github.com/raynaldlao/Blog-Comment/internal/middleware"
	"github.com/raynaldlao/Blog-Comment/internal/models"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	// Initialize Database
	db.Init()

	// Initialize Gin
	r := gin.Default()

	// Setup Sessions
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "secret_key_change_me"
	}
	store := cookie.NewStore([]byte(secret))
	r.Use(sessions.Sessions("blog_session", store))

	r.HTMLRender = loadTemplates("./web/templates")

	// Middleware
	r.Use(middleware.LoadUser())

	// Handlers
	authHandler := handlers.NewAuthHandler()
	articleHandler := handlers.NewArticleHandler()
	commentHandler := handlers.NewCommentHandler()

	// Public Routes
	r.GET("/", articleHandler.List)
	r.GET("/article/:id", articleHandler.Detail)

	r.GET("/signup", authHandler.ShowRegister)
	r.POST("/signup", authHandler.Register)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	// Publishing is gated to authors and admins; editing/deleting is
	// authorized inside the services with the caller's id and role.
	publish := r.Group("/article")
	publish.Use(middleware.RolesAccepted(models.RoleAdmin, models.RoleAuthor))
	{
		publish.GET("/new", articleHandler.ShowCreate)
		publish.POST("/new", articleHandler.Create)
	}

	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/article/:id/edit", articleHandler.ShowEdit)
		authorized.POST("/article/:id/edit", articleHandler.Update)
		authorized.POST("/article/:id/delete", articleHandler.Delete)

		authorized.POST("/comments/create/:article_id", commentHandler.Create)
		authorized.POST("/comments/reply/:parent_comment_id", commentHandler.Reply)
		authorized.POST("/comments/delete/:comment_id", commentHandler.Delete)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Blog server starting on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

func loadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
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
		"formatTime": func(t interface{}) string {
			timeVal, ok := t.(time.Time)
			if !ok {
				return ""
			}
			return timeVal.Format("2006-01-02 15:04")
		},
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s)
		},
	}

	r.AddFromFilesFuncs("auth/login.html", funcMap, assemble(templatesDir+"/views/auth/login.html")...)
	r.AddFromFilesFuncs("auth/register.html", funcMap, assemble(templatesDir+"/views/auth/register.html")...)

	r.AddFromFilesFuncs("article/list.html", funcMap, assemble(templatesDir+"/views/article/list.html")...)
	r.AddFromFilesFuncs("article/detail.html", funcMap, assemble(templatesDir+"/views/article/detail.html")...)
	r.AddFromFilesFuncs("article/form.html", funcMap, assemble(templatesDir+"/views/article/form.html")...)

	r.AddFromFilesFuncs("error.html", funcMap, assemble(templatesDir+"/views/error.html")...)

	return r
}
