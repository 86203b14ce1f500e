package handlers

import (
	"errors"
	"net/http"

	"github.com/raynaldlao/Blog-Comment/internal/db"
	"github.com/raynaldlao/Blog-Comment/internal/models"
	"github.com/raynaldlao/Blog-Comment/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	account, err := services.NewAuthService(db.DB).Authenticate(username, password)
	if err != nil {
		// Same message for unknown user and wrong password.
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{"Error": "Invalid username or password"})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", account.ID)
	session.Set("role", account.Role.String())
	session.Save()

	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	Render(c, http.StatusOK, "auth/register.html", nil)
}

func (h *AuthHandler) Register(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	email := c.PostForm("email")

	// Self-registration can pick author or user; admin only via seeding.
	role := models.RoleUser
	if r, err := models.ParseRole(c.PostForm("role")); err == nil && r != models.RoleAdmin {
		role = r
	}

	if len(password) < 6 {
		Render(c, http.StatusBadRequest, "auth/register.html", gin.H{"Error": "Password must be at least 6 characters"})
		return
	}

	var account *models.Account
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		account, err = services.NewAccountService(tx).Register(username, password, email, role)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			Render(c, http.StatusConflict, "auth/register.html", gin.H{"Error": "Username already taken"})
		case errors.Is(err, services.ErrEmptyContent):
			Render(c, http.StatusBadRequest, "auth/register.html", gin.H{"Error": "Username and password are required"})
		default:
			Render(c, http.StatusInternalServerError, "auth/register.html", gin.H{"Error": "Registration failed"})
		}
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", account.ID)
	session.Set("role", account.Role.String())
	session.Save()

	c.Redirect(http.StatusFound, "/")
}
