package handlers

import (
	"github.com/raynaldlao/Blog-Comment/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Render helper to inject common variables like 'current user'. The
// per-request values go into a fresh map: obj may be a shared cache
// entry, which must never be mutated or carry one visitor's identity
// into another visitor's page.
func Render(c *gin.Context, code int, name string, obj gin.H) {
	data := gin.H{}
	for k, v := range obj {
		data[k] = v
	}

	if user, exists := c.Get(middleware.CheckUserKey); exists {
		data["CurrentUser"] = user
	}
	data["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, data)
}

// RenderError renders the shared error page.
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Error": message})
}
