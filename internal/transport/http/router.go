package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/sweetshop/backend/internal/handlers"
	authmw "github.com/sweetshop/backend/internal/middleware/auth"
)

type Deps struct {
	DB            *gorm.DB
	AuthHandler   *handlers.AuthHandler
	SweetHandler  *handlers.SweetHandler
	SearchHandler *handlers.SearchHandler
	Auth          *authmw.Middleware
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/logout", d.AuthHandler.Logout)
	auth.GET("/me", d.AuthHandler.Me, d.Auth.Authenticate)

	sweets := api.Group("/sweets")
	sweets.GET("", d.SweetHandler.List)
	sweets.GET("/search", d.SweetHandler.Search)
	if d.SearchHandler != nil {
		sweets.GET("/fulltext", d.SearchHandler.Fulltext)
	}
	sweets.POST("/:id/purchase", d.SweetHandler.Purchase, d.Auth.Authenticate)

	admin := sweets.Group("", d.Auth.Authenticate, d.Auth.AdminOnly)
	admin.POST("", d.SweetHandler.Create)
	admin.PUT("/:id", d.SweetHandler.Update)
	admin.DELETE("/:id", d.SweetHandler.Delete)
	admin.POST("/:id/restock", d.SweetHandler.Restock)
}
