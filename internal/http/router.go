package http

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avolkov/bookshelf/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by CSRF's
	// request replacement
	router.Use(cfg.SessionManager.SessionLoadSave())

	// Resolve the current identity for every request
	router.Use(cfg.AuthMiddleware.Identity())

	// Load HTML templates
	tmpl := template.Must(template.New("").ParseGlob(cfg.TemplatesPath + "/*.html"))
	router.SetHTMLTemplate(tmpl)

	// Serve static files
	router.Static("/static", cfg.StaticPath)

	// Controllers
	health := NewHealthController(cfg.Database, cfg.Version)
	booksController := NewBooksController(cfg.Database)
	authController := auth.NewAuthController(cfg.AuthService, cfg.SessionManager, cfg.RateLimiter)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Auth routes
	router.GET("/register", authController.RegisterPage)
	router.POST("/register", authController.Register)
	router.GET("/login", authController.LoginPage)
	router.POST("/login", authController.Login)
	router.GET("/logout", cfg.AuthMiddleware.RequireAuth(), authController.Logout)

	// Catalog routes
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/books")
	})
	router.GET("/books", booksController.ListBooks)
	router.GET("/edit", cfg.AuthMiddleware.RequireAuth(), booksController.EditPage)
	router.POST("/edit", cfg.AuthMiddleware.RequireAuth(), booksController.EditRating)

	// JSON API routes. The PATCH endpoint intentionally has no auth guard,
	// mirroring the form/API asymmetry the catalog has always had.
	router.GET("/query", booksController.QueryByAuthor)
	router.PATCH("/edit-uri/:book_id", booksController.UpdateRatingAPI)

	return router
}
