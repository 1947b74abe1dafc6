package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Flash message texts shown on the login form. Unknown email and wrong
// password are deliberately distinct, matching the long-standing behaviour
// clients depend on (a known account-enumeration trade-off).
const (
	flashUnknownEmail   = "That email does not exist, please try again."
	flashWrongPassword  = "Password incorrect, please try again."
	flashTooManyRetries = "Too many login attempts. Please try again later."
)

// isLocalPath validates that a redirect path is local to prevent open
// redirect attacks.
func isLocalPath(path string) bool {
	if path == "" {
		return false
	}
	if !strings.HasPrefix(path, "/") {
		return false
	}
	// Reject protocol-relative URLs (//evil.com)
	if strings.HasPrefix(path, "//") {
		return false
	}
	if strings.Contains(path, "://") {
		return false
	}
	if strings.Contains(path, "\\") {
		return false
	}
	return true
}

// sanitizeRedirectPath returns a safe redirect path, defaulting to /books.
func sanitizeRedirectPath(path string) string {
	if isLocalPath(path) {
		return path
	}
	return "/books"
}

// AuthController handles the registration, login and logout endpoints.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	rateLimiter    *RateLimiter
}

// NewAuthController creates a new authentication controller.
func NewAuthController(service *Service, sessionManager *SessionManager, rateLimiter *RateLimiter) *AuthController {
	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		rateLimiter:    rateLimiter,
	}
}

// RegisterPage renders the registration form.
func (ac *AuthController) RegisterPage(c *gin.Context) {
	if ac.sessionManager.IsAuthenticated(c.Request) {
		c.Redirect(http.StatusFound, "/books")
		return
	}

	c.HTML(http.StatusOK, "register", gin.H{
		"Title":     "Register",
		"CSRFToken": GetCSRFToken(c),
	})
}

// Register handles the registration form submission. On success the user is
// logged in immediately and sent to the catalog.
func (ac *AuthController) Register(c *gin.Context) {
	email := c.PostForm("email")
	name := c.PostForm("name")
	password := c.PostForm("password")

	user, err := ac.service.Register(email, name, password)
	if err != nil {
		errorMsg := "Failed to create account"
		switch {
		case errors.Is(err, ErrUserExists):
			errorMsg = "An account with that email already exists. Log in instead."
		case errors.Is(err, ErrEmailRequired):
			errorMsg = "Email is required"
		case errors.Is(err, ErrNameRequired):
			errorMsg = "Name is required"
		case errors.Is(err, ErrPasswordRequired):
			errorMsg = "Password is required"
		case errors.Is(err, ErrEmailInvalid):
			errorMsg = "Invalid email format"
		case errors.Is(err, ErrPasswordTooShort):
			errorMsg = "Password must be at least 8 characters"
		case errors.Is(err, ErrPasswordTooLong):
			errorMsg = "Password exceeds maximum length of 72 characters"
		}

		c.HTML(http.StatusOK, "register", gin.H{
			"Title":     "Register",
			"Email":     email,
			"Name":      name,
			"CSRFToken": GetCSRFToken(c),
			"Error":     errorMsg,
		})
		return
	}

	if err := ac.sessionManager.Establish(c.Request, user); err != nil {
		c.HTML(http.StatusOK, "register", gin.H{
			"Title":     "Register",
			"Email":     email,
			"Name":      name,
			"CSRFToken": GetCSRFToken(c),
			"Error":     "Failed to create session",
		})
		return
	}

	c.Redirect(http.StatusFound, "/books")
}

// LoginPage renders the login form.
func (ac *AuthController) LoginPage(c *gin.Context) {
	if ac.sessionManager.IsAuthenticated(c.Request) {
		c.Redirect(http.StatusFound, "/books")
		return
	}

	next := sanitizeRedirectPath(c.Query("next"))

	c.HTML(http.StatusOK, "login", gin.H{
		"Title":     "Login",
		"Next":      next,
		"CSRFToken": GetCSRFToken(c),
		"Flashes":   ac.sessionManager.PopFlashes(c.Request),
	})
}

// Login handles the login form submission. Failures flash a message and
// re-render the form without establishing a session.
func (ac *AuthController) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")
	next := sanitizeRedirectPath(c.PostForm("next"))
	clientIP := c.ClientIP()

	// Check rate limiting before attempting authentication
	if ac.rateLimiter != nil {
		allowed, retryAfter := ac.rateLimiter.Allow(clientIP, email)
		if !allowed {
			c.Header("Retry-After", retryAfter.String())
			ac.sessionManager.Flash(c.Request, flashTooManyRetries)
			ac.renderLogin(c, email, next)
			return
		}
	}

	user, err := ac.service.Authenticate(email, password)
	if err != nil {
		if ac.rateLimiter != nil {
			ac.rateLimiter.RecordFailure(clientIP, email)
		}

		switch {
		case errors.Is(err, ErrUserNotFound):
			ac.sessionManager.Flash(c.Request, flashUnknownEmail)
		case errors.Is(err, ErrInvalidPassword):
			ac.sessionManager.Flash(c.Request, flashWrongPassword)
		default:
			ac.sessionManager.Flash(c.Request, "Login failed. Please try again.")
		}

		ac.renderLogin(c, email, next)
		return
	}

	if ac.rateLimiter != nil {
		ac.rateLimiter.RecordSuccess(clientIP, email)
	}

	if err := ac.sessionManager.Establish(c.Request, user); err != nil {
		ac.sessionManager.Flash(c.Request, "Failed to create session")
		ac.renderLogin(c, email, next)
		return
	}

	c.HTML(http.StatusOK, "success", gin.H{
		"Title":   "Success",
		"Message": "Login is successful",
	})
}

// Logout destroys the session. Registered behind RequireAuth.
func (ac *AuthController) Logout(c *gin.Context) {
	_ = ac.sessionManager.DestroySession(c.Request)
	c.HTML(http.StatusOK, "success", gin.H{
		"Title":   "Success",
		"Message": "Logout is successful",
	})
}

func (ac *AuthController) renderLogin(c *gin.Context, email, next string) {
	c.HTML(http.StatusOK, "login", gin.H{
		"Title":     "Login",
		"Next":      next,
		"Email":     email,
		"CSRFToken": GetCSRFToken(c),
		"Flashes":   ac.sessionManager.PopFlashes(c.Request),
	})
}
