// File: /controllers/auth_controller.go
package controllers

import (
	"net/http"
	"time"

	"carrental-api/middleware"
	"carrental-api/services"
	"carrental-api/utils"
	"github.com/gin-gonic/gin"
)

// CookieOptions controls the session cookie.
type CookieOptions struct {
	Secure bool
	MaxAge time.Duration
}

type AuthController struct {
	authService *services.AuthService
	cookie      CookieOptions
}

func NewAuthController(authService *services.AuthService, cookie CookieOptions) *AuthController {
	return &AuthController{authService: authService, cookie: cookie}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (ac *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "All fields are required")
		return
	}

	user, token, err := ac.authService.Register(c.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendSuccess(c, http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user":    user,
		"token":   token,
	})
}

func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "All fields are required")
		return
	}

	user, token, err := ac.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		utils.SendError(c, err)
		return
	}

	ac.setSessionCookie(c, token, int(ac.cookie.MaxAge.Seconds()))
	utils.SendSuccess(c, http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    user,
		"token":   token,
	})
}

func (ac *AuthController) Me(c *gin.Context) {
	user, err := ac.authService.Me(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{"user": user})
}

// Logout clears the session cookie. Tokens are stateless, so a copied
// token stays valid until it expires.
func (ac *AuthController) Logout(c *gin.Context) {
	ac.setSessionCookie(c, "", -1)
	utils.SendMessage(c, "User logged out successfully")
}

func (ac *AuthController) setSessionCookie(c *gin.Context, value string, maxAge int) {
	if ac.cookie.Secure {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(middleware.SessionCookie, value, maxAge, "/", "", ac.cookie.Secure, true)
}
