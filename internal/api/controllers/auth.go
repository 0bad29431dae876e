package controllers

import (
	"errors"
	"net/http"

	"site-panel/internal/auth"
	userservice "site-panel/internal/services/user_service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthController struct {
	userService *userservice.UserService
	tokens      *auth.TokenManager
	log         *zap.SugaredLogger
}

func NewAuthController(users *userservice.UserService, tokens *auth.TokenManager, log *zap.SugaredLogger) *AuthController {
	return &AuthController{
		userService: users,
		tokens:      tokens,
		log:         log,
	}
}

func (a *AuthController) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/login", a.Login)
}

type LoginParams struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login exchanges email and password for a bearer token. Every kind of bad
// input answers the same 401 so callers cannot tell which part was wrong.
func (a *AuthController) Login(c *gin.Context) {
	var loginParams LoginParams

	if err := c.ShouldBindJSON(&loginParams); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	user, err := a.userService.Authenticate(c.Request.Context(), loginParams.Email, loginParams.Password)
	if err != nil {
		if !errors.Is(err, userservice.ErrInvalidCredentials) {
			a.log.Errorw("login lookup failed", "email", loginParams.Email, "err", err)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	tokenString, err := a.tokens.Issue(user.Email)
	if err != nil {
		a.log.Errorw("token signing failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": tokenString})
}
