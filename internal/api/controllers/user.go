package controllers

import (
	"errors"
	"net/http"
	"strconv"

	userservice "site-panel/internal/services/user_service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserController struct {
	userService *userservice.UserService
	log         *zap.SugaredLogger
}

func NewUserController(users *userservice.UserService, log *zap.SugaredLogger) *UserController {
	return &UserController{
		userService: users,
		log:         log,
	}
}

// RegisterRoutes registers the operator management routes behind guard.
func (u *UserController) RegisterRoutes(group *gin.RouterGroup, guard gin.HandlerFunc) {
	// /usuarios
	userGroup := group.Group("/usuarios", guard)
	{
		userGroup.GET("", u.ListUsers)
		userGroup.POST("", u.CreateUser)
		userGroup.DELETE("/:id", u.DeleteUser)
	}
}

// ListUsers answers every operator as {id, email}, oldest first.
func (u *UserController) ListUsers(ctx *gin.Context) {
	users, err := u.userService.List(ctx.Request.Context())
	if err != nil {
		u.log.Errorw("list users failed", "err", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not list users"})
		return
	}

	ctx.JSON(http.StatusOK, users)
}

type CreateUserRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (u *UserController) CreateUser(ctx *gin.Context) {
	var req CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	user, err := u.userService.Create(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, userservice.ErrEmailTaken) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "email already exists"})
			return
		}
		if errors.Is(err, userservice.ErrPasswordTooLong) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "password must be at most 72 bytes"})
			return
		}
		u.log.Errorw("create user failed", "email", req.Email, "err", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user"})
		return
	}

	ctx.JSON(http.StatusCreated, user)
}

// DeleteUser is idempotent. An id that is not a number cannot match a row
// and is answered like any other missing id.
func (u *UserController) DeleteUser(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.Status(http.StatusNoContent)
		return
	}

	if err := u.userService.Delete(ctx.Request.Context(), uint(id)); err != nil {
		u.log.Errorw("delete user failed", "id", id, "err", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete user"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
