package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snapgrove/backend/internal/auth"
	"github.com/snapgrove/backend/internal/logger"
	"github.com/snapgrove/backend/internal/models"
	"github.com/snapgrove/backend/internal/util"
	"go.uber.org/zap"
)

// Register creates a new account and returns a token
func (h *Handlers) Register(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required,email"`
		Username    string `json:"username" binding:"required,min=3,max=30"`
		DisplayName string `json:"display_name"`
		Password    string `json:"password" binding:"required,min=8"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	resp, err := h.auth.Register(req.Email, req.Username, req.DisplayName, req.Password)
	if err != nil {
		logger.Log.Warn("registration failed",
			zap.String("email", req.Email),
			zap.Error(err))
		util.RespondConflict(c, "account")
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Login authenticates and returns a token
func (h *Handlers) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	resp, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUserBanned) {
			util.RespondForbidden(c, "account is banned")
			return
		}
		util.RespondUnauthorized(c, "invalid email or password")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Me returns the authenticated user's profile
func (h *Handlers) Me(c *gin.Context) {
	user, exists := c.Get("user")
	if !exists {
		util.RespondUnauthorized(c)
		return
	}
	c.JSON(http.StatusOK, user.(*models.User))
}
