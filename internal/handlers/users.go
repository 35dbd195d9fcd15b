package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/snapgrove/backend/internal/database"
	"github.com/snapgrove/backend/internal/logger"
	"github.com/snapgrove/backend/internal/models"
	"github.com/snapgrove/backend/internal/util"
	"go.uber.org/zap"
)

// UpdateProfile edits the authenticated user's profile
func (h *Handlers) UpdateProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		DisplayName *string `json:"display_name"`
		Bio         *string `json:"bio"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.DisplayName != nil {
		if *req.DisplayName == "" {
			util.RespondValidationError(c, "display_name", "display name cannot be empty")
			return
		}
		updates["display_name"] = *req.DisplayName
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&models.User{}).Where("id = ?", userID).
			Updates(updates).Error; err != nil {
			util.RespondInternalError(c, "failed to update profile")
			return
		}
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		util.RespondInternalError(c, "failed to load profile")
		return
	}
	c.JSON(http.StatusOK, user)
}

// UploadAvatar replaces the authenticated user's avatar image
func (h *Handlers) UploadAvatar(c *gin.Context) {
	userID := c.GetString("user_id")

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		util.RespondBadRequest(c, "image file is required")
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	result, err := h.uploader.UploadAvatar(ctx, file, header, userID)
	if err != nil {
		logger.Log.Error("avatar upload failed",
			logger.WithUserID(userID),
			zap.Error(err))
		util.RespondInternalError(c, "failed to store avatar")
		return
	}

	if err := database.DB.Model(&models.User{}).Where("id = ?", userID).
		Update("avatar_url", result.URL).Error; err != nil {
		util.RespondInternalError(c, "failed to save avatar")
		return
	}

	c.JSON(http.StatusOK, gin.H{"avatar_url": result.URL})
}

// ListUserPhotos returns one user's public photos, newest first.
// Owners also see their private photos.
func (h *Handlers) ListUserPhotos(c *gin.Context) {
	targetID := c.Param("id")
	viewerID := c.GetString("user_id")
	limit, offset := util.ParsePagination(c.Query("limit"), c.Query("offset"), 100)

	query := database.DB.Model(&models.Photo{}).
		Where("user_id = ? AND moderation_status = ?", targetID, models.PhotoStatusActive)
	if targetID != viewerID {
		query = query.Where("is_public = ?", true)
	}

	var total int64
	query.Count(&total)

	var photos []models.Photo
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&photos).Error; err != nil {
		util.RespondInternalError(c, "failed to list photos")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"photos": photos,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}
