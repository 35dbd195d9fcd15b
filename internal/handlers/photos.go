package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/snapgrove/backend/internal/database"
	"github.com/snapgrove/backend/internal/logger"
	"github.com/snapgrove/backend/internal/models"
	"github.com/snapgrove/backend/internal/util"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxUploadSize = 20 << 20 // 20 MiB

// UploadPhoto accepts a multipart image upload and creates a photo record
func (h *Handlers) UploadPhoto(c *gin.Context) {
	userID := c.GetString("user_id")

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		util.RespondBadRequest(c, "image file is required")
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		util.RespondBadRequest(c, "image exceeds maximum size of 20MB")
		return
	}

	title := c.PostForm("title")
	if title == "" {
		util.RespondValidationError(c, "title", "title is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	result, err := h.uploader.UploadPhoto(ctx, file, header, userID)
	if err != nil {
		logger.Log.Error("photo upload failed",
			logger.WithUserID(userID),
			zap.Error(err))
		util.RespondInternalError(c, "failed to store image")
		return
	}

	photo := models.Photo{
		UserID:           userID,
		Title:            title,
		Description:      c.PostForm("description"),
		ImageURL:         result.URL,
		StorageKey:       result.Key,
		OriginalFilename: header.Filename,
		FileSize:         result.Size,
		Category:         c.PostForm("category"),
		Tags:             models.StringArray(c.PostFormArray("tags")),
		IsPublic:         c.PostForm("is_public") != "false",
		ModerationStatus: models.PhotoStatusActive,
	}

	if err := database.DB.Create(&photo).Error; err != nil {
		logger.Log.Error("failed to persist photo",
			logger.WithUserID(userID),
			zap.Error(err))
		// Best effort: don't leave an orphaned object behind
		if delErr := h.uploader.DeleteFile(ctx, result.Key); delErr != nil {
			logger.Log.Warn("failed to delete orphaned upload",
				zap.String("key", result.Key),
				zap.Error(delErr))
		}
		util.RespondInternalError(c, "failed to save photo")
		return
	}

	database.DB.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("photo_count", gorm.Expr("photo_count + 1"))

	logger.Log.Info("photo uploaded",
		logger.WithUserID(userID),
		logger.WithPhotoID(photo.ID),
		zap.Int64("size", result.Size))

	c.JSON(http.StatusCreated, photo)
}

// ListPhotos returns a browse page of public photos, optionally filtered
// by category, tag, or owner. Sort is newest first or most favorited.
func (h *Handlers) ListPhotos(c *gin.Context) {
	limit, offset := util.ParsePagination(c.Query("limit"), c.Query("offset"), 100)

	query := database.DB.Model(&models.Photo{}).
		Where("is_public = ? AND moderation_status = ?", true, models.PhotoStatusActive).
		Preload("User")

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if userID := c.Query("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if tag := c.Query("tag"); tag != "" {
		if database.DB.Dialector.Name() == "postgres" {
			query = query.Where("? = ANY(tags)", tag)
		} else {
			query = query.Where("tags LIKE ?", "%"+tag+"%")
		}
	}

	switch c.DefaultQuery("sort", "recent") {
	case "popular":
		query = query.Order("favorite_count DESC, created_at DESC")
	default:
		query = query.Order("created_at DESC")
	}

	var total int64
	query.Count(&total)

	var photos []models.Photo
	if err := query.Limit(limit).Offset(offset).Find(&photos).Error; err != nil {
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

// GetPhoto returns a single photo and bumps its view count
func (h *Handlers) GetPhoto(c *gin.Context) {
	photoID := c.Param("id")
	viewerID := c.GetString("user_id")

	var photo models.Photo
	err := database.DB.Preload("User").Where("id = ?", photoID).First(&photo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondNotFound(c, "photo")
		return
	}
	if err != nil {
		util.RespondInternalError(c, "failed to load photo")
		return
	}

	if photo.ModerationStatus == models.PhotoStatusRemoved {
		util.RespondNotFound(c, "photo")
		return
	}
	if !photo.IsPublic && photo.UserID != viewerID {
		util.RespondNotFound(c, "photo")
		return
	}

	database.DB.Model(&models.Photo{}).Where("id = ?", photoID).
		UpdateColumn("view_count", gorm.Expr("view_count + 1"))
	photo.ViewCount++

	c.JSON(http.StatusOK, photo)
}

// UpdatePhoto edits photo metadata (owner only)
func (h *Handlers) UpdatePhoto(c *gin.Context) {
	userID := c.GetString("user_id")
	photoID := c.Param("id")

	var req struct {
		Title       *string   `json:"title"`
		Description *string   `json:"description"`
		Category    *string   `json:"category"`
		Tags        *[]string `json:"tags"`
		IsPublic    *bool     `json:"is_public"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	var photo models.Photo
	err := database.DB.Where("id = ?", photoID).First(&photo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondNotFound(c, "photo")
		return
	}
	if err != nil {
		util.RespondInternalError(c, "failed to load photo")
		return
	}
	if photo.UserID != userID {
		util.RespondForbidden(c, "not the photo owner")
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		if *req.Title == "" {
			util.RespondValidationError(c, "title", "title cannot be empty")
			return
		}
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Tags != nil {
		updates["tags"] = models.StringArray(*req.Tags)
	}
	if req.IsPublic != nil {
		updates["is_public"] = *req.IsPublic
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&photo).Updates(updates).Error; err != nil {
			util.RespondInternalError(c, "failed to update photo")
			return
		}
	}

	database.DB.Where("id = ?", photoID).First(&photo)
	c.JSON(http.StatusOK, photo)
}

// DeletePhoto removes a photo (owner only) along with its stored object
func (h *Handlers) DeletePhoto(c *gin.Context) {
	userID := c.GetString("user_id")
	photoID := c.Param("id")

	var photo models.Photo
	err := database.DB.Where("id = ?", photoID).First(&photo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondNotFound(c, "photo")
		return
	}
	if err != nil {
		util.RespondInternalError(c, "failed to load photo")
		return
	}
	if photo.UserID != userID {
		util.RespondForbidden(c, "not the photo owner")
		return
	}

	if err := database.DB.Delete(&photo).Error; err != nil {
		util.RespondInternalError(c, "failed to delete photo")
		return
	}

	database.DB.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("photo_count", gorm.Expr("photo_count - 1"))

	if photo.StorageKey != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.uploader.DeleteFile(ctx, photo.StorageKey); err != nil {
			logger.Log.Warn("failed to delete photo object",
				zap.String("key", photo.StorageKey),
				zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted", "photo_id": photoID})
}
