package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snapgrove/backend/internal/database"
	"github.com/snapgrove/backend/internal/models"
	"github.com/snapgrove/backend/internal/util"
	"gorm.io/gorm"
)

// CreateCollection creates a new collection for the authenticated user
func (h *Handlers) CreateCollection(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		Title       string `json:"title" binding:"required,max=120"`
		Description string `json:"description"`
		IsPublic    *bool  `json:"is_public"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	collection := models.Collection{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		IsPublic:    req.IsPublic == nil || *req.IsPublic,
	}
	if err := database.DB.Create(&collection).Error; err != nil {
		util.RespondInternalError(c, "failed to create collection")
		return
	}

	c.JSON(http.StatusCreated, collection)
}

// ListCollections returns public collections, optionally for one user.
// Owners also see their private collections.
func (h *Handlers) ListCollections(c *gin.Context) {
	viewerID := c.GetString("user_id")
	limit, offset := util.ParsePagination(c.Query("limit"), c.Query("offset"), 100)

	query := database.DB.Model(&models.Collection{}).Preload("User")

	if ownerID := c.Query("user_id"); ownerID != "" {
		query = query.Where("user_id = ?", ownerID)
		if ownerID != viewerID {
			query = query.Where("is_public = ?", true)
		}
	} else {
		query = query.Where("is_public = ?", true)
	}

	var total int64
	query.Count(&total)

	var collections []models.Collection
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&collections).Error; err != nil {
		util.RespondInternalError(c, "failed to list collections")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"collections": collections,
		"total":       total,
		"limit":       limit,
		"offset":      offset,
	})
}

// GetCollection returns a collection with its photos in sort order
func (h *Handlers) GetCollection(c *gin.Context) {
	collectionID := c.Param("id")
	viewerID := c.GetString("user_id")

	var collection models.Collection
	err := database.DB.Preload("User").Where("id = ?", collectionID).First(&collection).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondNotFound(c, "collection")
		return
	}
	if err != nil {
		util.RespondInternalError(c, "failed to load collection")
		return
	}
	if !collection.IsPublic && collection.UserID != viewerID {
		util.RespondNotFound(c, "collection")
		return
	}

	var entries []models.CollectionPhoto
	if err := database.DB.Preload("Photo").Preload("Photo.User").
		Where("collection_id = ?", collectionID).
		Order("sort_order ASC, created_at ASC").
		Find(&entries).Error; err != nil {
		util.RespondInternalError(c, "failed to load collection photos")
		return
	}

	photos := make([]models.Photo, 0, len(entries))
	for _, entry := range entries {
		if entry.Photo.ModerationStatus == models.PhotoStatusActive {
			photos = append(photos, entry.Photo)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"collection": collection,
		"photos":     photos,
	})
}

// UpdateCollection edits collection metadata (owner only)
func (h *Handlers) UpdateCollection(c *gin.Context) {
	userID := c.GetString("user_id")
	collectionID := c.Param("id")

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		IsPublic    *bool   `json:"is_public"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	collection, ok := h.loadOwnedCollection(c, collectionID, userID)
	if !ok {
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
	if req.IsPublic != nil {
		updates["is_public"] = *req.IsPublic
	}

	if len(updates) > 0 {
		if err := database.DB.Model(collection).Updates(updates).Error; err != nil {
			util.RespondInternalError(c, "failed to update collection")
			return
		}
	}

	database.DB.Where("id = ?", collectionID).First(collection)
	c.JSON(http.StatusOK, collection)
}

// DeleteCollection removes a collection and its photo links (owner only)
func (h *Handlers) DeleteCollection(c *gin.Context) {
	userID := c.GetString("user_id")
	collectionID := c.Param("id")

	collection, ok := h.loadOwnedCollection(c, collectionID, userID)
	if !ok {
		return
	}

	if err := database.DB.Where("collection_id = ?", collectionID).
		Delete(&models.CollectionPhoto{}).Error; err != nil {
		util.RespondInternalError(c, "failed to delete collection photos")
		return
	}
	if err := database.DB.Delete(collection).Error; err != nil {
		util.RespondInternalError(c, "failed to delete collection")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted", "collection_id": collectionID})
}

// AddPhotoToCollection appends a photo to a collection (owner only)
func (h *Handlers) AddPhotoToCollection(c *gin.Context) {
	userID := c.GetString("user_id")
	collectionID := c.Param("id")

	var req struct {
		PhotoID string `json:"photo_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	collection, ok := h.loadOwnedCollection(c, collectionID, userID)
	if !ok {
		return
	}

	var photo models.Photo
	err := database.DB.Where("id = ?", req.PhotoID).First(&photo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondNotFound(c, "photo")
		return
	}
	if err != nil {
		util.RespondInternalError(c, "failed to load photo")
		return
	}
	if !photo.IsPublic && photo.UserID != userID {
		util.RespondNotFound(c, "photo")
		return
	}

	var existing models.CollectionPhoto
	if err := database.DB.Where("collection_id = ? AND photo_id = ?", collectionID, req.PhotoID).
		First(&existing).Error; err == nil {
		util.RespondConflict(c, "photo already in collection")
		return
	}

	entry := models.CollectionPhoto{
		CollectionID: collectionID,
		PhotoID:      req.PhotoID,
		SortOrder:    collection.PhotoCount,
	}
	if err := database.DB.Create(&entry).Error; err != nil {
		util.RespondInternalError(c, "failed to add photo")
		return
	}

	updates := map[string]interface{}{
		"photo_count": gorm.Expr("photo_count + 1"),
	}
	if collection.CoverPhotoID == nil {
		updates["cover_photo_id"] = req.PhotoID
	}
	database.DB.Model(&models.Collection{}).Where("id = ?", collectionID).Updates(updates)

	c.JSON(http.StatusCreated, entry)
}

// RemovePhotoFromCollection removes a photo from a collection (owner only)
func (h *Handlers) RemovePhotoFromCollection(c *gin.Context) {
	userID := c.GetString("user_id")
	collectionID := c.Param("id")
	photoID := c.Param("photoId")

	collection, ok := h.loadOwnedCollection(c, collectionID, userID)
	if !ok {
		return
	}

	result := database.DB.Where("collection_id = ? AND photo_id = ?", collectionID, photoID).
		Delete(&models.CollectionPhoto{})
	if result.Error != nil {
		util.RespondInternalError(c, "failed to remove photo")
		return
	}
	if result.RowsAffected == 0 {
		util.RespondNotFound(c, "photo in collection")
		return
	}

	updates := map[string]interface{}{
		"photo_count": gorm.Expr("photo_count - 1"),
	}
	if collection.CoverPhotoID != nil && *collection.CoverPhotoID == photoID {
		updates["cover_photo_id"] = nil
	}
	database.DB.Model(&models.Collection{}).Where("id = ?", collectionID).Updates(updates)

	c.JSON(http.StatusOK, gin.H{"status": "removed", "photo_id": photoID})
}

// loadOwnedCollection fetches a collection and enforces ownership,
// writing the error response itself when the check fails
func (h *Handlers) loadOwnedCollection(c *gin.Context, collectionID, userID string) (*models.Collection, bool) {
	var collection models.Collection
	err := database.DB.Where("id = ?", collectionID).First(&collection).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondNotFound(c, "collection")
		return nil, false
	}
	if err != nil {
		util.RespondInternalError(c, "failed to load collection")
		return nil, false
	}
	if collection.UserID != userID {
		util.RespondForbidden(c, "not the collection owner")
		return nil, false
	}
	return &collection, true
}
