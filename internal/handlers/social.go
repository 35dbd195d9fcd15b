package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snapgrove/backend/internal/database"
	"github.com/snapgrove/backend/internal/logger"
	"github.com/snapgrove/backend/internal/models"
	"github.com/snapgrove/backend/internal/util"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FavoritePhoto marks a photo as favorited by the authenticated user
func (h *Handlers) FavoritePhoto(c *gin.Context) {
	userID := c.GetString("user_id")
	photoID := c.Param("id")

	var photo models.Photo
	err := database.DB.Where("id = ? AND moderation_status = ?", photoID, models.PhotoStatusActive).
		First(&photo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondNotFound(c, "photo")
		return
	}
	if err != nil {
		util.RespondInternalError(c, "failed to load photo")
		return
	}

	var existing models.Favorite
	if err := database.DB.Where("user_id = ? AND photo_id = ?", userID, photoID).
		First(&existing).Error; err == nil {
		util.RespondConflict(c, "favorite")
		return
	}

	favorite := models.Favorite{UserID: userID, PhotoID: photoID}
	if err := database.DB.Create(&favorite).Error; err != nil {
		util.RespondInternalError(c, "failed to favorite photo")
		return
	}

	database.DB.Model(&models.Photo{}).Where("id = ?", photoID).
		UpdateColumn("favorite_count", gorm.Expr("favorite_count + 1"))

	// Notify the photo owner, skipping self-favorites
	if photo.UserID != userID {
		h.createNotification(photo.UserID, userID, models.NotificationFavorite,
			models.ReportTargetPhoto, photoID, "favorited your photo")
	}

	c.JSON(http.StatusCreated, gin.H{"status": "favorited", "photo_id": photoID})
}

// UnfavoritePhoto removes a favorite
func (h *Handlers) UnfavoritePhoto(c *gin.Context) {
	userID := c.GetString("user_id")
	photoID := c.Param("id")

	result := database.DB.Where("user_id = ? AND photo_id = ?", userID, photoID).
		Delete(&models.Favorite{})
	if result.Error != nil {
		util.RespondInternalError(c, "failed to unfavorite photo")
		return
	}
	if result.RowsAffected == 0 {
		util.RespondNotFound(c, "favorite")
		return
	}

	database.DB.Model(&models.Photo{}).Where("id = ?", photoID).
		UpdateColumn("favorite_count", gorm.Expr("favorite_count - 1"))

	c.JSON(http.StatusOK, gin.H{"status": "unfavorited", "photo_id": photoID})
}

// ListFavorites returns the authenticated user's favorited photos
func (h *Handlers) ListFavorites(c *gin.Context) {
	userID := c.GetString("user_id")
	limit, offset := util.ParsePagination(c.Query("limit"), c.Query("offset"), 100)

	var favorites []models.Favorite
	if err := database.DB.Preload("Photo").Preload("Photo.User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&favorites).Error; err != nil {
		util.RespondInternalError(c, "failed to list favorites")
		return
	}

	photos := make([]models.Photo, 0, len(favorites))
	for _, favorite := range favorites {
		if favorite.Photo.ModerationStatus == models.PhotoStatusActive {
			photos = append(photos, favorite.Photo)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"photos": photos,
		"limit":  limit,
		"offset": offset,
	})
}

// FollowUser follows another user
func (h *Handlers) FollowUser(c *gin.Context) {
	userID := c.GetString("user_id")
	targetID := c.Param("id")

	if targetID == userID {
		util.RespondBadRequest(c, "cannot follow yourself")
		return
	}

	var target models.User
	err := database.DB.Where("id = ?", targetID).First(&target).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondNotFound(c, "user")
		return
	}
	if err != nil {
		util.RespondInternalError(c, "failed to load user")
		return
	}

	var existing models.Follow
	if err := database.DB.Where("follower_id = ? AND followee_id = ?", userID, targetID).
		First(&existing).Error; err == nil {
		util.RespondConflict(c, "follow")
		return
	}

	follow := models.Follow{FollowerID: userID, FolloweeID: targetID}
	if err := database.DB.Create(&follow).Error; err != nil {
		util.RespondInternalError(c, "failed to follow user")
		return
	}

	database.DB.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("following_count", gorm.Expr("following_count + 1"))
	database.DB.Model(&models.User{}).Where("id = ?", targetID).
		UpdateColumn("follower_count", gorm.Expr("follower_count + 1"))

	h.createNotification(targetID, userID, models.NotificationFollow,
		models.ReportTargetUser, userID, "started following you")

	c.JSON(http.StatusCreated, gin.H{"status": "following", "target_user": targetID})
}

// UnfollowUser unfollows a user
func (h *Handlers) UnfollowUser(c *gin.Context) {
	userID := c.GetString("user_id")
	targetID := c.Param("id")

	result := database.DB.Where("follower_id = ? AND followee_id = ?", userID, targetID).
		Delete(&models.Follow{})
	if result.Error != nil {
		util.RespondInternalError(c, "failed to unfollow user")
		return
	}
	if result.RowsAffected == 0 {
		util.RespondNotFound(c, "follow")
		return
	}

	database.DB.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("following_count", gorm.Expr("following_count - 1"))
	database.DB.Model(&models.User{}).Where("id = ?", targetID).
		UpdateColumn("follower_count", gorm.Expr("follower_count - 1"))

	c.JSON(http.StatusOK, gin.H{"status": "unfollowed", "target_user": targetID})
}

// ListFollowers returns the users following the given user
func (h *Handlers) ListFollowers(c *gin.Context) {
	targetID := c.Param("id")
	limit, offset := util.ParsePagination(c.Query("limit"), c.Query("offset"), 100)

	var follows []models.Follow
	if err := database.DB.Preload("Follower").
		Where("followee_id = ?", targetID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&follows).Error; err != nil {
		util.RespondInternalError(c, "failed to list followers")
		return
	}

	users := make([]models.User, 0, len(follows))
	for _, follow := range follows {
		users = append(users, follow.Follower)
	}

	c.JSON(http.StatusOK, gin.H{"users": users, "limit": limit, "offset": offset})
}

// ListFollowing returns the users the given user follows
func (h *Handlers) ListFollowing(c *gin.Context) {
	targetID := c.Param("id")
	limit, offset := util.ParsePagination(c.Query("limit"), c.Query("offset"), 100)

	var follows []models.Follow
	if err := database.DB.Preload("Followee").
		Where("follower_id = ?", targetID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&follows).Error; err != nil {
		util.RespondInternalError(c, "failed to list following")
		return
	}

	users := make([]models.User, 0, len(follows))
	for _, follow := range follows {
		users = append(users, follow.Followee)
	}

	c.JSON(http.StatusOK, gin.H{"users": users, "limit": limit, "offset": offset})
}

// Feed returns recent photos from the users the caller follows
func (h *Handlers) Feed(c *gin.Context) {
	userID := c.GetString("user_id")
	limit, offset := util.ParsePagination(c.Query("limit"), c.Query("offset"), 100)

	followeeIDs := database.DB.Model(&models.Follow{}).
		Select("followee_id").
		Where("follower_id = ?", userID)

	var photos []models.Photo
	if err := database.DB.Preload("User").
		Where("user_id IN (?)", followeeIDs).
		Where("is_public = ? AND moderation_status = ?", true, models.PhotoStatusActive).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&photos).Error; err != nil {
		util.RespondInternalError(c, "failed to load feed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"photos": photos, "limit": limit, "offset": offset})
}

// GetUserProfile returns a user's public profile
func (h *Handlers) GetUserProfile(c *gin.Context) {
	targetID := c.Param("id")

	var user models.User
	err := database.DB.Where("id = ?", targetID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondNotFound(c, "user")
		return
	}
	if err != nil {
		util.RespondInternalError(c, "failed to load user")
		return
	}

	c.JSON(http.StatusOK, user)
}

// createNotification records an in-app notification. Failures are logged,
// never surfaced to the caller.
func (h *Handlers) createNotification(userID, actorID, notifType, targetType, targetID, action string) {
	var actor models.User
	if err := database.DB.Select("username, display_name").Where("id = ?", actorID).First(&actor).Error; err != nil {
		logger.Log.Warn("notification actor lookup failed", zap.Error(err))
		return
	}

	name := actor.DisplayName
	if name == "" {
		name = actor.Username
	}

	notification := models.Notification{
		UserID:     userID,
		ActorID:    actorID,
		Type:       notifType,
		TargetType: targetType,
		TargetID:   targetID,
		Message:    fmt.Sprintf("%s %s", name, action),
	}
	if err := database.DB.Create(&notification).Error; err != nil {
		logger.Log.Warn("failed to create notification",
			logger.WithUserID(userID),
			zap.Error(err))
	}
}
