package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snapgrove/backend/internal/database"
	"github.com/snapgrove/backend/internal/models"
	"github.com/snapgrove/backend/internal/util"
)

// ListNotifications returns the authenticated user's notifications,
// newest first, and marks the returned page as seen
func (h *Handlers) ListNotifications(c *gin.Context) {
	userID := c.GetString("user_id")
	limit, offset := util.ParsePagination(c.Query("limit"), c.Query("offset"), 100)

	query := database.DB.Model(&models.Notification{}).
		Preload("Actor").
		Where("user_id = ?", userID)

	if c.Query("unread") == "true" {
		query = query.Where("read = ?", false)
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&notifications).Error; err != nil {
		util.RespondInternalError(c, "failed to list notifications")
		return
	}

	if len(notifications) > 0 {
		ids := make([]string, 0, len(notifications))
		for _, n := range notifications {
			ids = append(ids, n.ID)
		}
		database.DB.Model(&models.Notification{}).
			Where("id IN ?", ids).
			Update("seen", true)
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"limit":         limit,
		"offset":        offset,
	})
}

// NotificationCounts returns unread and unseen counts
func (h *Handlers) NotificationCounts(c *gin.Context) {
	userID := c.GetString("user_id")

	var unread, unseen int64
	database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).Count(&unread)
	database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND seen = ?", userID, false).Count(&unseen)

	c.JSON(http.StatusOK, gin.H{"unread": unread, "unseen": unseen})
}

// MarkNotificationRead marks one notification as read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	userID := c.GetString("user_id")
	notificationID := c.Param("id")

	result := database.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Updates(map[string]interface{}{"read": true, "seen": true})
	if result.Error != nil {
		util.RespondInternalError(c, "failed to mark notification")
		return
	}
	if result.RowsAffected == 0 {
		util.RespondNotFound(c, "notification")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "read"})
}

// MarkAllNotificationsRead marks every notification as read
func (h *Handlers) MarkAllNotificationsRead(c *gin.Context) {
	userID := c.GetString("user_id")

	if err := database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Updates(map[string]interface{}{"read": true, "seen": true}).Error; err != nil {
		util.RespondInternalError(c, "failed to mark notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "read"})
}
