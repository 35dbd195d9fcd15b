package handlers

import (
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

// AdminListReports returns moderation reports, filterable by status
func (h *Handlers) AdminListReports(c *gin.Context) {
	limit, offset := util.ParsePagination(c.Query("limit"), c.Query("offset"), 100)

	query := database.DB.Model(&models.Report{}).Preload("Reporter")
	if status := c.DefaultQuery("status", models.ReportStatusPending); status != "all" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var reports []models.Report
	if err := query.Order("created_at ASC").Limit(limit).Offset(offset).
		Find(&reports).Error; err != nil {
		util.RespondInternalError(c, "failed to list reports")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reports": reports,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// AdminResolveReport resolves or dismisses a report
func (h *Handlers) AdminResolveReport(c *gin.Context) {
	adminID := c.GetString("user_id")
	reportID := c.Param("id")

	var req struct {
		Status string `json:"status" binding:"required,oneof=resolved dismissed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	var report models.Report
	err := database.DB.Where("id = ?", reportID).First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondNotFound(c, "report")
		return
	}
	if err != nil {
		util.RespondInternalError(c, "failed to load report")
		return
	}
	if report.Status != models.ReportStatusPending {
		util.RespondConflict(c, "report already handled")
		return
	}

	now := time.Now()
	if err := database.DB.Model(&report).Updates(map[string]interface{}{
		"status":      req.Status,
		"resolved_by": adminID,
		"resolved_at": now,
	}).Error; err != nil {
		util.RespondInternalError(c, "failed to update report")
		return
	}

	h.createNotification(report.ReporterID, adminID, models.NotificationReportResolved,
		report.TargetType, report.TargetID, "handled your report")

	logger.Log.Info("report handled",
		zap.String("report_id", reportID),
		zap.String("status", req.Status),
		logger.WithUserID(adminID))

	c.JSON(http.StatusOK, gin.H{"status": req.Status, "report_id": reportID})
}

// AdminRemovePhoto marks a photo as removed for moderation reasons
func (h *Handlers) AdminRemovePhoto(c *gin.Context) {
	adminID := c.GetString("user_id")
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
	if photo.ModerationStatus == models.PhotoStatusRemoved {
		util.RespondConflict(c, "photo already removed")
		return
	}

	if err := database.DB.Model(&photo).
		Update("moderation_status", models.PhotoStatusRemoved).Error; err != nil {
		util.RespondInternalError(c, "failed to remove photo")
		return
	}

	h.createNotification(photo.UserID, adminID, models.NotificationPhotoRemoved,
		models.ReportTargetPhoto, photoID, "removed your photo for violating the guidelines")

	logger.Log.Info("photo removed by moderator",
		logger.WithPhotoID(photoID),
		logger.WithUserID(adminID))

	c.JSON(http.StatusOK, gin.H{"status": "removed", "photo_id": photoID})
}

// AdminBanUser bans or unbans an account
func (h *Handlers) AdminBanUser(c *gin.Context) {
	adminID := c.GetString("user_id")
	targetID := c.Param("id")

	var req struct {
		Banned *bool `json:"banned" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	if targetID == adminID {
		util.RespondBadRequest(c, "cannot ban yourself")
		return
	}

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
	if user.IsAdmin {
		util.RespondForbidden(c, "cannot ban an admin")
		return
	}

	if err := database.DB.Model(&user).Update("is_banned", *req.Banned).Error; err != nil {
		util.RespondInternalError(c, "failed to update user")
		return
	}

	logger.Log.Info("user ban state changed",
		zap.String("target_user", targetID),
		zap.Bool("banned", *req.Banned),
		logger.WithUserID(adminID))

	c.JSON(http.StatusOK, gin.H{"user_id": targetID, "banned": *req.Banned})
}
