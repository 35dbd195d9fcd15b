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

// CreateReport files a moderation report against a photo, user, or collection
func (h *Handlers) CreateReport(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		TargetType string `json:"target_type" binding:"required,oneof=photo user collection"`
		TargetID   string `json:"target_id" binding:"required"`
		Reason     string `json:"reason" binding:"required,max=120"`
		Details    string `json:"details" binding:"max=2000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	if !h.reportTargetExists(req.TargetType, req.TargetID) {
		util.RespondNotFound(c, req.TargetType)
		return
	}

	// One pending report per reporter per target
	var existing models.Report
	if err := database.DB.
		Where("reporter_id = ? AND target_type = ? AND target_id = ? AND status = ?",
			userID, req.TargetType, req.TargetID, models.ReportStatusPending).
		First(&existing).Error; err == nil {
		util.RespondConflict(c, "report")
		return
	}

	report := models.Report{
		ReporterID: userID,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		Reason:     req.Reason,
		Details:    req.Details,
		Status:     models.ReportStatusPending,
	}
	if err := database.DB.Create(&report).Error; err != nil {
		util.RespondInternalError(c, "failed to create report")
		return
	}

	c.JSON(http.StatusCreated, report)
}

func (h *Handlers) reportTargetExists(targetType, targetID string) bool {
	var err error
	switch targetType {
	case models.ReportTargetPhoto:
		err = database.DB.Where("id = ?", targetID).First(&models.Photo{}).Error
	case models.ReportTargetUser:
		err = database.DB.Where("id = ?", targetID).First(&models.User{}).Error
	case models.ReportTargetCollection:
		err = database.DB.Where("id = ?", targetID).First(&models.Collection{}).Error
	default:
		return false
	}
	return !errors.Is(err, gorm.ErrRecordNotFound) && err == nil
}
