package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Report target types
const (
	ReportTargetPhoto      = "photo"
	ReportTargetUser       = "user"
	ReportTargetCollection = "collection"
)

// Report statuses
const (
	ReportStatusPending   = "pending"
	ReportStatusResolved  = "resolved"
	ReportStatusDismissed = "dismissed"
)

// Report is a user-submitted moderation report against a photo, user, or collection
type Report struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	ReporterID string `gorm:"not null;index" json:"reporter_id"`
	Reporter   User   `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`

	TargetType string `gorm:"not null;index:idx_reports_target" json:"target_type"`
	TargetID   string `gorm:"not null;index:idx_reports_target" json:"target_id"`

	Reason  string `gorm:"not null" json:"reason"`
	Details string `gorm:"type:text" json:"details"`

	Status     string     `gorm:"default:pending;index" json:"status"`
	ResolvedBy *string    `gorm:"type:uuid" json:"resolved_by"`
	ResolvedAt *time.Time `json:"resolved_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// Notification types
const (
	NotificationFollow         = "follow"
	NotificationFavorite       = "favorite"
	NotificationReportResolved = "report_resolved"
	NotificationPhotoRemoved   = "photo_removed"
)

// Notification is an in-app notification delivered to a single user
type Notification struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"not null;index" json:"user_id"`

	ActorID string `gorm:"index" json:"actor_id"`
	Actor   User   `gorm:"foreignKey:ActorID" json:"actor,omitempty"`

	Type       string `gorm:"not null" json:"type"`
	TargetType string `json:"target_type"`
	TargetID   string `json:"target_id"`
	Message    string `gorm:"type:text" json:"message"`

	Read bool `gorm:"default:false" json:"read"`
	Seen bool `gorm:"default:false" json:"seen"`

	CreatedAt time.Time `json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}
