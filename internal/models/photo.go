package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Photo moderation states
const (
	PhotoStatusActive  = "active"
	PhotoStatusRemoved = "removed"
)

// Photo represents an uploaded image with metadata
type Photo struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	// Image file data
	ImageURL         string `gorm:"not null" json:"image_url"`
	StorageKey       string `gorm:"not null" json:"-"`
	OriginalFilename string `json:"original_filename"`
	FileSize         int64  `json:"file_size"`
	Width            int    `json:"width"`
	Height           int    `json:"height"`

	// Browse dimensions
	Category string      `gorm:"index" json:"category"`
	Tags     StringArray `gorm:"type:text[]" json:"tags"`

	// Engagement counters
	FavoriteCount int `gorm:"default:0" json:"favorite_count"`
	ViewCount     int `gorm:"default:0" json:"view_count"`

	IsPublic         bool   `gorm:"default:true" json:"is_public"`
	ModerationStatus string `gorm:"default:active" json:"moderation_status"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Photo) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// Favorite marks a photo as favorited by a user
type Favorite struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID  string `gorm:"not null;index;uniqueIndex:idx_favorites_pair" json:"user_id"`
	PhotoID string `gorm:"not null;index;uniqueIndex:idx_favorites_pair" json:"photo_id"`

	Photo Photo `gorm:"foreignKey:PhotoID" json:"photo,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (f *Favorite) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}
