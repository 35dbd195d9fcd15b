package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Collection is a user-curated group of photos
type Collection struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	IsPublic     bool    `gorm:"default:true" json:"is_public"`
	PhotoCount   int     `gorm:"default:0" json:"photo_count"`
	CoverPhotoID *string `gorm:"type:uuid" json:"cover_photo_id"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Collection) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// CollectionPhoto links a photo into a collection
type CollectionPhoto struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	CollectionID string `gorm:"not null;index;uniqueIndex:idx_collection_photos_pair" json:"collection_id"`
	PhotoID      string `gorm:"not null;index;uniqueIndex:idx_collection_photos_pair" json:"photo_id"`
	SortOrder    int    `gorm:"default:0" json:"sort_order"`

	Photo Photo `gorm:"foreignKey:PhotoID" json:"photo,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (cp *CollectionPhoto) BeforeCreate(tx *gorm.DB) error {
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	return nil
}
