package handlers

import (
	"github.com/snapgrove/backend/internal/auth"
	"github.com/snapgrove/backend/internal/storage"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	auth     *auth.Service
	uploader storage.PhotoUploader
}

// NewHandlers creates a new handlers instance
func NewHandlers(authService *auth.Service, uploader storage.PhotoUploader) *Handlers {
	return &Handlers{
		auth:     authService,
		uploader: uploader,
	}
}
