package dto

import (
	"time"

	"github.com/google/uuid"
)

type PresignUploadRequest struct {
	GalleryID   string `json:"gallery_id" validate:"required,uuid4"`
	Filename    string `json:"filename" validate:"required"`
	ContentType string `json:"content_type"`
}

type PresignUploadResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

type RegisterImageRequest struct {
	GalleryID string `json:"gallery_id" validate:"required,uuid4"`
	Key       string `json:"key" validate:"required"`
}

type ImageResponse struct {
	ID          uuid.UUID `json:"id"`
	GalleryID   uuid.UUID `json:"gallery_id"`
	KeyOriginal string    `json:"key_original"`
	KeyLarge    string    `json:"key_large"`
	KeyThumb    string    `json:"key_thumb"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	CreatedAt   time.Time `json:"created_at"`
	URL         string    `json:"url,omitempty"`
}
