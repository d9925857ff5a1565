package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateGalleryRequest struct {
	Title string `json:"title" validate:"required"`
}

// UpdateGalleryRequest carries optional settings for a gallery. CoverKey
// uses a double pointer so "set to null" (clear the cover) and "absent"
// stay distinguishable after JSON binding.
type UpdateGalleryRequest struct {
	Title            *string  `json:"title,omitempty"`
	IsPublic         *bool    `json:"is_public,omitempty"`
	ShowIndexOverlay *bool    `json:"show_index_overlay,omitempty"`
	CoverKey         **string `json:"cover_key,omitempty"`
}

type GalleryResponse struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	Slug             string    `json:"slug"`
	IsPublic         bool      `json:"is_public"`
	ShowIndexOverlay bool      `json:"show_index_overlay"`
	CoverKey         *string   `json:"cover_key"`
	CreatedAt        time.Time `json:"created_at"`
}

type GalleryImageItem struct {
	ID  uuid.UUID `json:"id"`
	URL string    `json:"url"`
}

type GalleryPageResponse struct {
	Gallery GalleryResponse    `json:"gallery"`
	Items   []GalleryImageItem `json:"items"`
	Page    int                `json:"page"`
	Limit   int                `json:"limit"`
	Total   int                `json:"total"`
	HasMore bool               `json:"has_more"`
}

// PublicGalleryItem is one tile on the public landing page: either a single
// cover URL or a mosaic of up to four thumbs.
type PublicGalleryItem struct {
	Title  string   `json:"title"`
	Slug   string   `json:"slug"`
	Cover  *string  `json:"cover"`
	Mosaic []string `json:"mosaic"`
}

type RedirectResponse struct {
	NewSlug string `json:"new_slug"`
}
