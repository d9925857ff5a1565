package models

import (
	"time"

	"github.com/google/uuid"
)

// Gallery is a collection of images reachable under a unique URL slug.
type Gallery struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	Slug             string    `json:"slug"`
	OwnerID          uuid.UUID `json:"owner_id"`
	IsPublic         bool      `json:"is_public"`
	ShowIndexOverlay bool      `json:"show_index_overlay"`
	CoverKey         *string   `json:"cover_key,omitempty"`
	ParentID         *uuid.UUID `json:"parent_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// SlugRedirect maps a retired slug to the gallery that vacated it.
// Rows are append-only: created once per rename, never updated or deleted.
type SlugRedirect struct {
	OldSlug   string    `json:"old_slug"`
	GalleryID uuid.UUID `json:"gallery_id"`
	CreatedAt time.Time `json:"created_at"`
}

// GalleryUpdate carries the optional fields of a gallery settings update.
// Nil pointers mean "leave unchanged".
type GalleryUpdate struct {
	Title            *string
	Slug             *string
	IsPublic         *bool
	ShowIndexOverlay *bool
	CoverKey         *string
	CoverKeySet      bool // distinguishes "clear cover" from "leave unchanged"
}

// IsEmpty reports whether the update would change nothing.
func (u GalleryUpdate) IsEmpty() bool {
	return u.Title == nil && u.Slug == nil && u.IsPublic == nil &&
		u.ShowIndexOverlay == nil && !u.CoverKeySet
}
