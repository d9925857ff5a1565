package models

import (
	"time"

	"github.com/google/uuid"
)

// Image is a single photo in a gallery. KeyOriginal points at the uploaded
// object; KeyLarge and KeyThumb point at derived variants and equal
// KeyOriginal until processing has run.
type Image struct {
	ID          uuid.UUID `json:"id"`
	GalleryID   uuid.UUID `json:"gallery_id"`
	KeyOriginal string    `json:"key_original"`
	KeyLarge    string    `json:"key_large"`
	KeyThumb    string    `json:"key_thumb"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	CreatedAt   time.Time `json:"created_at"`
}

// DisplayKey returns the best available storage key for listing views.
func (i Image) DisplayKey() string {
	switch {
	case i.KeyThumb != "":
		return i.KeyThumb
	case i.KeyLarge != "":
		return i.KeyLarge
	default:
		return i.KeyOriginal
	}
}

// Keys returns every distinct storage key held by the image, for bulk deletes.
func (i Image) Keys() []string {
	seen := make(map[string]struct{}, 3)
	var keys []string
	for _, k := range []string{i.KeyOriginal, i.KeyLarge, i.KeyThumb} {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

// NewImage creates an image row for a freshly uploaded object. All three
// keys start at the original; variants are filled in by processing.
func NewImage(galleryID uuid.UUID, key string) *Image {
	return &Image{
		ID:          uuid.New(),
		GalleryID:   galleryID,
		KeyOriginal: key,
		KeyLarge:    key,
		KeyThumb:    key,
		CreatedAt:   time.Now().UTC(),
	}
}
