package storage

import "errors"

var (
	ErrGalleryNotFound  = errors.New("gallery not found")
	ErrImageNotFound    = errors.New("image not found")
	ErrRedirectNotFound = errors.New("redirect not found")
	ErrUserExists       = errors.New("user already exists")
	ErrUserNotFound     = errors.New("user not found")

	// ErrSlugTaken surfaces a storage-level uniqueness violation on
	// galleries.slug or slug_redirects.old_slug. Callers retry probing.
	ErrSlugTaken = errors.New("slug already taken")
)
