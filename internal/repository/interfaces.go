package repository

import (
	"context"
	"time"

	"galerie/internal/domain/models"

	"github.com/google/uuid"
)

type GalleryRepository interface {
	CreateGallery(ctx context.Context, gallery models.Gallery) (uuid.UUID, error)
	UpdateGallery(ctx context.Context, id uuid.UUID, update models.GalleryUpdate) (models.Gallery, error)
	DeleteGallery(ctx context.Context, id uuid.UUID) error
	GetGalleryByID(ctx context.Context, id uuid.UUID) (models.Gallery, error)
	// GetGalleryBySlug looks up the active slug. A non-nil excludeID skips
	// that gallery, so a rename never collides with itself.
	GetGalleryBySlug(ctx context.Context, slug string, excludeID uuid.UUID) (models.Gallery, error)
	ListGalleries(ctx context.Context, ownerID uuid.UUID) ([]models.Gallery, error)
	ListPublicGalleries(ctx context.Context) ([]models.Gallery, error)

	FindRedirectByOldSlug(ctx context.Context, oldSlug string) (models.SlugRedirect, error)
	// RenameGallerySlug atomically records the redirect for the vacated slug
	// and moves the gallery to the new one. The redirect insert is an upsert
	// on old_slug so re-retiring a previously held slug is re-driveable.
	RenameGallerySlug(ctx context.Context, galleryID uuid.UUID, oldSlug, newSlug string) error
}

type ImageRepository interface {
	CreateImage(ctx context.Context, image *models.Image) (*models.Image, error)
	GetImageByID(ctx context.Context, id uuid.UUID) (models.Image, error)
	UpdateImageVariants(ctx context.Context, id uuid.UUID, keyLarge, keyThumb string, width, height int) (models.Image, error)
	ListGalleryImages(ctx context.Context, galleryID uuid.UUID, offset, limit int) ([]models.Image, int, error)
	// ListFirstImages returns up to n oldest images, used for cover mosaics.
	ListFirstImages(ctx context.Context, galleryID uuid.UUID, n int) ([]models.Image, error)
	// ListAllImages returns every image of the gallery, used to collect
	// storage keys before a gallery delete.
	ListAllImages(ctx context.Context, galleryID uuid.UUID) ([]models.Image, error)
	DeleteGalleryImages(ctx context.Context, galleryID uuid.UUID) error
}

type UserRepository interface {
	UpsertUser(ctx context.Context, user models.User) (uuid.UUID, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserById(ctx context.Context, id uuid.UUID) (models.User, error)
}

type TokenRepository interface {
	SaveRefreshToken(ctx context.Context, userID, token string, exp time.Duration) error
	GetRefreshToken(ctx context.Context, userID, token string) (bool, error)
	DeleteRefreshToken(ctx context.Context, userID, token string) error
	DeleteAllUserTokens(ctx context.Context, userID string) error
}
