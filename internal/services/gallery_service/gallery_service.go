package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"galerie/internal/domain/models"
	"galerie/internal/lib/logger/sl"
	"galerie/internal/repository"
	"galerie/internal/services/slugregistry"
	"galerie/internal/storage"
	"galerie/internal/transport/http/dto"

	"github.com/google/uuid"
)

const (
	defaultPageLimit = 24
	maxPageLimit     = 100
	mosaicSize       = 4

	// maxCreateAttempts bounds retries when a concurrent create wins the
	// race for a freshly probed slug.
	maxCreateAttempts = 5
)

// ErrEmptyUpdate is returned when a patch request carries no fields.
var ErrEmptyUpdate = errors.New("no fields to update")

// SlugRegistry is the slug lifecycle surface the service depends on.
type SlugRegistry interface {
	GenerateUniqueSlug(ctx context.Context, title string, excludeID uuid.UUID) (string, error)
	RenameSlug(ctx context.Context, gallery models.Gallery, newTitle string) (string, bool, error)
	ResolveSlug(ctx context.Context, s string) (slugregistry.Resolution, error)
}

// ObjectStore is the part of blob storage galleries need: browse URLs and
// bulk cleanup on delete.
type ObjectStore interface {
	PresignGet(ctx context.Context, key string) (string, error)
	DeleteKeys(ctx context.Context, keys []string) error
}

type GalleryService struct {
	log    *slog.Logger
	repo   repository.GalleryRepository
	images repository.ImageRepository
	slugs  SlugRegistry
	store  ObjectStore
}

func NewGalleryService(
	log *slog.Logger,
	repo repository.GalleryRepository,
	images repository.ImageRepository,
	slugs SlugRegistry,
	store ObjectStore,
) *GalleryService {
	return &GalleryService{
		log:    log,
		repo:   repo,
		images: images,
		slugs:  slugs,
		store:  store,
	}
}

// CreateGallery creates a private gallery owned by ownerID with a slug
// derived from the title.
func (s *GalleryService) CreateGallery(ctx context.Context, req dto.CreateGalleryRequest, ownerID uuid.UUID) (dto.GalleryResponse, error) {
	const op = "service.GalleryService.CreateGallery"
	log := s.log.With(
		slog.String("op", op),
		slog.String("title", req.Title),
	)

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return dto.GalleryResponse{}, fmt.Errorf("%s: title is required", op)
	}
	if ownerID == uuid.Nil {
		return dto.GalleryResponse{}, fmt.Errorf("%s: owner is required", op)
	}

	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		newSlug, err := s.slugs.GenerateUniqueSlug(ctx, title, uuid.Nil)
		if err != nil {
			log.Error("failed to generate slug", sl.Err(err))
			return dto.GalleryResponse{}, fmt.Errorf("%s: %w", op, err)
		}

		id, err := s.repo.CreateGallery(ctx, models.Gallery{
			Title:   title,
			Slug:    newSlug,
			OwnerID: ownerID,
		})
		if err != nil {
			if errors.Is(err, storage.ErrSlugTaken) {
				log.Warn("slug taken on insert, retrying", slog.String("slug", newSlug))
				continue
			}
			log.Error("failed to create gallery", sl.Err(err))
			return dto.GalleryResponse{}, fmt.Errorf("%s: %w", op, err)
		}

		gallery, err := s.repo.GetGalleryByID(ctx, id)
		if err != nil {
			return dto.GalleryResponse{}, fmt.Errorf("%s: %w", op, err)
		}

		log.Info("gallery created", slog.String("id", id.String()), slog.String("slug", newSlug))
		return mapGallery(gallery), nil
	}

	return dto.GalleryResponse{}, fmt.Errorf("%s: %w", op, slugregistry.ErrSlugExhausted)
}

// UpdateGalleryBySlug patches a gallery addressed by its current slug. A
// title change goes through the slug registry so the old link keeps
// working; the remaining fields are applied in a single update.
func (s *GalleryService) UpdateGalleryBySlug(ctx context.Context, slugStr string, req dto.UpdateGalleryRequest) (dto.GalleryResponse, error) {
	const op = "service.GalleryService.UpdateGalleryBySlug"
	log := s.log.With(
		slog.String("op", op),
		slog.String("slug", slugStr),
	)

	update := models.GalleryUpdate{
		IsPublic:         req.IsPublic,
		ShowIndexOverlay: req.ShowIndexOverlay,
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return dto.GalleryResponse{}, fmt.Errorf("%s: title must not be empty", op)
		}
		update.Title = &title
	}
	if req.CoverKey != nil {
		update.CoverKeySet = true
		update.CoverKey = *req.CoverKey
	}

	if update.IsEmpty() {
		return dto.GalleryResponse{}, fmt.Errorf("%s: %w", op, ErrEmptyUpdate)
	}

	gallery, err := s.repo.GetGalleryBySlug(ctx, slugStr, uuid.Nil)
	if err != nil {
		return dto.GalleryResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	if update.Title != nil {
		newSlug, renamed, err := s.slugs.RenameSlug(ctx, gallery, *update.Title)
		if err != nil {
			log.Error("failed to rename slug", sl.Err(err))
			return dto.GalleryResponse{}, fmt.Errorf("%s: %w", op, err)
		}
		if renamed {
			log.Info("slug renamed", slog.String("new_slug", newSlug))
		}
	}

	updated, err := s.repo.UpdateGallery(ctx, gallery.ID, update)
	if err != nil {
		log.Error("failed to update gallery", sl.Err(err))
		return dto.GalleryResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	return mapGallery(updated), nil
}

// GetGalleryPage returns one page of a gallery with browse URLs for each
// image. Page and limit are clamped to sane bounds.
func (s *GalleryService) GetGalleryPage(ctx context.Context, slugStr string, page, limit int) (dto.GalleryPageResponse, error) {
	const op = "service.GalleryService.GetGalleryPage"
	log := s.log.With(
		slog.String("op", op),
		slog.String("slug", slugStr),
	)

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	gallery, err := s.repo.GetGalleryBySlug(ctx, slugStr, uuid.Nil)
	if err != nil {
		return dto.GalleryPageResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	images, total, err := s.images.ListGalleryImages(ctx, gallery.ID, (page-1)*limit, limit)
	if err != nil {
		log.Error("failed to list images", sl.Err(err))
		return dto.GalleryPageResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	items := make([]dto.GalleryImageItem, 0, len(images))
	for _, img := range images {
		url, err := s.store.PresignGet(ctx, img.DisplayKey())
		if err != nil {
			log.Error("failed to presign image", sl.Err(err), slog.String("image_id", img.ID.String()))
			return dto.GalleryPageResponse{}, fmt.Errorf("%s: %w", op, err)
		}
		items = append(items, dto.GalleryImageItem{ID: img.ID, URL: url})
	}

	return dto.GalleryPageResponse{
		Gallery: mapGallery(gallery),
		Items:   items,
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasMore: page*limit < total,
	}, nil
}

// ListGalleries returns all galleries owned by ownerID.
func (s *GalleryService) ListGalleries(ctx context.Context, ownerID uuid.UUID) ([]dto.GalleryResponse, error) {
	const op = "service.GalleryService.ListGalleries"

	galleries, err := s.repo.ListGalleries(ctx, ownerID)
	if err != nil {
		s.log.Error("failed to list galleries", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]dto.GalleryResponse, 0, len(galleries))
	for _, g := range galleries {
		out = append(out, mapGallery(g))
	}
	return out, nil
}

// ListPublicGalleries builds the landing page tiles. A gallery with an
// explicit cover gets a single cover URL; otherwise up to four of its
// oldest images form a mosaic, or a single image stands in as the cover.
func (s *GalleryService) ListPublicGalleries(ctx context.Context) ([]dto.PublicGalleryItem, error) {
	const op = "service.GalleryService.ListPublicGalleries"
	log := s.log.With(slog.String("op", op))

	galleries, err := s.repo.ListPublicGalleries(ctx)
	if err != nil {
		log.Error("failed to list public galleries", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	items := make([]dto.PublicGalleryItem, 0, len(galleries))
	for _, g := range galleries {
		item, err := s.publicItem(ctx, g)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		items = append(items, item)
	}

	return items, nil
}

func (s *GalleryService) publicItem(ctx context.Context, g models.Gallery) (dto.PublicGalleryItem, error) {
	item := dto.PublicGalleryItem{
		Title: g.Title,
		Slug:  g.Slug,
	}

	if g.CoverKey != nil && *g.CoverKey != "" {
		url, err := s.store.PresignGet(ctx, *g.CoverKey)
		if err != nil {
			return dto.PublicGalleryItem{}, err
		}
		item.Cover = &url
		return item, nil
	}

	images, err := s.images.ListFirstImages(ctx, g.ID, mosaicSize)
	if err != nil {
		return dto.PublicGalleryItem{}, err
	}

	switch {
	case len(images) == 0:
		return item, nil
	case len(images) < mosaicSize:
		url, err := s.store.PresignGet(ctx, images[0].DisplayKey())
		if err != nil {
			return dto.PublicGalleryItem{}, err
		}
		item.Cover = &url
	default:
		for _, img := range images {
			url, err := s.store.PresignGet(ctx, img.DisplayKey())
			if err != nil {
				return dto.PublicGalleryItem{}, err
			}
			item.Mosaic = append(item.Mosaic, url)
		}
	}

	return item, nil
}

// DeleteGallery removes the gallery, its image rows and their stored
// objects. Blob cleanup is best-effort: orphaned objects are cheaper than
// a gallery stuck half-deleted.
func (s *GalleryService) DeleteGallery(ctx context.Context, id uuid.UUID) error {
	const op = "service.GalleryService.DeleteGallery"
	log := s.log.With(
		slog.String("op", op),
		slog.String("gallery_id", id.String()),
	)

	if _, err := s.repo.GetGalleryByID(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	images, err := s.images.ListAllImages(ctx, id)
	if err != nil {
		log.Error("failed to collect images", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	var keys []string
	for _, img := range images {
		keys = append(keys, img.Keys()...)
	}

	if err := s.store.DeleteKeys(ctx, keys); err != nil {
		log.Warn("failed to delete stored objects", sl.Err(err))
	}

	if err := s.images.DeleteGalleryImages(ctx, id); err != nil {
		log.Error("failed to delete image rows", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.DeleteGallery(ctx, id); err != nil {
		log.Error("failed to delete gallery", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("gallery deleted", slog.Int("images", len(images)))
	return nil
}

// ResolveSlug reports what a slug currently points at.
func (s *GalleryService) ResolveSlug(ctx context.Context, slugStr string) (slugregistry.Resolution, error) {
	const op = "service.GalleryService.ResolveSlug"

	res, err := s.slugs.ResolveSlug(ctx, slugStr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

func mapGallery(g models.Gallery) dto.GalleryResponse {
	return dto.GalleryResponse{
		ID:               g.ID,
		Title:            g.Title,
		Slug:             g.Slug,
		IsPublic:         g.IsPublic,
		ShowIndexOverlay: g.ShowIndexOverlay,
		CoverKey:         g.CoverKey,
		CreatedAt:        g.CreatedAt,
	}
}
