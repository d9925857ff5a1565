// Package slugregistry owns the lifecycle of gallery slugs: generating
// unique ones from titles and preserving old links via redirects when a
// gallery is renamed.
package slugregistry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"galerie/internal/domain/models"
	"galerie/internal/lib/logger/sl"
	"galerie/internal/lib/slug"
	"galerie/internal/metrics"
	"galerie/internal/storage"

	"github.com/google/uuid"
)

// maxRenameAttempts bounds the retry loop when a concurrent request wins
// the race for a candidate slug. The storage uniqueness constraint is the
// source of truth; probing is only a pre-check.
const maxRenameAttempts = 5

// ErrSlugExhausted is returned when every rename attempt lost the race.
var ErrSlugExhausted = errors.New("could not allocate a unique slug")

// SlugStore is the persistence surface the registry needs.
type SlugStore interface {
	GetGalleryBySlug(ctx context.Context, slug string, excludeID uuid.UUID) (models.Gallery, error)
	GetGalleryByID(ctx context.Context, id uuid.UUID) (models.Gallery, error)
	FindRedirectByOldSlug(ctx context.Context, oldSlug string) (models.SlugRedirect, error)
	RenameGallerySlug(ctx context.Context, galleryID uuid.UUID, oldSlug, newSlug string) error
}

type Registry struct {
	log  *slog.Logger
	repo SlugStore
}

func New(log *slog.Logger, repo SlugStore) *Registry {
	return &Registry{
		log:  log,
		repo: repo,
	}
}

// Resolution is the outcome of a slug lookup. Exactly one of the three
// cases applies: the slug belongs to an active gallery, it is a retired
// slug with a redirect, or it is unknown.
type Resolution interface {
	resolution()
}

type Active struct {
	Gallery models.Gallery
}

type Redirect struct {
	CurrentSlug string
}

type NotFound struct{}

func (Active) resolution()   {}
func (Redirect) resolution() {}
func (NotFound) resolution() {}

// GenerateUniqueSlug derives a slug from the title and probes candidates
// base, base-1, base-2, ... until one is free. A candidate is free when no
// other active gallery holds it and no redirect retired it — except
// redirects owned by excludeID, so a gallery may reclaim its own old slug.
func (r *Registry) GenerateUniqueSlug(ctx context.Context, title string, excludeID uuid.UUID) (string, error) {
	const op = "slugregistry.GenerateUniqueSlug"

	base := slug.Normalize(title)
	candidate := base

	for counter := 1; ; counter++ {
		free, err := r.candidateFree(ctx, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		if free {
			return candidate, nil
		}

		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
}

func (r *Registry) candidateFree(ctx context.Context, candidate string, excludeID uuid.UUID) (bool, error) {
	_, err := r.repo.GetGalleryBySlug(ctx, candidate, excludeID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, storage.ErrGalleryNotFound) {
		return false, err
	}

	redirect, err := r.repo.FindRedirectByOldSlug(ctx, candidate)
	if err != nil {
		if errors.Is(err, storage.ErrRedirectNotFound) {
			return true, nil
		}
		return false, err
	}

	// A gallery may take back a slug it retired itself; anyone else would
	// shadow the redirect.
	return excludeID != uuid.Nil && redirect.GalleryID == excludeID, nil
}

// RenameSlug moves the gallery to a slug derived from newTitle. When the
// derived slug equals the current one, nothing changes and no redirect is
// written. Otherwise the redirect and the slug update are committed as one
// transaction; on a storage uniqueness conflict the probe is re-run with
// the next candidate, bounded by maxRenameAttempts.
func (r *Registry) RenameSlug(ctx context.Context, gallery models.Gallery, newTitle string) (string, bool, error) {
	const op = "slugregistry.RenameSlug"

	log := r.log.With(
		slog.String("op", op),
		slog.String("gallery_id", gallery.ID.String()),
	)

	for attempt := 0; attempt < maxRenameAttempts; attempt++ {
		newSlug, err := r.GenerateUniqueSlug(ctx, newTitle, gallery.ID)
		if err != nil {
			return "", false, fmt.Errorf("%s: %w", op, err)
		}

		if newSlug == gallery.Slug {
			return gallery.Slug, false, nil
		}

		err = r.repo.RenameGallerySlug(ctx, gallery.ID, gallery.Slug, newSlug)
		if err == nil {
			metrics.SlugRenamesTotal.Inc()
			log.Info("slug renamed",
				slog.String("old_slug", gallery.Slug),
				slog.String("new_slug", newSlug),
			)
			return newSlug, true, nil
		}

		if errors.Is(err, storage.ErrSlugTaken) {
			// Lost the race to a concurrent writer; probe again.
			metrics.SlugRenameConflictsTotal.Inc()
			log.Warn("slug conflict on commit, retrying", sl.Err(err))
			continue
		}

		return "", false, fmt.Errorf("%s: %w", op, err)
	}

	return "", false, fmt.Errorf("%s: %w", op, ErrSlugExhausted)
}

// ResolveSlug answers what a slug currently points at. Active galleries win
// over redirects; redirects resolve in one hop to the owning gallery's
// current slug.
func (r *Registry) ResolveSlug(ctx context.Context, s string) (Resolution, error) {
	const op = "slugregistry.ResolveSlug"

	gallery, err := r.repo.GetGalleryBySlug(ctx, s, uuid.Nil)
	if err == nil {
		return Active{Gallery: gallery}, nil
	}
	if !errors.Is(err, storage.ErrGalleryNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	redirect, err := r.repo.FindRedirectByOldSlug(ctx, s)
	if err != nil {
		if errors.Is(err, storage.ErrRedirectNotFound) {
			return NotFound{}, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	owner, err := r.repo.GetGalleryByID(ctx, redirect.GalleryID)
	if err != nil {
		if errors.Is(err, storage.ErrGalleryNotFound) {
			// The gallery behind the redirect is gone.
			return NotFound{}, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return Redirect{CurrentSlug: owner.Slug}, nil
}
