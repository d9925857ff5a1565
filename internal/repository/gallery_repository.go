package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"galerie/internal/domain/models"
	"galerie/internal/storage"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const uniqueViolation = "23505"

type GalleryRepo struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

func NewGalleryRepo(db *pgxpool.Pool) *GalleryRepo {
	return &GalleryRepo{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var galleryColumns = []string{
	"id",
	"title",
	"slug",
	"owner_id",
	"is_public",
	"show_index_overlay",
	"cover_key",
	"parent_id",
	"created_at",
	"updated_at",
}

func scanGallery(row pgx.Row) (models.Gallery, error) {
	var g models.Gallery
	err := row.Scan(
		&g.ID,
		&g.Title,
		&g.Slug,
		&g.OwnerID,
		&g.IsPublic,
		&g.ShowIndexOverlay,
		&g.CoverKey,
		&g.ParentID,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	return g, err
}

// slugConflict maps a storage-level uniqueness violation on a slug column
// to the sentinel the services retry on.
func slugConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return storage.ErrSlugTaken
	}
	return err
}

func (r *GalleryRepo) CreateGallery(ctx context.Context, gallery models.Gallery) (uuid.UUID, error) {
	const op = "repository.GalleryRepo.CreateGallery"

	query, args, err := r.sb.Insert("galleries").
		Columns("title", "slug", "owner_id", "is_public", "show_index_overlay", "cover_key", "parent_id").
		Values(
			gallery.Title,
			gallery.Slug,
			gallery.OwnerID,
			gallery.IsPublic,
			gallery.ShowIndexOverlay,
			gallery.CoverKey,
			gallery.ParentID,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	var id uuid.UUID
	if err := r.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, slugConflict(err))
	}

	return id, nil
}

func (r *GalleryRepo) UpdateGallery(ctx context.Context, id uuid.UUID, update models.GalleryUpdate) (models.Gallery, error) {
	const op = "repository.GalleryRepo.UpdateGallery"

	builder := r.sb.Update("galleries").
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	if update.Title != nil {
		builder = builder.Set("title", *update.Title)
	}
	if update.Slug != nil {
		builder = builder.Set("slug", *update.Slug)
	}
	if update.IsPublic != nil {
		builder = builder.Set("is_public", *update.IsPublic)
	}
	if update.ShowIndexOverlay != nil {
		builder = builder.Set("show_index_overlay", *update.ShowIndexOverlay)
	}
	if update.CoverKeySet {
		builder = builder.Set("cover_key", update.CoverKey)
	}

	query, args, err := builder.
		Suffix("RETURNING " + strings.Join(galleryColumns, ", ")).
		ToSql()
	if err != nil {
		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	g, err := scanGallery(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Gallery{}, fmt.Errorf("%s: %w", op, storage.ErrGalleryNotFound)
		}
		return models.Gallery{}, fmt.Errorf("%s: %w", op, slugConflict(err))
	}

	return g, nil
}

func (r *GalleryRepo) DeleteGallery(ctx context.Context, id uuid.UUID) error {
	const op = "repository.GalleryRepo.DeleteGallery"

	query, args, err := r.sb.Delete("galleries").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *GalleryRepo) GetGalleryByID(ctx context.Context, id uuid.UUID) (models.Gallery, error) {
	const op = "repository.GalleryRepo.GetGalleryByID"

	query, args, err := r.sb.Select(galleryColumns...).
		From("galleries").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	g, err := scanGallery(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Gallery{}, fmt.Errorf("%s: %w", op, storage.ErrGalleryNotFound)
		}
		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	return g, nil
}

func (r *GalleryRepo) GetGalleryBySlug(ctx context.Context, slug string, excludeID uuid.UUID) (models.Gallery, error) {
	const op = "repository.GalleryRepo.GetGalleryBySlug"

	builder := r.sb.Select(galleryColumns...).
		From("galleries").
		Where(squirrel.Eq{"slug": slug})

	if excludeID != uuid.Nil {
		builder = builder.Where(squirrel.NotEq{"id": excludeID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	g, err := scanGallery(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Gallery{}, fmt.Errorf("%s: %w", op, storage.ErrGalleryNotFound)
		}
		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	return g, nil
}

func (r *GalleryRepo) ListGalleries(ctx context.Context, ownerID uuid.UUID) ([]models.Gallery, error) {
	const op = "repository.GalleryRepo.ListGalleries"

	builder := r.sb.Select(galleryColumns...).
		From("galleries").
		OrderBy("created_at DESC")

	if ownerID != uuid.Nil {
		builder = builder.Where(squirrel.Eq{"owner_id": ownerID})
	}

	return r.queryGalleries(ctx, op, builder)
}

func (r *GalleryRepo) ListPublicGalleries(ctx context.Context) ([]models.Gallery, error) {
	const op = "repository.GalleryRepo.ListPublicGalleries"

	builder := r.sb.Select(galleryColumns...).
		From("galleries").
		Where(squirrel.Eq{"is_public": true}).
		OrderBy("created_at DESC")

	return r.queryGalleries(ctx, op, builder)
}

func (r *GalleryRepo) queryGalleries(ctx context.Context, op string, builder squirrel.SelectBuilder) ([]models.Gallery, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var galleries []models.Gallery
	for rows.Next() {
		g, err := scanGallery(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		galleries = append(galleries, g)
	}

	return galleries, nil
}

func (r *GalleryRepo) FindRedirectByOldSlug(ctx context.Context, oldSlug string) (models.SlugRedirect, error) {
	const op = "repository.GalleryRepo.FindRedirectByOldSlug"

	query, args, err := r.sb.Select("old_slug", "gallery_id", "created_at").
		From("slug_redirects").
		Where(squirrel.Eq{"old_slug": oldSlug}).
		ToSql()
	if err != nil {
		return models.SlugRedirect{}, fmt.Errorf("%s: %w", op, err)
	}

	var redirect models.SlugRedirect
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&redirect.OldSlug,
		&redirect.GalleryID,
		&redirect.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.SlugRedirect{}, fmt.Errorf("%s: %w", op, storage.ErrRedirectNotFound)
		}
		return models.SlugRedirect{}, fmt.Errorf("%s: %w", op, err)
	}

	return redirect, nil
}

// RenameGallerySlug runs the redirect insert and the slug update in one
// transaction, so a failure never leaves a redirect pointing at a gallery
// whose slug did not change.
func (r *GalleryRepo) RenameGallerySlug(ctx context.Context, galleryID uuid.UUID, oldSlug, newSlug string) error {
	const op = "repository.GalleryRepo.RenameGallerySlug"

	err := r.db.BeginFunc(ctx, func(tx pgx.Tx) error {
		redirectSQL, redirectArgs, err := r.sb.Insert("slug_redirects").
			Columns("old_slug", "gallery_id").
			Values(oldSlug, galleryID).
			Suffix("ON CONFLICT (old_slug) DO UPDATE SET gallery_id = EXCLUDED.gallery_id").
			ToSql()
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, redirectSQL, redirectArgs...); err != nil {
			return err
		}

		updateSQL, updateArgs, err := r.sb.Update("galleries").
			Set("slug", newSlug).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": galleryID}).
			ToSql()
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, updateSQL, updateArgs...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return storage.ErrGalleryNotFound
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, slugConflict(err))
	}

	return nil
}
