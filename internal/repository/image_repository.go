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
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type ImageRepo struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

func NewImageRepo(db *pgxpool.Pool) *ImageRepo {
	return &ImageRepo{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var imageColumns = []string{
	"id",
	"gallery_id",
	"key_original",
	"key_large",
	"key_thumb",
	"width",
	"height",
	"created_at",
}

func scanImage(row pgx.Row) (models.Image, error) {
	var img models.Image
	err := row.Scan(
		&img.ID,
		&img.GalleryID,
		&img.KeyOriginal,
		&img.KeyLarge,
		&img.KeyThumb,
		&img.Width,
		&img.Height,
		&img.CreatedAt,
	)
	return img, err
}

func (r *ImageRepo) CreateImage(ctx context.Context, image *models.Image) (*models.Image, error) {
	const op = "repository.ImageRepo.CreateImage"

	query, args, err := r.sb.Insert("images").
		Columns(imageColumns...).
		Values(
			image.ID,
			image.GalleryID,
			image.KeyOriginal,
			image.KeyLarge,
			image.KeyThumb,
			image.Width,
			image.Height,
			image.CreatedAt,
		).
		Suffix("RETURNING " + strings.Join(imageColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	created, err := scanImage(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &created, nil
}

func (r *ImageRepo) GetImageByID(ctx context.Context, id uuid.UUID) (models.Image, error) {
	const op = "repository.ImageRepo.GetImageByID"

	query, args, err := r.sb.Select(imageColumns...).
		From("images").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.Image{}, fmt.Errorf("%s: %w", op, err)
	}

	img, err := scanImage(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Image{}, fmt.Errorf("%s: %w", op, storage.ErrImageNotFound)
		}
		return models.Image{}, fmt.Errorf("%s: %w", op, err)
	}

	return img, nil
}

func (r *ImageRepo) UpdateImageVariants(ctx context.Context, id uuid.UUID, keyLarge, keyThumb string, width, height int) (models.Image, error) {
	const op = "repository.ImageRepo.UpdateImageVariants"

	query, args, err := r.sb.Update("images").
		Set("key_large", keyLarge).
		Set("key_thumb", keyThumb).
		Set("width", width).
		Set("height", height).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(imageColumns, ", ")).
		ToSql()
	if err != nil {
		return models.Image{}, fmt.Errorf("%s: %w", op, err)
	}

	img, err := scanImage(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Image{}, fmt.Errorf("%s: %w", op, storage.ErrImageNotFound)
		}
		return models.Image{}, fmt.Errorf("%s: %w", op, err)
	}

	return img, nil
}

func (r *ImageRepo) ListGalleryImages(ctx context.Context, galleryID uuid.UUID, offset, limit int) ([]models.Image, int, error) {
	const op = "repository.ImageRepo.ListGalleryImages"

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").
		From("images").
		Where(squirrel.Eq{"gallery_id": galleryID}).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	var total int
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := r.sb.Select(imageColumns...).
		From("images").
		Where(squirrel.Eq{"gallery_id": galleryID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	images, err := r.queryImages(ctx, op, query, args)
	if err != nil {
		return nil, 0, err
	}

	return images, total, nil
}

func (r *ImageRepo) ListFirstImages(ctx context.Context, galleryID uuid.UUID, n int) ([]models.Image, error) {
	const op = "repository.ImageRepo.ListFirstImages"

	query, args, err := r.sb.Select(imageColumns...).
		From("images").
		Where(squirrel.Eq{"gallery_id": galleryID}).
		OrderBy("created_at ASC").
		Limit(uint64(n)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return r.queryImages(ctx, op, query, args)
}

func (r *ImageRepo) ListAllImages(ctx context.Context, galleryID uuid.UUID) ([]models.Image, error) {
	const op = "repository.ImageRepo.ListAllImages"

	query, args, err := r.sb.Select(imageColumns...).
		From("images").
		Where(squirrel.Eq{"gallery_id": galleryID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return r.queryImages(ctx, op, query, args)
}

func (r *ImageRepo) DeleteGalleryImages(ctx context.Context, galleryID uuid.UUID) error {
	const op = "repository.ImageRepo.DeleteGalleryImages"

	query, args, err := r.sb.Delete("images").
		Where(squirrel.Eq{"gallery_id": galleryID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *ImageRepo) queryImages(ctx context.Context, op, query string, args []interface{}) ([]models.Image, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var images []models.Image
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		images = append(images, img)
	}

	return images, nil
}
