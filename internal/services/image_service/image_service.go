package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"path"
	"strings"

	"galerie/internal/domain/models"
	"galerie/internal/lib/logger/sl"
	"galerie/internal/metrics"
	"galerie/internal/repository"
	"galerie/internal/transport/http/dto"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	defaultContentType = "application/octet-stream"

	largeSuffix = ".lg.jpg"
	thumbSuffix = ".th.jpg"
)

// VariantConfig controls the derived JPEG variants produced from an
// uploaded original.
type VariantConfig struct {
	LargeWidth   int
	ThumbWidth   int
	LargeQuality int
	ThumbQuality int
}

func DefaultVariantConfig() VariantConfig {
	return VariantConfig{
		LargeWidth:   2048,
		ThumbWidth:   800,
		LargeQuality: 82,
		ThumbQuality: 80,
	}
}

// ObjectStore is the blob storage surface image handling needs: direct
// upload URLs, original download and variant upload.
type ObjectStore interface {
	PresignPut(ctx context.Context, key, contentType string) (string, error)
	PresignGet(ctx context.Context, key string) (string, error)
	GetBuffer(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

type ImageService struct {
	log       *slog.Logger
	repo      repository.ImageRepository
	galleries repository.GalleryRepository
	store     ObjectStore
	variants  VariantConfig
}

func NewImageService(
	log *slog.Logger,
	repo repository.ImageRepository,
	galleries repository.GalleryRepository,
	store ObjectStore,
	variants VariantConfig,
) *ImageService {
	return &ImageService{
		log:       log,
		repo:      repo,
		galleries: galleries,
		store:     store,
		variants:  variants,
	}
}

// PresignUpload issues a short-lived URL for a direct browser upload. The
// object key is namespaced per gallery and salted with a fresh UUID so
// same-named files never collide.
func (s *ImageService) PresignUpload(ctx context.Context, req dto.PresignUploadRequest) (dto.PresignUploadResponse, error) {
	const op = "service.ImageService.PresignUpload"
	log := s.log.With(
		slog.String("op", op),
		slog.String("gallery_id", req.GalleryID),
	)

	galleryID, err := uuid.Parse(req.GalleryID)
	if err != nil {
		return dto.PresignUploadResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.galleries.GetGalleryByID(ctx, galleryID); err != nil {
		return dto.PresignUploadResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	filename := path.Base(strings.TrimSpace(req.Filename))
	if filename == "" || filename == "." || filename == "/" {
		return dto.PresignUploadResponse{}, fmt.Errorf("%s: filename is required", op)
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	key := fmt.Sprintf("g/%s/%s-%s", galleryID, uuid.New(), filename)

	url, err := s.store.PresignPut(ctx, key, contentType)
	if err != nil {
		log.Error("failed to presign upload", sl.Err(err))
		return dto.PresignUploadResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	return dto.PresignUploadResponse{URL: url, Key: key}, nil
}

// RegisterImage records an uploaded object as a gallery image. All variant
// keys initially point at the original until processing replaces them.
func (s *ImageService) RegisterImage(ctx context.Context, req dto.RegisterImageRequest) (dto.ImageResponse, error) {
	const op = "service.ImageService.RegisterImage"
	log := s.log.With(
		slog.String("op", op),
		slog.String("gallery_id", req.GalleryID),
	)

	galleryID, err := uuid.Parse(req.GalleryID)
	if err != nil {
		return dto.ImageResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.galleries.GetGalleryByID(ctx, galleryID); err != nil {
		return dto.ImageResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	img := models.NewImage(galleryID, req.Key)
	created, err := s.repo.CreateImage(ctx, img)
	if err != nil {
		log.Error("failed to register image", sl.Err(err))
		return dto.ImageResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("image registered", slog.String("image_id", created.ID.String()))
	return mapImage(*created, ""), nil
}

// GetImage returns the image row plus a browse URL for its best variant.
func (s *ImageService) GetImage(ctx context.Context, id uuid.UUID) (dto.ImageResponse, error) {
	const op = "service.ImageService.GetImage"

	img, err := s.repo.GetImageByID(ctx, id)
	if err != nil {
		return dto.ImageResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	url, err := s.store.PresignGet(ctx, img.DisplayKey())
	if err != nil {
		s.log.Error("failed to presign image", slog.String("op", op), sl.Err(err))
		return dto.ImageResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	return mapImage(img, url), nil
}

// ProcessImage downloads the original, derives the large and thumb JPEG
// variants and stores the variant keys and original dimensions on the row.
// Variants never enlarge: an original narrower than the target width is
// re-encoded as is.
func (s *ImageService) ProcessImage(ctx context.Context, id uuid.UUID) (dto.ImageResponse, error) {
	const op = "service.ImageService.ProcessImage"
	log := s.log.With(
		slog.String("op", op),
		slog.String("image_id", id.String()),
	)

	img, err := s.repo.GetImageByID(ctx, id)
	if err != nil {
		return dto.ImageResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	data, err := s.store.GetBuffer(ctx, img.KeyOriginal)
	if err != nil {
		log.Error("failed to download original", sl.Err(err))
		return dto.ImageResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		log.Error("failed to decode original", sl.Err(err))
		return dto.ImageResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	large, err := encodeVariant(src, s.variants.LargeWidth, s.variants.LargeQuality)
	if err != nil {
		return dto.ImageResponse{}, fmt.Errorf("%s: %w", op, err)
	}
	thumb, err := encodeVariant(src, s.variants.ThumbWidth, s.variants.ThumbQuality)
	if err != nil {
		return dto.ImageResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	keyLarge := img.KeyOriginal + largeSuffix
	keyThumb := img.KeyOriginal + thumbSuffix

	if err := s.store.Put(ctx, keyLarge, large, "image/jpeg"); err != nil {
		log.Error("failed to upload large variant", sl.Err(err))
		return dto.ImageResponse{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.store.Put(ctx, keyThumb, thumb, "image/jpeg"); err != nil {
		log.Error("failed to upload thumb variant", sl.Err(err))
		return dto.ImageResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := s.repo.UpdateImageVariants(ctx, id, keyLarge, keyThumb, width, height)
	if err != nil {
		log.Error("failed to store variant keys", sl.Err(err))
		return dto.ImageResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	metrics.ImagesProcessedTotal.Inc()
	log.Info("image processed",
		slog.Int("width", width),
		slog.Int("height", height),
	)
	return mapImage(updated, ""), nil
}

func encodeVariant(src image.Image, targetWidth, quality int) ([]byte, error) {
	out := src
	if src.Bounds().Dx() > targetWidth {
		out = imaging.Resize(src, targetWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func mapImage(img models.Image, url string) dto.ImageResponse {
	return dto.ImageResponse{
		ID:          img.ID,
		GalleryID:   img.GalleryID,
		KeyOriginal: img.KeyOriginal,
		KeyLarge:    img.KeyLarge,
		KeyThumb:    img.KeyThumb,
		Width:       img.Width,
		Height:      img.Height,
		CreatedAt:   img.CreatedAt,
		URL:         url,
	}
}
