package suite

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"galerie/internal/config"
	"galerie/internal/domain/models"
	"galerie/internal/services/slugregistry"
	"galerie/internal/storage"

	"github.com/google/uuid"
)

type Suite struct {
	*testing.T
	Cfg      *config.Config
	Registry *slugregistry.Registry
	Store    *MemStore
}

func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()
	t.Parallel()

	cfg := config.MustLoadPath(configPath())

	ctx, cancelCtx := context.WithTimeout(context.Background(), time.Hour)

	store := NewMemStore()
	registry := slugregistry.New(slog.Default(), store)

	t.Cleanup(func() {
		t.Helper()
		cancelCtx()
	})

	return ctx, &Suite{
		T:        t,
		Cfg:      cfg,
		Registry: registry,
		Store:    store,
	}
}

func configPath() string {
	const key = "CONFIG_PATH"

	if v := os.Getenv(key); v != "" {
		return v
	}

	return "../config/local.yaml"
}

// MemStore is an in-memory slug store with the same conflict semantics as
// the postgres repository: unique active slugs and one redirect row per
// retired slug.
type MemStore struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]models.Gallery
	redirects map[string]models.SlugRedirect
}

func NewMemStore() *MemStore {
	return &MemStore{
		byID:      make(map[uuid.UUID]models.Gallery),
		redirects: make(map[string]models.SlugRedirect),
	}
}

// AddGallery seeds a gallery, failing on a slug already held.
func (s *MemStore) AddGallery(title, slug string) (models.Gallery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range s.byID {
		if g.Slug == slug {
			return models.Gallery{}, storage.ErrSlugTaken
		}
	}

	g := models.Gallery{
		ID:        uuid.New(),
		Title:     title,
		Slug:      slug,
		CreatedAt: time.Now(),
	}
	s.byID[g.ID] = g
	return g, nil
}

func (s *MemStore) RedirectCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redirects)
}

func (s *MemStore) GetGalleryBySlug(_ context.Context, slug string, excludeID uuid.UUID) (models.Gallery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range s.byID {
		if g.Slug == slug && g.ID != excludeID {
			return g, nil
		}
	}
	return models.Gallery{}, storage.ErrGalleryNotFound
}

func (s *MemStore) GetGalleryByID(_ context.Context, id uuid.UUID) (models.Gallery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.byID[id]
	if !ok {
		return models.Gallery{}, storage.ErrGalleryNotFound
	}
	return g, nil
}

func (s *MemStore) FindRedirectByOldSlug(_ context.Context, oldSlug string) (models.SlugRedirect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.redirects[oldSlug]
	if !ok {
		return models.SlugRedirect{}, storage.ErrRedirectNotFound
	}
	return r, nil
}

func (s *MemStore) RenameGallerySlug(_ context.Context, galleryID uuid.UUID, oldSlug, newSlug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.byID[galleryID]
	if !ok {
		return storage.ErrGalleryNotFound
	}

	for _, other := range s.byID {
		if other.ID != galleryID && other.Slug == newSlug {
			return storage.ErrSlugTaken
		}
	}

	s.redirects[oldSlug] = models.SlugRedirect{
		OldSlug:   oldSlug,
		GalleryID: galleryID,
		CreatedAt: time.Now(),
	}
	g.Slug = newSlug
	s.byID[galleryID] = g

	return nil
}
