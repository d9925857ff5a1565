package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

// Repository bundles the postgres-backed repositories around one shared
// pool. The pool is created once at startup and reused for every request.
type Repository struct {
	db      *pgxpool.Pool
	Gallery GalleryRepository
	Image   ImageRepository
	User    UserRepository
}

func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	db, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Repository{
		db:      db,
		Gallery: NewGalleryRepo(db),
		Image:   NewImageRepo(db),
		User:    NewUserRepo(db),
	}, nil
}

func (r *Repository) Close() {
	r.db.Close()
}
