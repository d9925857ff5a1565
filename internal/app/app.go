package app

import (
	"context"
	"fmt"
	"log/slog"

	httpapp "galerie/internal/app/http"
	"galerie/internal/config"
	"galerie/internal/repository"
	galleryservice "galerie/internal/services/gallery_service"
	imageservice "galerie/internal/services/image_service"
	"galerie/internal/services/slugregistry"
	tokenservice "galerie/internal/services/token_service"
	userservice "galerie/internal/services/user_service"
	"galerie/internal/storage/objectstore"
	redisapp "galerie/internal/storage/redis"
	httprouters "galerie/internal/transport/http"
)

type App struct {
	HTTPServer *httpapp.Server

	repo  *repository.Repository
	redis *redisapp.Client
}

func New(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	const op = "app.New"

	repo, err := repository.NewRepository(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	redisClient := redisapp.NewClient(cfg.Redis.RedisAddr, cfg.Redis.RedisPassword, cfg.Redis.RedisDB)
	if err := redisClient.HealthCheck(ctx); err != nil {
		return nil, fmt.Errorf("%s: redis unavailable: %w", op, err)
	}

	store, err := objectstore.New(objectstore.Config{
		Bucket:    cfg.S3.Bucket,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Endpoint:  cfg.S3.Endpoint,
		Region:    cfg.S3.Region,
		PathStyle: cfg.S3.PathStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	registry := slugregistry.New(log, repo.Gallery)

	galleryService := galleryservice.NewGalleryService(log, repo.Gallery, repo.Image, registry, store)
	imageService := imageservice.NewImageService(log, repo.Image, repo.Gallery, store, imageservice.VariantConfig{
		LargeWidth:   cfg.Image.LargeWidth,
		ThumbWidth:   cfg.Image.ThumbWidth,
		LargeQuality: cfg.Image.LargeQuality,
		ThumbQuality: cfg.Image.ThumbQuality,
	})
	userService := userservice.NewUserService(log, repo.User)
	tokenService := tokenservice.NewTokenService(repository.NewRedisTokenRepo(redisClient), cfg.JWTSecret)

	routers := httprouters.NewRouter(log, userService, tokenService, galleryService, imageService)

	server := httpapp.New(log, cfg.JWTSecret, cfg.HTTP.Host, cfg.HTTP.Port, routers)
	server.BuildRouters()

	return &App{
		HTTPServer: server,
		repo:       repo,
		redis:      redisClient,
	}, nil
}

func (a *App) Stop() error {
	const op = "app.Stop"

	if err := a.HTTPServer.Stop(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	a.repo.Close()

	if err := a.redis.Stop(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
