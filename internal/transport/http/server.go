package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"galerie/internal/domain/models"
	"galerie/internal/lib/logger/sl"
	gallerysvc "galerie/internal/services/gallery_service"
	"galerie/internal/services/slugregistry"
	usersvc "galerie/internal/services/user_service"
	"galerie/internal/storage"
	"galerie/internal/transport/http/dto"
	"galerie/internal/transport/http/dto/request"
	"galerie/internal/transport/http/dto/response"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

type UserService interface {
	Register(ctx context.Context, input dto.UserRegisterInput) (uuid.UUID, error)
	Login(ctx context.Context, email, password string) (models.User, error)
}

type TokenService interface {
	GenerateTokens(ctx context.Context, user models.User) (*models.TokenPair, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	RevokeAll(ctx context.Context, userID uuid.UUID) error
}

type GalleryService interface {
	CreateGallery(ctx context.Context, req dto.CreateGalleryRequest, ownerID uuid.UUID) (dto.GalleryResponse, error)
	UpdateGalleryBySlug(ctx context.Context, slug string, req dto.UpdateGalleryRequest) (dto.GalleryResponse, error)
	GetGalleryPage(ctx context.Context, slug string, page, limit int) (dto.GalleryPageResponse, error)
	ListGalleries(ctx context.Context, ownerID uuid.UUID) ([]dto.GalleryResponse, error)
	ListPublicGalleries(ctx context.Context) ([]dto.PublicGalleryItem, error)
	DeleteGallery(ctx context.Context, id uuid.UUID) error
	ResolveSlug(ctx context.Context, slug string) (slugregistry.Resolution, error)
}

type ImageService interface {
	PresignUpload(ctx context.Context, req dto.PresignUploadRequest) (dto.PresignUploadResponse, error)
	RegisterImage(ctx context.Context, req dto.RegisterImageRequest) (dto.ImageResponse, error)
	GetImage(ctx context.Context, id uuid.UUID) (dto.ImageResponse, error)
	ProcessImage(ctx context.Context, id uuid.UUID) (dto.ImageResponse, error)
}

type Routers struct {
	log            *slog.Logger
	UserService    UserService
	TokenService   TokenService
	GalleryService GalleryService
	ImageService   ImageService
}

func NewRouter(
	log *slog.Logger,
	userService UserService,
	tokenService TokenService,
	galleryService GalleryService,
	imageService ImageService,
) *Routers {
	return &Routers{
		log:            log,
		UserService:    userService,
		TokenService:   tokenService,
		GalleryService: galleryService,
		ImageService:   imageService,
	}
}

func (r *Routers) Register(c echo.Context) error {
	const op = "http.routers.Register"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.UserRegisterInput

	if err := c.Bind(&req); err != nil {
		log.Error("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	userID, err := r.UserService.Register(c.Request().Context(), req)
	if err != nil {
		log.Error("registration failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "internal_error",
		})
	}

	log.Info("user registered", slog.String("user_id", userID.String()))

	return c.JSON(http.StatusCreated, response.Response{
		Status: "success",
		Data: map[string]uuid.UUID{
			"user_id": userID,
		},
	})
}

func (r *Routers) Login(c echo.Context) error {
	const op = "http.routers.Login"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.LoginRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid format request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	user, err := r.UserService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, usersvc.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
		}
		log.Error("login failed", sl.Err(err))
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	tokens, err := r.TokenService.GenerateTokens(c.Request().Context(), user)
	if err != nil {
		log.Error("failed to generate tokens", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "internal_error",
		})
	}

	if sess, err := session.Get("session", c); err == nil {
		sess.Values["user_id"] = user.ID.String()
		_ = sess.Save(c.Request(), c.Response())
	}

	return c.JSON(http.StatusOK, response.Response{
		Status: "success",
		Data: map[string]string{
			"user_id":       tokens.UserID.String(),
			"access_token":  tokens.AccessToken,
			"refresh_token": tokens.RefreshToken,
		},
	})
}

func (r *Routers) Refresh(c echo.Context) error {
	const op = "http.routers.Refresh"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.RefreshRequest

	if err := c.Bind(&req); err != nil {
		log.Error("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	tokens, err := r.TokenService.RefreshTokens(c.Request().Context(), req.RefreshToken)
	if err != nil {
		log.Warn("refresh rejected", sl.Err(err))
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	return c.JSON(http.StatusOK, response.Response{
		Status: "success",
		Data:   tokens,
	})
}

func (r *Routers) Logout(c echo.Context) error {
	const op = "http.routers.Logout"

	log := r.log.With(
		slog.String("op", op),
	)

	userID, err := userIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	if err := r.TokenService.RevokeAll(c.Request().Context(), userID); err != nil {
		log.Error("failed to revoke tokens", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "internal_error",
		})
	}

	return c.JSON(http.StatusOK, response.Response{Status: "success"})
}

func (r *Routers) CreateGallery(c echo.Context) error {
	const op = "http.routers.CreateGallery"

	log := r.log.With(
		slog.String("op", op),
	)

	userID, err := userIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	var req dto.CreateGalleryRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	gallery, err := r.GalleryService.CreateGallery(c.Request().Context(), req, userID)
	if err != nil {
		if errors.Is(err, slugregistry.ErrSlugExhausted) {
			log.Warn("slug space exhausted", slog.String("title", req.Title))
			return c.JSON(http.StatusConflict, response.ErrorResponse{
				Status: "error",
				Error:  "slug_conflict",
			})
		}
		log.Error("failed to create gallery", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "internal_error",
		})
	}

	return c.JSON(http.StatusCreated, response.Response{
		Status: "success",
		Data:   gallery,
	})
}

func (r *Routers) ListGalleries(c echo.Context) error {
	const op = "http.routers.ListGalleries"

	userID, err := userIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	galleries, err := r.GalleryService.ListGalleries(c.Request().Context(), userID)
	if err != nil {
		r.log.Error("failed to list galleries", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "internal_error",
		})
	}

	return c.JSON(http.StatusOK, response.Response{
		Status: "success",
		Data:   galleries,
	})
}

func (r *Routers) ListPublicGalleries(c echo.Context) error {
	const op = "http.routers.ListPublicGalleries"

	items, err := r.GalleryService.ListPublicGalleries(c.Request().Context())
	if err != nil {
		r.log.Error("failed to list public galleries", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "internal_error",
		})
	}

	return c.JSON(http.StatusOK, response.Response{
		Status: "success",
		Data:   items,
	})
}

func (r *Routers) GetGalleryBySlug(c echo.Context) error {
	const op = "http.routers.GetGalleryBySlug"

	log := r.log.With(
		slog.String("op", op),
		slog.String("slug", c.Param("slug")),
	)

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := r.GalleryService.GetGalleryPage(c.Request().Context(), c.Param("slug"), page, limit)
	if err != nil {
		if errors.Is(err, storage.ErrGalleryNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrNotFound)
		}
		log.Error("failed to load gallery page", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "internal_error",
		})
	}

	return c.JSON(http.StatusOK, response.Response{
		Status: "success",
		Data:   result,
	})
}

func (r *Routers) UpdateGalleryBySlug(c echo.Context) error {
	const op = "http.routers.UpdateGalleryBySlug"

	log := r.log.With(
		slog.String("op", op),
		slog.String("slug", c.Param("slug")),
	)

	var req dto.UpdateGalleryRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	gallery, err := r.GalleryService.UpdateGalleryBySlug(c.Request().Context(), c.Param("slug"), req)
	if err != nil {
		switch {
		case errors.Is(err, gallerysvc.ErrEmptyUpdate):
			return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
		case errors.Is(err, storage.ErrGalleryNotFound):
			return c.JSON(http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, slugregistry.ErrSlugExhausted):
			return c.JSON(http.StatusConflict, response.ErrorResponse{
				Status: "error",
				Error:  "slug_conflict",
			})
		}
		log.Error("failed to update gallery", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "internal_error",
		})
	}

	return c.JSON(http.StatusOK, response.Response{
		Status: "success",
		Data:   gallery,
	})
}

func (r *Routers) DeleteGallery(c echo.Context) error {
	const op = "http.routers.DeleteGallery"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := r.GalleryService.DeleteGallery(c.Request().Context(), id); err != nil {
		if errors.Is(err, storage.ErrGalleryNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrNotFound)
		}
		log.Error("failed to delete gallery", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "internal_error",
		})
	}

	return c.JSON(http.StatusOK, response.Response{Status: "success"})
}

// ResolveRedirect answers where a retired slug moved to. Active slugs are
// served by the regular by-slug route, so only a true redirect counts here.
func (r *Routers) ResolveRedirect(c echo.Context) error {
	const op = "http.routers.ResolveRedirect"

	res, err := r.GalleryService.ResolveSlug(c.Request().Context(), c.Param("old_slug"))
	if err != nil {
		r.log.Error("failed to resolve slug", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "internal_error",
		})
	}

	redirect, ok := res.(slugregistry.Redirect)
	if !ok {
		return c.JSON(http.StatusNotFound, response.ErrNotFound)
	}

	return c.JSON(http.StatusOK, response.Response{
		Status: "success",
		Data:   dto.RedirectResponse{NewSlug: redirect.CurrentSlug},
	})
}

func (r *Routers) PresignUpload(c echo.Context) error {
	const op = "http.routers.PresignUpload"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.PresignUploadRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	result, err := r.ImageService.PresignUpload(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, storage.ErrGalleryNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrNotFound)
		}
		log.Error("failed to presign upload", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "internal_error",
		})
	}

	return c.JSON(http.StatusOK, response.Response{
		Status: "success",
		Data:   result,
	})
}

func (r *Routers) RegisterImage(c echo.Context) error {
	const op = "http.routers.RegisterImage"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.RegisterImageRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	img, err := r.ImageService.RegisterImage(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, storage.ErrGalleryNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrNotFound)
		}
		log.Error("failed to register image", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "internal_error",
		})
	}

	return c.JSON(http.StatusCreated, response.Response{
		Status: "success",
		Data:   img,
	})
}

func (r *Routers) GetImage(c echo.Context) error {
	const op = "http.routers.GetImage"

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	img, err := r.ImageService.GetImage(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrImageNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrNotFound)
		}
		r.log.Error("failed to get image", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "internal_error",
		})
	}

	return c.JSON(http.StatusOK, response.Response{
		Status: "success",
		Data:   img,
	})
}

func (r *Routers) ProcessImage(c echo.Context) error {
	const op = "http.routers.ProcessImage"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	img, err := r.ImageService.ProcessImage(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrImageNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrNotFound)
		}
		log.Error("failed to process image", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "internal_error",
		})
	}

	return c.JSON(http.StatusOK, response.Response{
		Status: "success",
		Data:   img,
	})
}

// userIDFromToken pulls the uid claim set by the JWT middleware.
func userIDFromToken(c echo.Context) (uuid.UUID, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, errors.New("missing token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("invalid claims")
	}

	uid, ok := claims["uid"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing uid claim")
	}

	return uuid.Parse(uid)
}
