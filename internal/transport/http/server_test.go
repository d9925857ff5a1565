package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"galerie/internal/domain/models"
	"galerie/internal/services/slugregistry"
	"galerie/internal/storage"
	httpapp "galerie/internal/transport/http"
	"galerie/internal/transport/http/dto"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, input dto.UserRegisterInput) (uuid.UUID, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, email, password string) (models.User, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(models.User), args.Error(1)
}

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateTokens(ctx context.Context, user models.User) (*models.TokenPair, error) {
	args := m.Called(ctx, user)
	pair, _ := args.Get(0).(*models.TokenPair)
	return pair, args.Error(1)
}

func (m *MockTokenService) RefreshTokens(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	pair, _ := args.Get(0).(*models.TokenPair)
	return pair, args.Error(1)
}

func (m *MockTokenService) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockGalleryService struct {
	mock.Mock
}

func (m *MockGalleryService) CreateGallery(ctx context.Context, req dto.CreateGalleryRequest, ownerID uuid.UUID) (dto.GalleryResponse, error) {
	args := m.Called(ctx, req, ownerID)
	return args.Get(0).(dto.GalleryResponse), args.Error(1)
}

func (m *MockGalleryService) UpdateGalleryBySlug(ctx context.Context, slug string, req dto.UpdateGalleryRequest) (dto.GalleryResponse, error) {
	args := m.Called(ctx, slug, req)
	return args.Get(0).(dto.GalleryResponse), args.Error(1)
}

func (m *MockGalleryService) GetGalleryPage(ctx context.Context, slug string, page, limit int) (dto.GalleryPageResponse, error) {
	args := m.Called(ctx, slug, page, limit)
	return args.Get(0).(dto.GalleryPageResponse), args.Error(1)
}

func (m *MockGalleryService) ListGalleries(ctx context.Context, ownerID uuid.UUID) ([]dto.GalleryResponse, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]dto.GalleryResponse), args.Error(1)
}

func (m *MockGalleryService) ListPublicGalleries(ctx context.Context) ([]dto.PublicGalleryItem, error) {
	args := m.Called(ctx)
	return args.Get(0).([]dto.PublicGalleryItem), args.Error(1)
}

func (m *MockGalleryService) DeleteGallery(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockGalleryService) ResolveSlug(ctx context.Context, slug string) (slugregistry.Resolution, error) {
	args := m.Called(ctx, slug)
	res, _ := args.Get(0).(slugregistry.Resolution)
	return res, args.Error(1)
}

type MockImageService struct {
	mock.Mock
}

func (m *MockImageService) PresignUpload(ctx context.Context, req dto.PresignUploadRequest) (dto.PresignUploadResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(dto.PresignUploadResponse), args.Error(1)
}

func (m *MockImageService) RegisterImage(ctx context.Context, req dto.RegisterImageRequest) (dto.ImageResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(dto.ImageResponse), args.Error(1)
}

func (m *MockImageService) GetImage(ctx context.Context, id uuid.UUID) (dto.ImageResponse, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(dto.ImageResponse), args.Error(1)
}

func (m *MockImageService) ProcessImage(ctx context.Context, id uuid.UUID) (dto.ImageResponse, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(dto.ImageResponse), args.Error(1)
}

type routerMocks struct {
	users     *MockUserService
	tokens    *MockTokenService
	galleries *MockGalleryService
	images    *MockImageService
}

func newTestRouter() (*httpapp.Routers, *echo.Echo, routerMocks) {
	mocks := routerMocks{
		users:     new(MockUserService),
		tokens:    new(MockTokenService),
		galleries: new(MockGalleryService),
		images:    new(MockImageService),
	}

	router := httpapp.NewRouter(slog.Default(), mocks.users, mocks.tokens, mocks.galleries, mocks.images)

	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}

	return router, e, mocks
}

func newJSONContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func authContext(c echo.Context, userID uuid.UUID) {
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["uid"] = userID.String()
	c.Set("user", token)
}

func TestRouters_Login(t *testing.T) {
	router, e, mocks := newTestRouter()

	user := models.User{ID: uuid.New(), Email: "anna@example.com"}
	mocks.users.On("Login", mock.Anything, "anna@example.com", "hunter2hunter2").
		Return(user, nil).Once()
	mocks.tokens.On("GenerateTokens", mock.Anything, user).
		Return(&models.TokenPair{UserID: user.ID, AccessToken: "at", RefreshToken: "rt"}, nil).Once()

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/login",
		`{"email":"anna@example.com","password":"hunter2hunter2"}`)

	require.NoError(t, router.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string            `json:"status"`
		Data   map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, "at", body.Data["access_token"])
}

func TestRouters_Login_BadPayload(t *testing.T) {
	router, e, _ := newTestRouter()

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/login", `{"email":"not-an-email"}`)

	require.NoError(t, router.Login(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouters_CreateGallery(t *testing.T) {
	router, e, mocks := newTestRouter()

	userID := uuid.New()
	created := dto.GalleryResponse{ID: uuid.New(), Title: "Trip", Slug: "trip"}
	mocks.galleries.On("CreateGallery", mock.Anything, dto.CreateGalleryRequest{Title: "Trip"}, userID).
		Return(created, nil).Once()

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/galleries", `{"title":"Trip"}`)
	authContext(c, userID)

	require.NoError(t, router.CreateGallery(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRouters_CreateGallery_Unauthenticated(t *testing.T) {
	router, e, _ := newTestRouter()

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/galleries", `{"title":"Trip"}`)

	require.NoError(t, router.CreateGallery(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouters_GetGalleryBySlug(t *testing.T) {
	router, e, mocks := newTestRouter()

	page := dto.GalleryPageResponse{
		Gallery: dto.GalleryResponse{Slug: "trip"},
		Page:    2,
		Limit:   10,
		Total:   50,
		HasMore: true,
	}
	mocks.galleries.On("GetGalleryPage", mock.Anything, "trip", 2, 10).
		Return(page, nil).Once()

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/galleries/by-slug/trip?page=2&limit=10", "")
	c.SetParamNames("slug")
	c.SetParamValues("trip")

	require.NoError(t, router.GetGalleryBySlug(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouters_GetGalleryBySlug_NotFound(t *testing.T) {
	router, e, mocks := newTestRouter()

	mocks.galleries.On("GetGalleryPage", mock.Anything, "ghost", 0, 0).
		Return(dto.GalleryPageResponse{}, storage.ErrGalleryNotFound).Once()

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/galleries/by-slug/ghost", "")
	c.SetParamNames("slug")
	c.SetParamValues("ghost")

	require.NoError(t, router.GetGalleryBySlug(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouters_ResolveRedirect(t *testing.T) {
	tests := []struct {
		name       string
		resolution slugregistry.Resolution
		wantCode   int
		wantSlug   string
	}{
		{
			name:       "redirect returns the new slug",
			resolution: slugregistry.Redirect{CurrentSlug: "new-trip"},
			wantCode:   http.StatusOK,
			wantSlug:   "new-trip",
		},
		{
			name:       "active slug is not a redirect",
			resolution: slugregistry.Active{Gallery: models.Gallery{Slug: "trip"}},
			wantCode:   http.StatusNotFound,
		},
		{
			name:       "unknown slug",
			resolution: slugregistry.NotFound{},
			wantCode:   http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, e, mocks := newTestRouter()

			mocks.galleries.On("ResolveSlug", mock.Anything, "old-trip").
				Return(tt.resolution, nil).Once()

			c, rec := newJSONContext(e, http.MethodGet, "/api/v1/galleries/redirect/old-trip", "")
			c.SetParamNames("old_slug")
			c.SetParamValues("old-trip")

			require.NoError(t, router.ResolveRedirect(c))
			assert.Equal(t, tt.wantCode, rec.Code)

			if tt.wantSlug != "" {
				var body struct {
					Data dto.RedirectResponse `json:"data"`
				}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.wantSlug, body.Data.NewSlug)
			}
		})
	}
}

func TestRouters_UpdateGalleryBySlug_SlugExhausted(t *testing.T) {
	router, e, mocks := newTestRouter()

	mocks.galleries.On("UpdateGalleryBySlug", mock.Anything, "trip", mock.Anything).
		Return(dto.GalleryResponse{}, slugregistry.ErrSlugExhausted).Once()

	c, rec := newJSONContext(e, http.MethodPatch, "/api/v1/galleries/by-slug/trip", `{"title":"Other"}`)
	c.SetParamNames("slug")
	c.SetParamValues("trip")

	require.NoError(t, router.UpdateGalleryBySlug(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRouters_DeleteGallery_BadID(t *testing.T) {
	router, e, _ := newTestRouter()

	c, rec := newJSONContext(e, http.MethodDelete, "/api/v1/galleries/not-a-uuid", "")
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	require.NoError(t, router.DeleteGallery(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouters_PresignUpload(t *testing.T) {
	router, e, mocks := newTestRouter()

	galleryID := uuid.New()
	mocks.images.On("PresignUpload", mock.Anything, mock.MatchedBy(func(req dto.PresignUploadRequest) bool {
		return req.GalleryID == galleryID.String() && req.Filename == "photo.jpg"
	})).Return(dto.PresignUploadResponse{URL: "https://s3/put", Key: "g/x/photo.jpg"}, nil).Once()

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/uploads/s3-url",
		`{"gallery_id":"`+galleryID.String()+`","filename":"photo.jpg"}`)

	require.NoError(t, router.PresignUpload(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouters_Refresh_Invalid(t *testing.T) {
	router, e, mocks := newTestRouter()

	mocks.tokens.On("RefreshTokens", mock.Anything, "stale").
		Return(nil, errors.New("invalid token")).Once()

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/refresh", `{"refresh_token":"stale"}`)

	require.NoError(t, router.Refresh(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
