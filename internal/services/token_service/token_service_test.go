package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"galerie/internal/domain/models"
	libjwt "galerie/internal/lib/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) SaveRefreshToken(ctx context.Context, userID, token string, exp time.Duration) error {
	args := m.Called(ctx, userID, token, exp)
	return args.Error(0)
}

func (m *MockTokenRepository) GetRefreshToken(ctx context.Context, userID, token string) (bool, error) {
	args := m.Called(ctx, userID, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenRepository) DeleteRefreshToken(ctx context.Context, userID, token string) error {
	args := m.Called(ctx, userID, token)
	return args.Error(0)
}

func (m *MockTokenRepository) DeleteAllUserTokens(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

var (
	testUser = models.User{
		ID:    uuid.MustParse("123e4567-e89b-12d3-a456-426614174000"),
		Email: "test@example.com",
	}
	testCtx = context.Background()
)

const testSecret = "test-secret"

func TestGenerateTokens_Success(t *testing.T) {
	repo := new(MockTokenRepository)
	service := NewTokenService(repo, testSecret)

	repo.On("SaveRefreshToken", testCtx, testUser.ID.String(), mock.Anything, RefreshTokenExpire).
		Return(nil)

	tokens, err := service.GenerateTokens(testCtx, testUser)

	require.NoError(t, err)
	assert.Equal(t, testUser.ID, tokens.UserID)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	repo.AssertExpectations(t)
}

func TestGenerateTokens_RepoError(t *testing.T) {
	repo := new(MockTokenRepository)
	service := NewTokenService(repo, testSecret)

	expectedErr := errors.New("storage error")
	repo.On("SaveRefreshToken", testCtx, testUser.ID.String(), mock.Anything, mock.Anything).
		Return(expectedErr)

	tokens, err := service.GenerateTokens(testCtx, testUser)

	assert.ErrorIs(t, err, expectedErr)
	assert.Nil(t, tokens)
	repo.AssertExpectations(t)
}

func TestRefreshTokens_Success(t *testing.T) {
	repo := new(MockTokenRepository)
	service := NewTokenService(repo, testSecret)

	refresh, err := libjwt.NewToken(testUser, testSecret, RefreshTokenExpire)
	require.NoError(t, err)

	repo.On("GetRefreshToken", testCtx, testUser.ID.String(), refresh).
		Return(true, nil).Once()
	repo.On("DeleteRefreshToken", testCtx, testUser.ID.String(), refresh).
		Return(nil).Once()
	repo.On("SaveRefreshToken", testCtx, testUser.ID.String(), mock.Anything, RefreshTokenExpire).
		Return(nil).Once()

	tokens, err := service.RefreshTokens(testCtx, refresh)

	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	repo.AssertExpectations(t)
}

func TestRefreshTokens_NotInStorage(t *testing.T) {
	repo := new(MockTokenRepository)
	service := NewTokenService(repo, testSecret)

	refresh, err := libjwt.NewToken(testUser, testSecret, RefreshTokenExpire)
	require.NoError(t, err)

	repo.On("GetRefreshToken", testCtx, testUser.ID.String(), refresh).
		Return(false, nil).Once()

	tokens, err := service.RefreshTokens(testCtx, refresh)

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, tokens)
}

func TestRefreshTokens_WrongSecret(t *testing.T) {
	repo := new(MockTokenRepository)
	service := NewTokenService(repo, testSecret)

	forged, err := libjwt.NewToken(testUser, "other-secret", RefreshTokenExpire)
	require.NoError(t, err)

	tokens, err := service.RefreshTokens(testCtx, forged)

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, tokens)
	repo.AssertNotCalled(t, "GetRefreshToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestRefreshTokens_Garbage(t *testing.T) {
	repo := new(MockTokenRepository)
	service := NewTokenService(repo, testSecret)

	tokens, err := service.RefreshTokens(testCtx, "not-a-jwt")

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, tokens)
}

func TestRevokeAll(t *testing.T) {
	repo := new(MockTokenRepository)
	service := NewTokenService(repo, testSecret)

	repo.On("DeleteAllUserTokens", testCtx, testUser.ID.String()).Return(nil).Once()

	err := service.RevokeAll(testCtx, testUser.ID)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
