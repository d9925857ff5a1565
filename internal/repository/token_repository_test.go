package repository

import (
	"context"
	"testing"
	"time"

	redisapp "galerie/internal/storage/redis"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockedTokenRepo(t *testing.T) (*RedisTokenRepo, redismock.ClientMock) {
	t.Helper()

	client, mock := redismock.NewClientMock()
	repo := NewRedisTokenRepo(&redisapp.Client{Client: client})
	return repo, mock
}

func TestRedisTokenRepo_SaveRefreshToken(t *testing.T) {
	repo, mock := newMockedTokenRepo(t)
	ctx := context.Background()

	mock.ExpectSet("refresh:user-1:tok-a", "1", time.Hour).SetVal("OK")

	err := repo.SaveRefreshToken(ctx, "user-1", "tok-a", time.Hour)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisTokenRepo_GetRefreshToken(t *testing.T) {
	ctx := context.Background()

	t.Run("present", func(t *testing.T) {
		repo, mock := newMockedTokenRepo(t)

		mock.ExpectGet("refresh:user-1:tok-a").SetVal("1")

		ok, err := repo.GetRefreshToken(ctx, "user-1", "tok-a")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := newMockedTokenRepo(t)

		mock.ExpectGet("refresh:user-1:tok-b").RedisNil()

		ok, err := repo.GetRefreshToken(ctx, "user-1", "tok-b")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestRedisTokenRepo_DeleteRefreshToken(t *testing.T) {
	repo, mock := newMockedTokenRepo(t)
	ctx := context.Background()

	mock.ExpectDel("refresh:user-1:tok-a").SetVal(1)

	err := repo.DeleteRefreshToken(ctx, "user-1", "tok-a")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisTokenRepo_DeleteAllUserTokens(t *testing.T) {
	ctx := context.Background()

	t.Run("drops every key", func(t *testing.T) {
		repo, mock := newMockedTokenRepo(t)

		mock.ExpectKeys("refresh:user-1:*").SetVal([]string{
			"refresh:user-1:tok-a",
			"refresh:user-1:tok-b",
		})
		mock.ExpectDel("refresh:user-1:tok-a", "refresh:user-1:tok-b").SetVal(2)

		err := repo.DeleteAllUserTokens(ctx, "user-1")
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no keys is a no-op", func(t *testing.T) {
		repo, mock := newMockedTokenRepo(t)

		mock.ExpectKeys("refresh:user-1:*").SetVal([]string{})

		err := repo.DeleteAllUserTokens(ctx, "user-1")
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
