package sessionrepo

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) (*RepoRedis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRepoRedis(client), mr
}

func TestSetGetDelete(t *testing.T) {
	t.Parallel()

	repo, mr := setupRepo(t)
	ctx := context.Background()
	userID := uuid.NewString()

	_, err := repo.Get(ctx, userID)
	require.ErrorIs(t, err, domain.ErrSessionNotFound)

	require.NoError(t, repo.Set(ctx, userID, "token-1", time.Hour))
	require.True(t, mr.Exists("refresh_token:"+userID))

	got, err := repo.Get(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, "token-1", got)

	require.NoError(t, repo.Set(ctx, userID, "token-2", time.Hour))

	got, err = repo.Get(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, "token-2", got)

	require.NoError(t, repo.Delete(ctx, userID))

	_, err = repo.Get(ctx, userID)
	require.ErrorIs(t, err, domain.ErrSessionNotFound)

	require.NoError(t, repo.Delete(ctx, userID))
}

func TestExpiry(t *testing.T) {
	t.Parallel()

	repo, mr := setupRepo(t)
	ctx := context.Background()
	userID := uuid.NewString()

	require.NoError(t, repo.Set(ctx, userID, "token", time.Minute))

	mr.FastForward(2 * time.Minute)

	_, err := repo.Get(ctx, userID)
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestUnavailable(t *testing.T) {
	t.Parallel()

	repo, mr := setupRepo(t)
	mr.Close()

	ctx := context.Background()

	require.ErrorIs(t, repo.Set(ctx, "u", "token", time.Minute), errorspkg.ErrInternal)

	_, err := repo.Get(ctx, "u")
	require.ErrorIs(t, err, errorspkg.ErrInternal)
}
