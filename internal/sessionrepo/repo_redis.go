// Package sessionrepo manages repository layer of refresh tokens.
package sessionrepo

import (
	"context"
	"errors"
	"time"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const keyPrefix = "refresh_token:"

// RepoRedis stores one refresh token per user in Redis.
type RepoRedis struct {
	client redis.UniversalClient
}

// NewRepoRedis returns session RepoRedis.
func NewRepoRedis(client redis.UniversalClient) *RepoRedis {
	return &RepoRedis{
		client: client,
	}
}

func key(userID string) string {
	return keyPrefix + userID
}

// Set stores the refresh token of the user, replacing the previous one.
func (r *RepoRedis) Set(ctx context.Context, userID, refreshToken string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key(userID), refreshToken, ttl).Err(); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	return nil
}

// Get returns the stored refresh token of the user.
func (r *RepoRedis) Get(ctx context.Context, userID string) (string, error) {
	token, err := r.client.Get(ctx, key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrSessionNotFound
		}

		zerolog.Ctx(ctx).Error().Err(err).Send()

		return "", errorspkg.ErrInternal
	}

	return token, nil
}

// Delete removes the refresh token of the user. Missing tokens are not an error.
func (r *RepoRedis) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, key(userID)).Err(); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	return nil
}
