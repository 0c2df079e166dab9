// Package sessionservice manages business logic layer of sessions.
package sessionservice

import (
	"context"
	"errors"
	"time"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/tokenpkg"
	"github.com/rs/zerolog"
)

// Repo provides data access layer interface needed by session service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package sessionservice
type Repo interface {
	Set(ctx context.Context, userID, refreshToken string, ttl time.Duration) error
	Get(ctx context.Context, userID string) (string, error)
	Delete(ctx context.Context, userID string) error
}

// Service facilitates session service layer logic.
type Service struct {
	repo       Repo
	config     configpkg.Config
	tokenMaker tokenpkg.Maker
}

// New returns session service struct to manage session bussines logic.
// A nil maker is built from the config token settings.
func New(sr Repo, config configpkg.Config, tm tokenpkg.Maker) (*Service, error) {
	if tm == nil {
		var err error

		tm, err = tokenpkg.NewMaker(config.TokenType, config.TokenSymmetricKey)
		if err != nil {
			return nil, err
		}
	}

	return &Service{
		repo:       sr,
		config:     config,
		tokenMaker: tm,
	}, nil
}

// Create issues a new access and refresh token pair for the user and stores the refresh token.
func (s *Service) Create(ctx context.Context, user domain.UserWithoutPassword) (domain.Session, error) {
	return s.issue(ctx, user.ID, user.Role)
}

func (s *Service) issue(ctx context.Context, userID, role string) (domain.Session, error) {
	l := zerolog.Ctx(ctx)

	accessToken, accessPayload, err := s.tokenMaker.CreateToken(userID, role, s.config.AccessTokenDuration)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Session{}, errorspkg.ErrInternal
	}

	refreshToken, refreshPayload, err := s.tokenMaker.CreateToken(userID, role, s.config.RefreshTokenDuration)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Session{}, errorspkg.ErrInternal
	}

	err = s.repo.Set(ctx, userID, refreshToken, s.config.RefreshTokenDuration)
	if err != nil {
		return domain.Session{}, err
	}

	return domain.Session{
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessPayload.ExpiredAt,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: refreshPayload.ExpiredAt,
	}, nil
}

// Renew checks the refresh token against the stored one and rotates the token pair.
func (s *Service) Renew(ctx context.Context, refreshToken string) (domain.Session, error) {
	l := zerolog.Ctx(ctx)

	payload, err := s.tokenMaker.VerifyToken(refreshToken)
	if err != nil {
		l.Info().Err(err).Send()
		return domain.Session{}, err
	}

	stored, err := s.repo.Get(ctx, payload.UserID)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			l.Error().Err(err).Send()
		}

		return domain.Session{}, err
	}

	if stored != refreshToken {
		l.Warn().Str("user_id", payload.UserID).Msg("refresh token reuse")
		return domain.Session{}, domain.ErrMismatchedRefreshToken
	}

	return s.issue(ctx, payload.UserID, payload.Role)
}

// Logout forgets the refresh token of the user.
func (s *Service) Logout(ctx context.Context, userID string) error {
	return s.repo.Delete(ctx, userID)
}
