package domain

import (
	"errors"
	"time"
)

var (
	// ErrMismatchedRefreshToken indicates mismatch between the given token and the stored token.
	ErrMismatchedRefreshToken = errors.New("mismatched session token")
	// ErrInvalidUser indicates that the token does not belong to the session user.
	ErrInvalidUser = errors.New("incorrect session user")
	// ErrSessionNotFound indicates that no refresh token is stored for the user.
	ErrSessionNotFound = errors.New("Session not found")
)

// Session is the pair of tokens issued on sign in or refresh.
type Session struct {
	AccessToken           string    `json:"access_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshToken          string    `json:"refresh_token"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
}
