package memrepo

import (
	"context"
	"time"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/google/uuid"
)

// Users exposes the user repository of the store.
type Users struct {
	s *Store
}

// Users returns the user repository view of the store.
func (s *Store) Users() *Users {
	return &Users{s: s}
}

// Create creates the user and then returns it.
func (r *Users) Create(ctx context.Context, arg domain.CreateUserParams) (domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.emails[arg.Email]; ok {
		return domain.User{}, domain.ErrEmailAlreadyExists
	}

	role := arg.Role
	if role == "" {
		role = domain.RoleCustomer
	}

	u := domain.User{
		ID:             uuid.NewString(),
		Email:          arg.Email,
		HashedPassword: arg.HashedPassword,
		FirstName:      arg.FirstName,
		LastName:       arg.LastName,
		Role:           role,
		CreatedAt:      r.s.now(),
	}

	r.s.users[u.ID] = u
	r.s.emails[u.Email] = u.ID

	return u, nil
}

// Get returns the user with the given id.
func (r *Users) Get(ctx context.Context, id string) (domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}

	return u, nil
}

// GetByEmail returns the user with the given email.
func (r *Users) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[r.s.emails[email]]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}

	return u, nil
}

// Sessions exposes the refresh token repository of the store.
type Sessions struct {
	s *Store
}

// Sessions returns the refresh token repository view of the store.
func (s *Store) Sessions() *Sessions {
	return &Sessions{s: s}
}

// Set stores the refresh token of the user, replacing the previous one.
func (r *Sessions) Set(ctx context.Context, userID, refreshToken string, ttl time.Duration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.sessions[userID] = session{token: refreshToken, expiresAt: r.s.now().Add(ttl)}

	return nil
}

// Get returns the stored refresh token of the user.
func (r *Sessions) Get(ctx context.Context, userID string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sess, ok := r.s.sessions[userID]
	if !ok || !r.s.now().Before(sess.expiresAt) {
		delete(r.s.sessions, userID)
		return "", domain.ErrSessionNotFound
	}

	return sess.token, nil
}

// Delete removes the refresh token of the user.
func (r *Sessions) Delete(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.sessions, userID)

	return nil
}
