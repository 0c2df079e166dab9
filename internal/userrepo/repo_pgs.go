// Package userrepo manages repository layer of users.
package userrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates user repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns user RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// CreateQuery inserts into users table.
const CreateQuery = `
INSERT INTO users (
    id,
    email,
    hashed_password,
    first_name,
    last_name,
    role
) VALUES (
    $1, $2, $3, $4, $5, $6
) RETURNING id, email, hashed_password, first_name, last_name, role, created_at
`

func scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.HashedPassword,
		&u.FirstName,
		&u.LastName,
		&u.Role,
		&u.CreatedAt,
	)

	return u, err
}

// Create creates the user and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateUserParams) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	role := arg.Role
	if role == "" {
		role = domain.RoleCustomer
	}

	row := r.db.QueryRowContext(ctx, CreateQuery,
		uuid.NewString(),
		arg.Email,
		arg.HashedPassword,
		arg.FirstName,
		arg.LastName,
		role,
	)

	u, err := scanUser(row)
	if err != nil {
		l.Error().Err(err).Send()

		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" && pqErr.Constraint == "users_email_key" {
			return domain.User{}, domain.ErrEmailAlreadyExists
		}

		return domain.User{}, dbpkg.StoreError(err)
	}

	return u, nil
}

const getQuery = `
SELECT id, email, hashed_password, first_name, last_name, role, created_at
FROM users
WHERE id = $1
`

// Get returns the user with the given id.
func (r *RepoPGS) Get(ctx context.Context, id string) (domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.User{}, domain.ErrUserNotFound
	}

	return r.getOne(ctx, getQuery, id)
}

const getByEmailQuery = `
SELECT id, email, hashed_password, first_name, last_name, role, created_at
FROM users
WHERE email = $1
`

// GetByEmail returns the user with the given email.
func (r *RepoPGS) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getOne(ctx, getByEmailQuery, email)
}

func (r *RepoPGS) getOne(ctx context.Context, query, arg string) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	u, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}

		l.Error().Err(err).Send()

		return domain.User{}, dbpkg.StoreError(err)
	}

	return u, nil
}
