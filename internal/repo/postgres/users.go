package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/coursehub/internal/domain/user"
	"github.com/geocoder89/coursehub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersRepo struct {
	pool    *pgxpool.Pool
	metrics *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, metrics *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, metrics: metrics}
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	err := r.metrics.ObserveDB("users.create", func() error {
		err := r.pool.QueryRow(
			ctx,
			`INSERT INTO users (first_name, last_name, email_address, password_hash, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			u.FirstName, u.LastName, u.EmailAddress, u.PasswordHash, u.CreatedAt, u.UpdatedAt,
		).Scan(&u.ID)

		return constraintError(err)
	})

	if err != nil {
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.metrics.ObserveDB("users.get_by_email", func() error {
		err := r.pool.QueryRow(
			ctx,
			`SELECT id, first_name, last_name, email_address, password_hash, created_at, updated_at
			FROM users
			WHERE email_address = $1`,
			email,
		).Scan(
			&u.ID,
			&u.FirstName,
			&u.LastName,
			&u.EmailAddress,
			&u.PasswordHash,
			&u.CreatedAt,
			&u.UpdatedAt,
		)

		if errors.Is(err, pgx.ErrNoRows) {
			return user.ErrNotFound
		}
		return err
	})

	if err != nil {
		return user.User{}, err
	}
	return u, nil
}
