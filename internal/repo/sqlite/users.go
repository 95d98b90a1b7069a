package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/geocoder89/coursehub/internal/domain/user"
	"github.com/geocoder89/coursehub/internal/observability"
)

type UsersRepo struct {
	db      *sql.DB
	metrics *observability.Prom
}

func NewUsersRepo(db *sql.DB, metrics *observability.Prom) *UsersRepo {
	return &UsersRepo{db: db, metrics: metrics}
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	err := r.metrics.ObserveDB("users.create", func() error {
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO users (first_name, last_name, email_address, password_hash, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			u.FirstName, u.LastName, u.EmailAddress, u.PasswordHash, u.CreatedAt, u.UpdatedAt,
		)
		if err != nil {
			return constraintError(err)
		}

		u.ID, err = res.LastInsertId()
		return err
	})

	if err != nil {
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.metrics.ObserveDB("users.get_by_email", func() error {
		err := r.db.QueryRowContext(ctx,
			`SELECT id, first_name, last_name, email_address, password_hash, created_at, updated_at
			FROM users
			WHERE email_address = ?`,
			email,
		).Scan(&u.ID, &u.FirstName, &u.LastName, &u.EmailAddress, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)

		if errors.Is(err, sql.ErrNoRows) {
			return user.ErrNotFound
		}
		return err
	})

	if err != nil {
		return user.User{}, err
	}

	return u, nil
}
