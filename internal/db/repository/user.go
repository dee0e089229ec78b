package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"nosql-catalog/internal/domain"
)

// UserRepo implements domain.UserRepository.
type UserRepo struct {
	db DBTX
}

// NewUserRepo creates a UserRepo.
func NewUserRepo(db DBTX) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (user_name, password, created_at) VALUES (?, ?, ?)`,
		u.Name, u.PasswordHash, now.Format(time.RFC3339))
	if err != nil {
		err = mapDBError(err)
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			return nil, domain.ErrConflict("user %q already exists", u.Name)
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &domain.User{ID: id, Name: u.Name, PasswordHash: u.PasswordHash, CreatedAt: now.Truncate(time.Second)}, nil
}

func (r *UserRepo) GetByName(ctx context.Context, name string) (*domain.User, error) {
	var (
		u       domain.User
		created string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_name, password, created_at FROM users WHERE user_name = ?`, name,
	).Scan(&u.ID, &u.Name, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound("user %q not found", name)
	}
	if err != nil {
		return nil, err
	}
	if t, perr := time.Parse(time.RFC3339, created); perr == nil {
		u.CreatedAt = t
	}
	return &u, nil
}

var _ domain.UserRepository = (*UserRepo)(nil)
