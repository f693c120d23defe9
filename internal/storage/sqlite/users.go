package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tracker/internal/models"
	"tracker/internal/repository"
)

// CreateUser inserts an account; a taken username yields repository.ErrDuplicate.
func (r *Repo) CreateUser(ctx context.Context, username, passwordHash string) (models.User, error) {
	now := r.now()
	res, err := r.q.ExecContext(ctx, `INSERT INTO users(username, password_hash, created_at) VALUES(?, ?, ?)`, username, passwordHash, now)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, fmt.Errorf("insert user: %w", repository.ErrDuplicate)
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("user id: %w", err)
	}
	return models.User{ID: id, Username: username, PasswordHash: passwordHash, CreatedAt: now}, nil
}

// FindUserByID fetches a single user.
func (r *Repo) FindUserByID(ctx context.Context, id int64) (models.User, error) {
	return r.scanUser(r.q.QueryRowContext(ctx, `SELECT id, username, password_hash, created_at FROM users WHERE id = ?`, id))
}

// FindUserByUsername fetches a user by exact username.
func (r *Repo) FindUserByUsername(ctx context.Context, username string) (models.User, error) {
	return r.scanUser(r.q.QueryRowContext(ctx, `SELECT id, username, password_hash, created_at FROM users WHERE username = ?`, username))
}

func (r *Repo) scanUser(row *sql.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, repository.ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
