package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"bookpulse/internal/model"
)

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `
		SELECT id, username, display_name, bio, avatar_url, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	var user model.User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id)
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

// GetSummaries batch-loads author shapes in one query to keep feed and
// comment hydration free of N+1 lookups.
func (r *userRepository) GetSummaries(ctx context.Context, ids []int64) (map[int64]model.UserSummary, error) {
	result := make(map[int64]model.UserSummary, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query := `SELECT id, username, display_name, avatar_url FROM users WHERE id = ANY($1)`
	var users []model.UserSummary
	if err := r.db.SelectContext(ctx, &users, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("get user summaries: %w", err)
	}
	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}
