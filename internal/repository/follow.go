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

type followRepository struct {
	db *sqlx.DB
}

func NewFollowRepository(db *sqlx.DB) FollowRepository {
	return &followRepository{db: db}
}

// Create inserts the edge idempotently: ON CONFLICT DO NOTHING plus
// RowsAffected tells us whether this call actually created it.
func (r *followRepository) Create(ctx context.Context, followerID, followedID int64) (bool, error) {
	query := `
		INSERT INTO follows (follower_id, followed_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, followed_id) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query, followerID, followedID)
	if err != nil {
		return false, fmt.Errorf("create follow: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *followRepository) Delete(ctx context.Context, followerID, followedID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND followed_id = $2`,
		followerID, followedID)
	if err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotFollowing
	}
	return nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followedID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND followed_id = $2)`,
		followerID, followedID)
	if err != nil {
		return false, fmt.Errorf("check follow existence: %w", err)
	}
	return exists, nil
}

func (r *followRepository) GetFollowedIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.SelectContext(ctx, &ids,
		`SELECT followed_id FROM follows WHERE follower_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("get followed ids: %w", err)
	}
	return ids, nil
}

func (r *followRepository) GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.SelectContext(ctx, &ids,
		`SELECT follower_id FROM follows WHERE followed_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("get follower ids: %w", err)
	}
	return ids, nil
}

// MutualIDs is the one place mutuality is computed: the candidate subset
// where both directed edges exist, as a self-join set intersection. It is
// never persisted, so it can never drift from the edges.
func (r *followRepository) MutualIDs(ctx context.Context, viewerID int64, candidateIDs []int64) (map[int64]bool, error) {
	result := make(map[int64]bool, len(candidateIDs))
	for _, id := range candidateIDs {
		result[id] = false
	}
	if len(candidateIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT f.followed_id
		FROM follows f
		JOIN follows rev ON rev.follower_id = f.followed_id AND rev.followed_id = f.follower_id
		WHERE f.follower_id = $1 AND f.followed_id = ANY($2)
	`
	var mutual []int64
	err := r.db.SelectContext(ctx, &mutual, query, viewerID, pq.Array(candidateIDs))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("mutual ids: %w", err)
	}
	for _, id := range mutual {
		result[id] = true
	}
	return result, nil
}

func (r *followRepository) ListFollowing(ctx context.Context, userID int64) ([]model.FollowedUser, error) {
	query := `
		SELECT u.id, u.username, u.display_name, u.avatar_url, f.created_at AS followed_at
		FROM follows f
		JOIN users u ON u.id = f.followed_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC
	`
	type row struct {
		model.UserSummary
		FollowedAt sql.NullTime `db:"followed_at"`
	}
	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list following: %w", err)
	}

	users := make([]model.FollowedUser, len(rows))
	for i, r := range rows {
		users[i] = model.FollowedUser{UserSummary: r.UserSummary, FollowedAt: r.FollowedAt.Time}
	}
	return users, nil
}
