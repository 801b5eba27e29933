package model

import (
	"errors"
	"time"
)

// Follow is a directed edge: follower -> followed. Unique per pair,
// self-follows rejected before the row is ever attempted.
type Follow struct {
	FollowerID int64     `db:"follower_id" json:"follower_id"`
	FollowedID int64     `db:"followed_id" json:"followed_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// FollowResult is returned by a successful follow. IsMutual reports
// whether the reverse edge already existed at the time of the follow.
type FollowResult struct {
	IsMutual bool `json:"is_mutual"`
}

// FollowedUser is one row of a following list, enriched with the mutual
// flag computed live from the edges (never a stored column).
type FollowedUser struct {
	UserSummary
	IsMutual   bool      `json:"is_mutual"`
	FollowedAt time.Time `json:"followed_at"`
}

var (
	ErrAlreadyFollowing = errors.New("already following this user")
	ErrNotFollowing     = errors.New("not following this user")
	ErrCannotFollowSelf = errors.New("cannot follow yourself")
)
