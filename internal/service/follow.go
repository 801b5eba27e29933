package service

import (
	"context"
	"log"
	"sort"

	"bookpulse/internal/model"
	"bookpulse/internal/queue"
	"bookpulse/internal/repository"
)

// FollowService manages the directed follow graph. Mutuality is never
// stored: both directions are read from the edges whenever a caller asks.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	publisher  queue.Publisher
}

func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository, publisher queue.Publisher) *FollowService {
	return &FollowService{followRepo: followRepo, userRepo: userRepo, publisher: publisher}
}

// Follow creates the follower -> followed edge. Following twice is a
// conflict, following yourself is rejected outright, and the result
// reports whether the reverse edge already made the pair mutual.
func (s *FollowService) Follow(ctx context.Context, followerID, followedID int64) (*model.FollowResult, error) {
	if followerID == followedID {
		return nil, model.ErrCannotFollowSelf
	}

	exists, err := s.userRepo.Exists(ctx, followedID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrUserNotFound
	}

	inserted, err := s.followRepo.Create(ctx, followerID, followedID)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, model.ErrAlreadyFollowing
	}

	mutual, err := s.followRepo.Exists(ctx, followedID, followerID)
	if err != nil {
		return nil, err
	}

	event := queue.NewUserFollowedEvent(followerID, followedID)
	if _, err := s.publisher.Publish(ctx, queue.StreamFeed, event); err != nil {
		log.Printf("[FollowService] publish follow event failed: follower=%d followed=%d err=%v", followerID, followedID, err)
	}

	return &model.FollowResult{IsMutual: mutual}, nil
}

// Unfollow removes the edge. The reverse edge, if any, is untouched.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followedID int64) error {
	if followerID == followedID {
		return model.ErrCannotFollowSelf
	}

	if err := s.followRepo.Delete(ctx, followerID, followedID); err != nil {
		return err
	}

	event := queue.NewUserUnfollowedEvent(followerID, followedID)
	if _, err := s.publisher.Publish(ctx, queue.StreamFeed, event); err != nil {
		log.Printf("[FollowService] publish unfollow event failed: follower=%d followed=%d err=%v", followerID, followedID, err)
	}
	return nil
}

// IsMutual reports whether both directed edges exist between the two users.
func (s *FollowService) IsMutual(ctx context.Context, userA, userB int64) (bool, error) {
	if userA == userB {
		return false, nil
	}
	forward, err := s.followRepo.Exists(ctx, userA, userB)
	if err != nil || !forward {
		return false, err
	}
	return s.followRepo.Exists(ctx, userB, userA)
}

// Following lists who the user follows, mutuals first, then most recently
// followed first within each group.
func (s *FollowService) Following(ctx context.Context, userID int64) ([]model.FollowedUser, error) {
	following, err := s.followRepo.ListFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(following) == 0 {
		return []model.FollowedUser{}, nil
	}

	ids := make([]int64, len(following))
	for i, f := range following {
		ids[i] = f.ID
	}
	mutuals, err := s.followRepo.MutualIDs(ctx, userID, ids)
	if err != nil {
		return nil, err
	}
	for i := range following {
		following[i].IsMutual = mutuals[following[i].ID]
	}

	sort.SliceStable(following, func(i, j int) bool {
		return following[i].IsMutual && !following[j].IsMutual
	})
	return following, nil
}
