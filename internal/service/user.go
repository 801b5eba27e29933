package service

import (
	"context"

	"bookpulse/internal/model"
	"bookpulse/internal/repository"
)

// UserService exposes account lookups. Registration and credentials are
// handled upstream; accounts arrive in the database already provisioned.
type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) Get(ctx context.Context, userID int64) (*model.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}
