package service

import (
	"context"

	"friendnet/internal/models"
	"friendnet/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// ListUsers returns users newest first, filtered by the search query:
// a query containing "@" matches the exact email, anything else matches
// the username as a substring, and an empty query matches everyone.
func (s *UserService) ListUsers(ctx context.Context, search string, limit, offset int) ([]models.User, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.userRepo.Search(ctx, search, limit, offset)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}
