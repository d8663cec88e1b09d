package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"imagify/internal/cache"
	errs "imagify/internal/errors"
	"imagify/internal/model"
	"imagify/internal/repository"
)

const creditsCacheTTL = 5 * time.Minute

func creditsCacheKey(userID uint) string {
	return fmt.Sprintf("user:credits:%d", userID)
}

// UserService exposes user-facing account operations.
type UserService interface {
	Credits(ctx context.Context, userID uint) (*model.User, error)
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache}
}

// Credits returns the user with their current credit balance. The cached copy
// is invalidated whenever settlement or image generation touches the balance.
func (s *userService) Credits(ctx context.Context, userID uint) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, creditsCacheKey(userID)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.ErrUserNotFound
		}
		return nil, err
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, creditsCacheKey(userID), payload, creditsCacheTTL)
	}
	return user, nil
}
