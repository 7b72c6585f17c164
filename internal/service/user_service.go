package service

import (
	"context"
	"errors"

	"github.com/fwwzhai/thrifty-backend/internal/domain/entity"
	"github.com/fwwzhai/thrifty-backend/internal/platform/logger"
	"github.com/fwwzhai/thrifty-backend/internal/repository"
)

type UserService struct {
	users repository.UserRepository
	log   logger.Logger
}

func NewUserService(users repository.UserRepository, log logger.Logger) *UserService {
	return &UserService{users: users, log: log}
}

func (s *UserService) Register(ctx context.Context, user *entity.User) error {
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return entity.ErrInvalidOperation
		}
		return err
	}
	return nil
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, params repository.UpdateProfileParams) error {
	if err := s.users.UpdateProfile(ctx, params); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return entity.ErrNotFound
		}
		return err
	}
	return nil
}
