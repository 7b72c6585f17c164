package repository

import (
	"context"

	"github.com/fwwzhai/thrifty-backend/internal/domain/entity"
)

type UpdateProfileParams struct {
	UserID    string
	Name      string
	Bio       string
	AvatarRef string
}

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	UpdateProfile(ctx context.Context, params UpdateProfileParams) error
}
