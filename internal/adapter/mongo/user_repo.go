package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fwwzhai/thrifty-backend/internal/domain/entity"
	"github.com/fwwzhai/thrifty-backend/internal/repository"
)

const usersCollection = "users"

type userRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) repository.UserRepository {
	return &userRepository{collection: db.Collection(usersCollection)}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return &user, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, params repository.UpdateProfileParams) error {
	update := bson.M{"$set": bson.M{
		"name":       params.Name,
		"bio":        params.Bio,
		"avatar_ref": params.AvatarRef,
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": params.UserID}, update)
	if err != nil {
		return fmt.Errorf("failed to update profile for user %s: %w", params.UserID, err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
