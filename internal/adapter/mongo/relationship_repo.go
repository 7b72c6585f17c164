package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fwwzhai/thrifty-backend/internal/domain/entity"
	"github.com/fwwzhai/thrifty-backend/internal/repository"
)

const (
	wishlistCollection    = "wishlist"
	followEdgesCollection = "follow_edges"
)

type wishlistRepository struct {
	collection *mongo.Collection
}

func NewWishlistRepository(db *mongo.Database) repository.WishlistRepository {
	return &wishlistRepository{collection: db.Collection(wishlistCollection)}
}

func (r *wishlistRepository) Contains(ctx context.Context, userID, listingID string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID, "listing_id": listingID})
	if err != nil {
		return false, fmt.Errorf("failed to check wishlist membership: %w", err)
	}
	return count > 0, nil
}

func (r *wishlistRepository) Add(ctx context.Context, entry *entity.WishlistEntry) error {
	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to add wishlist entry: %w", err)
	}
	return nil
}

func (r *wishlistRepository) Remove(ctx context.Context, userID, listingID string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID, "listing_id": listingID})
	if err != nil {
		return fmt.Errorf("failed to remove wishlist entry: %w", err)
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *wishlistRepository) ListByUser(ctx context.Context, userID string) ([]entity.WishlistEntry, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "added_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var entries []entity.WishlistEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode wishlist entries: %w", err)
	}
	return entries, nil
}

type followEdgeDocument struct {
	Side      repository.EdgeSide `bson:"side"`
	OwnerID   string              `bson:"owner_id"`
	RelatedID string              `bson:"related_id"`
	Since     time.Time           `bson:"since"`
}

type followRepository struct {
	collection *mongo.Collection
}

func NewFollowRepository(db *mongo.Database) repository.FollowRepository {
	return &followRepository{collection: db.Collection(followEdgesCollection)}
}

func (r *followRepository) AddEdge(ctx context.Context, side repository.EdgeSide, ownerID, relatedID string, since time.Time) error {
	doc := followEdgeDocument{Side: side, OwnerID: ownerID, RelatedID: relatedID, Since: since}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to add %s edge: %w", side, err)
	}
	return nil
}

func (r *followRepository) RemoveEdge(ctx context.Context, side repository.EdgeSide, ownerID, relatedID string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"side": side, "owner_id": ownerID, "related_id": relatedID})
	if err != nil {
		return fmt.Errorf("failed to remove %s edge: %w", side, err)
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *followRepository) HasEdge(ctx context.Context, side repository.EdgeSide, ownerID, relatedID string) (bool, error) {
	err := r.collection.FindOne(ctx, bson.M{"side": side, "owner_id": ownerID, "related_id": relatedID}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check %s edge: %w", side, err)
	}
	return true, nil
}

func (r *followRepository) ListEdges(ctx context.Context, side repository.EdgeSide, ownerID string) ([]entity.FollowEdge, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "since", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"side": side, "owner_id": ownerID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s edges: %w", side, err)
	}
	defer cursor.Close(ctx)

	var docs []followEdgeDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode %s edges: %w", side, err)
	}

	edges := make([]entity.FollowEdge, len(docs))
	for i, doc := range docs {
		edges[i] = entity.FollowEdge{OwnerID: doc.OwnerID, RelatedID: doc.RelatedID, Since: doc.Since}
	}
	return edges, nil
}
