package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fwwzhai/thrifty-backend/internal/domain/entity"
	"github.com/fwwzhai/thrifty-backend/internal/repository"
)

const listingsCollection = "listings"

type listingRepository struct {
	collection *mongo.Collection
}

func NewListingRepository(db *mongo.Database) repository.ListingRepository {
	return &listingRepository{collection: db.Collection(listingsCollection)}
}

func (r *listingRepository) Create(ctx context.Context, listing *entity.Listing) error {
	if _, err := r.collection.InsertOne(ctx, listing); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create listing: %w", err)
	}
	return nil
}

func (r *listingRepository) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	var listing entity.Listing
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get listing %s: %w", id, err)
	}
	return &listing, nil
}

// MarkSold is the single conditional write the purchase path relies on.
// The filter requires the listing to still be active, so of N racing
// buyers exactly one update matches.
func (r *listingRepository) MarkSold(ctx context.Context, params repository.MarkSoldParams) error {
	filter := bson.M{
		"_id":    params.ListingID,
		"status": entity.StatusActive,
	}
	update := bson.M{
		"$set": bson.M{
			"status":   entity.StatusSold,
			"buyer_id": params.BuyerID,
			"sold_at":  params.SoldAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to mark listing %s sold: %w", params.ListingID, err)
	}

	if result.MatchedCount == 0 {
		// Distinguish a lost race from a missing listing.
		var existing entity.Listing
		errFind := r.collection.FindOne(ctx, bson.M{"_id": params.ListingID}).Decode(&existing)
		if errors.Is(errFind, mongo.ErrNoDocuments) {
			return repository.ErrNotFound
		}
		if errFind != nil {
			return fmt.Errorf("failed to re-read listing %s after conditional miss: %w", params.ListingID, errFind)
		}
		return repository.ErrConflict
	}
	return nil
}

func (r *listingRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete listing %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *listingRepository) ListByOwner(ctx context.Context, ownerID string) ([]entity.Listing, error) {
	return r.find(ctx, bson.M{"owner_id": ownerID})
}

func (r *listingRepository) List(ctx context.Context) ([]entity.Listing, error) {
	return r.find(ctx, bson.M{})
}

func (r *listingRepository) find(ctx context.Context, filter bson.M) ([]entity.Listing, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	defer cursor.Close(ctx)

	var listings []entity.Listing
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}
	return listings, nil
}

func (r *listingRepository) Watch(ctx context.Context) (<-chan struct{}, error) {
	stream, err := r.collection.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, fmt.Errorf("failed to open listing change stream: %w", err)
	}
	return pumpChangeStream(ctx, stream), nil
}

// pumpChangeStream converts a change stream into a coalescing signal
// channel. The channel is closed when ctx is cancelled or the stream
// ends.
func pumpChangeStream(ctx context.Context, stream *mongo.ChangeStream) <-chan struct{} {
	signals := make(chan struct{}, 1)
	go func() {
		defer close(signals)
		defer stream.Close(context.Background())
		for stream.Next(ctx) {
			select {
			case signals <- struct{}{}:
			default:
				// A signal is already pending; coalesce.
			}
		}
	}()
	return signals
}
