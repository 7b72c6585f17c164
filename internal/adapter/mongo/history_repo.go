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

const (
	purchaseHistoryCollection = "purchase_history"
	soldHistoryCollection     = "sold_history"
)

type historyRepository struct {
	purchases *mongo.Collection
	sold      *mongo.Collection
}

func NewHistoryRepository(db *mongo.Database) repository.HistoryRepository {
	return &historyRepository{
		purchases: db.Collection(purchaseHistoryCollection),
		sold:      db.Collection(soldHistoryCollection),
	}
}

func (r *historyRepository) PutPurchase(ctx context.Context, entry *entity.HistoryEntry) error {
	return putHistory(ctx, r.purchases, entry)
}

func (r *historyRepository) PutSold(ctx context.Context, entry *entity.HistoryEntry) error {
	return putHistory(ctx, r.sold, entry)
}

// putHistory upserts on the (user, listing) key so a repaired fan-out
// never duplicates a row.
func putHistory(ctx context.Context, collection *mongo.Collection, entry *entity.HistoryEntry) error {
	filter := bson.M{"user_id": entry.UserID, "listing_id": entry.ListingID}
	_, err := collection.ReplaceOne(ctx, filter, entry, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to write history entry: %w", err)
	}
	return nil
}

func (r *historyRepository) GetPurchase(ctx context.Context, userID, listingID string) (*entity.HistoryEntry, error) {
	return getHistory(ctx, r.purchases, userID, listingID)
}

func (r *historyRepository) GetSold(ctx context.Context, userID, listingID string) (*entity.HistoryEntry, error) {
	return getHistory(ctx, r.sold, userID, listingID)
}

func getHistory(ctx context.Context, collection *mongo.Collection, userID, listingID string) (*entity.HistoryEntry, error) {
	var entry entity.HistoryEntry
	err := collection.FindOne(ctx, bson.M{"user_id": userID, "listing_id": listingID}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get history entry: %w", err)
	}
	return &entry, nil
}

func (r *historyRepository) ListPurchases(ctx context.Context, userID string) ([]entity.HistoryEntry, error) {
	return listHistory(ctx, r.purchases, userID)
}

func (r *historyRepository) ListSold(ctx context.Context, userID string) ([]entity.HistoryEntry, error) {
	return listHistory(ctx, r.sold, userID)
}

func listHistory(ctx context.Context, collection *mongo.Collection, userID string) ([]entity.HistoryEntry, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := collection.Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list history for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var entries []entity.HistoryEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode history entries: %w", err)
	}
	return entries, nil
}
