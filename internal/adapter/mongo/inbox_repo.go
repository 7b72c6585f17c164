package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fwwzhai/thrifty-backend/internal/domain/entity"
	"github.com/fwwzhai/thrifty-backend/internal/repository"
)

const inboxCollection = "inbox"

type inboxRepository struct {
	collection *mongo.Collection
}

func NewInboxRepository(db *mongo.Database) repository.InboxRepository {
	return &inboxRepository{collection: db.Collection(inboxCollection)}
}

func (r *inboxRepository) Put(ctx context.Context, entry *entity.InboxEntry) error {
	filter := bson.M{"_id": entry.ID, "recipient_id": entry.RecipientID}
	_, err := r.collection.ReplaceOne(ctx, filter, entry, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to write inbox entry: %w", err)
	}
	return nil
}

func (r *inboxRepository) ListByRecipient(ctx context.Context, userID string) ([]entity.InboxEntry, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"recipient_id": userID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list inbox for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var entries []entity.InboxEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode inbox entries: %w", err)
	}
	return entries, nil
}

func (r *inboxRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"recipient_id": userID, "read": false})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread inbox entries: %w", err)
	}
	return count, nil
}

func (r *inboxRepository) MarkRead(ctx context.Context, userID, entryID string) error {
	filter := bson.M{"_id": entryID, "recipient_id": userID}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return fmt.Errorf("failed to mark inbox entry read: %w", err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	// ModifiedCount of zero means it was already read; that is a no-op,
	// not an error.
	return nil
}

func (r *inboxRepository) Delete(ctx context.Context, userID, entryID string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": entryID, "recipient_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete inbox entry: %w", err)
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *inboxRepository) Watch(ctx context.Context, userID string) (<-chan struct{}, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "$or", Value: bson.A{
				bson.D{{Key: "fullDocument.recipient_id", Value: userID}},
				// Delete events carry no full document; let them through
				// and re-query.
				bson.D{{Key: "operationType", Value: "delete"}},
			}},
		}}},
	}
	streamOptions := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := r.collection.Watch(ctx, pipeline, streamOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to open inbox change stream: %w", err)
	}
	return pumpChangeStream(ctx, stream), nil
}
