package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"converse-backend/internal/models"
)

// ErrNotFound is returned when no conversation matches the lookup.
var ErrNotFound = errors.New("conversation not found")

type ConversationRepo struct {
	coll *mongo.Collection
}

func NewConversationRepo(db *mongo.Database) *ConversationRepo {
	return &ConversationRepo{coll: db.Collection("conversations")}
}

func (r *ConversationRepo) Insert(ctx context.Context, c *models.Conversation) error {
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Title == "" {
		c.Title = models.DefaultTitle
	}

	if _, err := r.coll.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("failed to insert conversation: %w", err)
	}
	return nil
}

// GetByID loads a conversation regardless of owner. The message path uses
// this so it can tell a missing conversation apart from a foreign one.
func (r *ConversationRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Conversation, error) {
	c := &models.Conversation{}
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	return c, nil
}

// GetByOwner loads a conversation scoped to its owner. A conversation owned
// by someone else decodes to the same ErrNotFound as a missing one.
func (r *ConversationRepo) GetByOwner(ctx context.Context, id primitive.ObjectID, userID string) (*models.Conversation, error) {
	c := &models.Conversation{}
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	return c, nil
}

// Update writes title, turns and the update timestamp in a single document
// write. Writes are last-one-wins: two requests appending to the same
// conversation at once are not coordinated, and one turn pair can be lost.
func (r *ConversationRepo) Update(ctx context.Context, c *models.Conversation) error {
	c.UpdatedAt = time.Now().UTC()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": c.ID}, bson.M{"$set": bson.M{
		"title":      c.Title,
		"turns":      c.Turns,
		"updated_at": c.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("failed to update conversation: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByUser returns the caller's conversations projected to id, title and
// creation time, newest first.
func (r *ConversationRepo) ListByUser(ctx context.Context, userID string) ([]models.ConversationSummary, error) {
	opts := options.Find().
		SetProjection(bson.M{"title": 1, "created_at": 1}).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer cursor.Close(ctx)

	summaries := []models.ConversationSummary{}
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, fmt.Errorf("failed to decode conversations: %w", err)
	}
	return summaries, nil
}
