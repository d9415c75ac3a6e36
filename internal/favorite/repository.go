package favorite

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository handles favorite data persistence
type Repository struct {
	col *mongo.Collection
}

// NewRepository creates a new favorite repository with database dependency injected
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{col: db.Collection("favorites")}
}

// Create inserts a new favorite
func (r *Repository) Create(ctx context.Context, f *Favorite) (*Favorite, error) {
	res, err := r.col.InsertOne(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to create favorite: %w", err)
	}
	f.ID = res.InsertedID.(primitive.ObjectID)
	return f, nil
}

// FindPair returns the favorite for a (user, event) pair, nil when
// there is none.
func (r *Repository) FindPair(ctx context.Context, userID, eventID primitive.ObjectID) (*Favorite, error) {
	f := &Favorite{}
	err := r.col.FindOne(ctx, bson.M{"user": userID, "event": eventID}).Decode(f)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find favorite: %w", err)
	}
	return f, nil
}

// DeletePair removes the favorite for a (user, event) pair. Returns
// false when there was nothing to delete.
func (r *Repository) DeletePair(ctx context.Context, userID, eventID primitive.ObjectID) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"user": userID, "event": eventID})
	if err != nil {
		return false, fmt.Errorf("failed to delete favorite: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// DeleteByEvent removes every favorite referencing an event.
func (r *Repository) DeleteByEvent(ctx context.Context, eventID primitive.ObjectID) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"event": eventID})
	if err != nil {
		return fmt.Errorf("failed to delete favorites by event: %w", err)
	}
	return nil
}

// FindByUser retrieves a user's favorites, newest first.
func (r *Repository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]*Favorite, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer cur.Close(ctx)

	var favorites []*Favorite
	if err := cur.All(ctx, &favorites); err != nil {
		return nil, fmt.Errorf("failed to decode favorites: %w", err)
	}
	return favorites, nil
}
