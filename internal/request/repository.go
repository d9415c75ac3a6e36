package request

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository handles join-request data persistence
type Repository struct {
	col *mongo.Collection
}

// NewRepository creates a new request repository with database dependency injected
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{col: db.Collection("requests")}
}

// Create inserts a new request
func (r *Repository) Create(ctx context.Context, req *Request) (*Request, error) {
	res, err := r.col.InsertOne(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.ID = res.InsertedID.(primitive.ObjectID)
	return req, nil
}

// GetByID retrieves a request by ID. Returns nil when absent.
func (r *Repository) GetByID(ctx context.Context, id primitive.ObjectID) (*Request, error) {
	req := &Request{}
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(req)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return req, nil
}

// FindPendingForPair returns the pending request of a (event, user)
// pair, nil when there is none. The domain allows at most one.
func (r *Repository) FindPendingForPair(ctx context.Context, eventID, userID primitive.ObjectID) (*Request, error) {
	req := &Request{}
	err := r.col.FindOne(ctx, bson.M{
		"event":  eventID,
		"user":   userID,
		"status": StatusPending,
	}).Decode(req)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find pending request: %w", err)
	}
	return req, nil
}

// CountPendingByUser counts a user's pending requests across all
// events, for the anti-spam throttle.
func (r *Repository) CountPendingByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"user": userID, "status": StatusPending})
	if err != nil {
		return 0, fmt.Errorf("failed to count pending requests: %w", err)
	}
	return n, nil
}

// SetStatus writes the request status.
func (r *Repository) SetStatus(ctx context.Context, id primitive.ObjectID, status Status) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return fmt.Errorf("failed to set request status: %w", err)
	}
	return nil
}

// Delete removes a request
func (r *Repository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete request: %w", err)
	}
	return nil
}

// DeleteAcceptedForPair removes only the accepted request of a
// (event, user) pair, the cleanup a voluntary leave performs.
func (r *Repository) DeleteAcceptedForPair(ctx context.Context, eventID, userID primitive.ObjectID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{
		"event":  eventID,
		"user":   userID,
		"status": StatusAccepted,
	})
	if err != nil {
		return fmt.Errorf("failed to delete accepted request: %w", err)
	}
	return nil
}

// DeleteAllForPair removes every request of a (event, user) pair,
// whatever its status. Used when a participant is forcibly removed.
func (r *Repository) DeleteAllForPair(ctx context.Context, eventID, userID primitive.ObjectID) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"event": eventID, "user": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete requests for pair: %w", err)
	}
	return res.DeletedCount, nil
}

// DeleteByEvent removes every request referencing an event.
func (r *Repository) DeleteByEvent(ctx context.Context, eventID primitive.ObjectID) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"event": eventID})
	if err != nil {
		return fmt.Errorf("failed to delete requests by event: %w", err)
	}
	return nil
}

// DeletePendingByUser removes every pending request a user holds.
// Used when the user is suspended.
func (r *Repository) DeletePendingByUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"user": userID, "status": StatusPending})
	if err != nil {
		return fmt.Errorf("failed to delete pending requests: %w", err)
	}
	return nil
}

// FindByUser retrieves the requests a user sent.
func (r *Repository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]*Request, error) {
	return r.find(ctx, bson.M{"user": userID}, nil)
}

// FindByEvent retrieves the requests targeting one event.
func (r *Repository) FindByEvent(ctx context.Context, eventID primitive.ObjectID) ([]*Request, error) {
	return r.find(ctx, bson.M{"event": eventID}, nil)
}

// FindByEvents retrieves the requests targeting any of the given
// events, newest first.
func (r *Repository) FindByEvents(ctx context.Context, eventIDs []primitive.ObjectID) ([]*Request, error) {
	if len(eventIDs) == 0 {
		return nil, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "request_date", Value: -1}})
	return r.find(ctx, bson.M{"event": bson.M{"$in": eventIDs}}, opts)
}

func (r *Repository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*Request, error) {
	var cur *mongo.Cursor
	var err error
	if opts != nil {
		cur, err = r.col.Find(ctx, filter, opts)
	} else {
		cur, err = r.col.Find(ctx, filter)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer cur.Close(ctx)

	var requests []*Request
	if err := cur.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode requests: %w", err)
	}
	return requests, nil
}
