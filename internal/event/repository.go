package event

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// kmPerDegreeLat is the rough conversion used for the nearby bounding
// box. Longitude degrees shrink with latitude and are corrected below.
const kmPerDegreeLat = 111.0

// Repository handles event data persistence
type Repository struct {
	col *mongo.Collection
}

// NewRepository creates a new event repository with database dependency injected
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{col: db.Collection("events")}
}

// Create inserts a new event
func (r *Repository) Create(ctx context.Context, e *Event) (*Event, error) {
	res, err := r.col.InsertOne(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	e.ID = res.InsertedID.(primitive.ObjectID)
	return e, nil
}

// GetByID retrieves an event by ID. Returns nil when absent.
func (r *Repository) GetByID(ctx context.Context, id primitive.ObjectID) (*Event, error) {
	e := &Event{}
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return e, nil
}

// UpdateFields is the set of editable event fields. Nil fields are
// left untouched; ClearCapacity removes the capacity bound.
type UpdateFields struct {
	Title           *string
	Description     *string
	Location        *string
	Coordinates     *Coordinates
	Date            *time.Time
	Category        *Category
	Image           *Image
	MaxParticipants *int
}

// Update applies the given fields and returns the updated event.
func (r *Repository) Update(ctx context.Context, id primitive.ObjectID, f *UpdateFields) (*Event, error) {
	set := bson.M{}
	if f.Title != nil {
		set["title"] = *f.Title
	}
	if f.Description != nil {
		set["description"] = *f.Description
	}
	if f.Location != nil {
		set["location"] = *f.Location
	}
	if f.Coordinates != nil {
		set["coordinates"] = f.Coordinates
	}
	if f.Date != nil {
		set["date"] = *f.Date
	}
	if f.Category != nil {
		set["category"] = *f.Category
	}
	if f.Image != nil {
		set["image"] = f.Image
	}
	if f.MaxParticipants != nil {
		set["max_participants"] = *f.MaxParticipants
	}
	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}

	e := &Event{}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return e, nil
}

// Delete removes an event
func (r *Repository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// SetStatus writes the lifecycle status.
func (r *Repository) SetStatus(ctx context.Context, id primitive.ObjectID, status Status) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return fmt.Errorf("failed to set event status: %w", err)
	}
	return nil
}

// MarkExpired flips every open or closed event whose date has passed
// to finished. Idempotent: a second sweep matches nothing.
func (r *Repository) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.col.UpdateMany(ctx,
		bson.M{
			"date":   bson.M{"$lt": now},
			"status": bson.M{"$in": bson.A{StatusOpen, StatusClose}},
		},
		bson.M{"$set": bson.M{"status": StatusFinished}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to expire events: %w", err)
	}
	return res.ModifiedCount, nil
}

// AddParticipant appends the user to the participant list with a
// single conditional update: it matches only if the user is not
// already listed and, when a capacity is given, the joiner count
// (participants minus the creator, who holds no slot) is still below
// it. Returns false when nothing matched, so concurrent accepts on
// the last slot cannot both land.
func (r *Repository) AddParticipant(ctx context.Context, eventID, userID primitive.ObjectID, capacity *int) (bool, error) {
	filter := bson.M{
		"_id":          eventID,
		"participants": bson.M{"$ne": userID},
	}
	if capacity != nil {
		joiners := bson.M{"$size": bson.M{"$filter": bson.M{
			"input": "$participants",
			"as":    "p",
			"cond":  bson.M{"$ne": bson.A{"$$p", "$created_by"}},
		}}}
		filter["$expr"] = bson.M{"$lt": bson.A{joiners, *capacity}}
	}

	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$push": bson.M{"participants": userID}})
	if err != nil {
		return false, fmt.Errorf("failed to add participant: %w", err)
	}
	return res.ModifiedCount > 0, nil
}

// PullParticipant removes the user from the participant list.
func (r *Repository) PullParticipant(ctx context.Context, eventID, userID primitive.ObjectID) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": eventID}, bson.M{"$pull": bson.M{"participants": userID}})
	if err != nil {
		return fmt.Errorf("failed to remove participant: %w", err)
	}
	return nil
}

// PullParticipantFromFutureEvents removes the user from every event
// that has not yet happened. Past events keep their history.
func (r *Repository) PullParticipantFromFutureEvents(ctx context.Context, userID primitive.ObjectID, now time.Time) error {
	_, err := r.col.UpdateMany(ctx,
		bson.M{"participants": userID, "date": bson.M{"$gte": now}},
		bson.M{"$pull": bson.M{"participants": userID}},
	)
	if err != nil {
		return fmt.Errorf("failed to remove participant from future events: %w", err)
	}
	return nil
}

// FindOpen retrieves all open events.
func (r *Repository) FindOpen(ctx context.Context) ([]*Event, error) {
	return r.find(ctx, bson.M{"status": StatusOpen}, nil)
}

// FindUpcoming retrieves open future events ordered by date.
func (r *Repository) FindUpcoming(ctx context.Context, now time.Time, limit int64) ([]*Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return r.find(ctx, bson.M{
		"status": StatusOpen,
		"date":   bson.M{"$gte": now},
	}, opts)
}

// FindNearby retrieves open events inside a bounding box of
// distanceKm around the given point, ordered by date.
func (r *Repository) FindNearby(ctx context.Context, lat, lng, distanceKm float64, limit int64) ([]*Event, error) {
	latDelta := distanceKm / kmPerDegreeLat
	lngDelta := distanceKm / (kmPerDegreeLat * math.Cos(lat*math.Pi/180))

	filter := bson.M{
		"status":          StatusOpen,
		"coordinates.lat": bson.M{"$gte": lat - latDelta, "$lte": lat + latDelta},
		"coordinates.lng": bson.M{"$gte": lng - lngDelta, "$lte": lng + lngDelta},
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return r.find(ctx, filter, opts)
}

// FindByCreator retrieves the events a user created.
func (r *Repository) FindByCreator(ctx context.Context, userID primitive.ObjectID) ([]*Event, error) {
	return r.find(ctx, bson.M{"created_by": userID}, nil)
}

// FindParticipating retrieves the events a user joined but did not
// create.
func (r *Repository) FindParticipating(ctx context.Context, userID primitive.ObjectID) ([]*Event, error) {
	return r.find(ctx, bson.M{
		"participants": userID,
		"created_by":   bson.M{"$ne": userID},
	}, nil)
}

// FindAll retrieves every event, for the admin dashboard.
func (r *Repository) FindAll(ctx context.Context) ([]*Event, error) {
	return r.find(ctx, bson.M{}, nil)
}

// FindByIDs retrieves the events with the given IDs.
func (r *Repository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
}

// FindIDsByCreator returns just the IDs of a user's events.
func (r *Repository) FindIDsByCreator(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	events, err := r.find(ctx, bson.M{"created_by": userID}, opts)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return ids, nil
}

func (r *Repository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*Event, error) {
	var cur *mongo.Cursor
	var err error
	if opts != nil {
		cur, err = r.col.Find(ctx, filter, opts)
	} else {
		cur, err = r.col.Find(ctx, filter)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer cur.Close(ctx)

	var events []*Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	return events, nil
}
