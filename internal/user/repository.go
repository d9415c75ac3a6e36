package user

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository handles user data persistence
type Repository struct {
	col *mongo.Collection
}

// NewRepository creates a new user repository with database dependency injected
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{col: db.Collection("users")}
}

// Create inserts a new user
func (r *Repository) Create(ctx context.Context, u *User) (*User, error) {
	res, err := r.col.InsertOne(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return u, nil
}

// GetByID retrieves a user by their ID. Returns nil when absent.
func (r *Repository) GetByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	u := &User{}
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetByLogin retrieves a user whose username or email matches the
// given login handle. Returns nil when absent.
func (r *Repository) GetByLogin(ctx context.Context, login string) (*User, error) {
	u := &User{}
	filter := bson.M{"$or": bson.A{
		bson.M{"username": login},
		bson.M{"email": login},
	}}
	err := r.col.FindOne(ctx, filter).Decode(u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by login: %w", err)
	}
	return u, nil
}

// FindConflict returns an existing user holding either the username or
// the email. Returns nil when both are free.
func (r *Repository) FindConflict(ctx context.Context, username, email string) (*User, error) {
	u := &User{}
	filter := bson.M{"$or": bson.A{
		bson.M{"username": username},
		bson.M{"email": email},
	}}
	err := r.col.FindOne(ctx, filter).Decode(u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check user conflict: %w", err)
	}
	return u, nil
}

// UpdateProfile modifies the mutable profile fields and returns the
// updated document.
func (r *Repository) UpdateProfile(ctx context.Context, id primitive.ObjectID, aboutMe *string, avatar *Avatar) (*User, error) {
	set := bson.M{}
	if aboutMe != nil {
		set["about_me"] = *aboutMe
	}
	if avatar != nil {
		set["avatar"] = avatar
	}
	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}

	u := &User{}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return u, nil
}

// SetActive flips the account active flag.
func (r *Repository) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"is_active": active}})
	if err != nil {
		return fmt.Errorf("failed to set user active flag: %w", err)
	}
	return nil
}

// List retrieves every user, for the admin dashboard.
func (r *Repository) List(ctx context.Context) ([]*User, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer cur.Close(ctx)

	var users []*User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// Summaries resolves a set of user IDs to their listing shape, keyed
// by ID so callers can preserve their own ordering.
func (r *Repository) Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]Summary, error) {
	if len(ids) == 0 {
		return map[primitive.ObjectID]Summary{}, nil
	}

	opts := options.Find().SetProjection(bson.M{"username": 1, "avatar": 1})
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load user summaries: %w", err)
	}
	defer cur.Close(ctx)

	var summaries []Summary
	if err := cur.All(ctx, &summaries); err != nil {
		return nil, fmt.Errorf("failed to decode user summaries: %w", err)
	}

	byID := make(map[primitive.ObjectID]Summary, len(summaries))
	for _, s := range summaries {
		byID[s.ID] = s
	}
	return byID, nil
}

// IsAdmin reports whether the user holds the administrator flag.
// Missing users are simply not admins.
func (r *Repository) IsAdmin(ctx context.Context, id primitive.ObjectID) (bool, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return u != nil && u.IsAdmin, nil
}
