package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewMongoConnection connects to MongoDB, verifies the connection and
// ensures the indexes the application relies on.
func NewMongoConnection(uri, dbName string) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(dbName)
	if err := ensureIndexes(ctx, db); err != nil {
		return nil, err
	}

	return db, nil
}

// ensureIndexes creates the uniqueness indexes the domain invariants
// depend on: one favorite per (user, event) pair and unique user
// handles.
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	_, err := db.Collection("favorites").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}, {Key: "event", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return fmt.Errorf("failed to create favorites index: %w", err)
	}

	userIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := db.Collection("users").Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	requestIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "event", Value: 1}, {Key: "user", Value: 1}}},
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "status", Value: 1}}},
	}
	if _, err := db.Collection("requests").Indexes().CreateMany(ctx, requestIndexes); err != nil {
		return fmt.Errorf("failed to create request indexes: %w", err)
	}

	return nil
}

// Disconnect closes the underlying client with a short grace period.
func Disconnect(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return db.Client().Disconnect(ctx)
}
