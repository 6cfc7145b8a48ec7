// Package mongo stores users, bookings, payments and destinations as
// documents, one collection per kind.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	UsersCollection        = "users"
	BookingsCollection     = "bookings"
	PaymentsCollection     = "payments"
	DestinationsCollection = "destinations"
)

// EnsureIndexes creates the unique and query indexes used by the repositories.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		BookingsCollection: {
			{Keys: bson.D{{Key: "user_email", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		PaymentsCollection: {
			{Keys: bson.D{{Key: "user_email", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "user_email", Value: 1}, {Key: "travel_date", Value: 1}}},
			{
				Keys: bson.D{{Key: "idempotency_key", Value: 1}},
				Options: options.Index().SetUnique(true).
					SetPartialFilterExpression(bson.M{"idempotency_key": bson.M{"$gt": ""}}),
			},
		},
	}

	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", coll, err)
		}
	}
	return nil
}

func isDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
