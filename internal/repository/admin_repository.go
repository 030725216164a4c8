package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AdminRepository struct {
	Col *mongo.Collection
}

func NewAdminRepository(db *mongo.Database) *AdminRepository {
	return &AdminRepository{Col: db.Collection("admin_users")}
}

// Add puts the user on the stored admin allow-list. Adding an existing
// admin is a no-op.
func (r *AdminRepository) Add(ctx context.Context, userID int64) error {
	filter := bson.M{"_id": userID}
	update := bson.M{"$setOnInsert": bson.M{"added_date": time.Now()}}
	_, err := r.Col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// IsAdmin reports whether the user is on the stored allow-list.
func (r *AdminRepository) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	n, err := r.Col.CountDocuments(ctx, bson.M{"_id": userID})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
