package repository

import (
	"context"
	"time"

	"dtm-test-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository struct {
	Col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{Col: db.Collection("users")}
}

// Register inserts the user if absent and reports whether an insert
// happened. An existing user keeps their stored language and
// registration date.
func (r *UserRepository) Register(ctx context.Context, userID int64, username, firstName, defaultLanguage string) (bool, error) {
	filter := bson.M{"_id": userID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"username":          username,
			"first_name":        firstName,
			"language":          defaultLanguage,
			"registration_date": time.Now(),
		},
	}
	res, err := r.Col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

func (r *UserRepository) FindByID(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	if err := r.Col.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetLanguage returns the user's interface language, or fallback if the
// user is unknown.
func (r *UserRepository) GetLanguage(ctx context.Context, userID int64, fallback string) string {
	var doc struct {
		Language string `bson:"language"`
	}
	err := r.Col.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if err != nil || doc.Language == "" {
		return fallback
	}
	return doc.Language
}

func (r *UserRepository) SetLanguage(ctx context.Context, userID int64, language string) error {
	_, err := r.Col.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{"language": language}})
	return err
}

func (r *UserRepository) CountAll(ctx context.Context) (int64, error) {
	return r.Col.CountDocuments(ctx, bson.M{})
}
