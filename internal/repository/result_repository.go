package repository

import (
	"context"

	"dtm-test-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ResultRepository struct {
	Col *mongo.Collection
}

func NewResultRepository(db *mongo.Database) *ResultRepository {
	return &ResultRepository{Col: db.Collection("results")}
}

// Append writes one completed test with its embedded transcript and
// returns the stored id. Results are never updated or deleted.
func (r *ResultRepository) Append(ctx context.Context, result *models.TestResult) (string, error) {
	res, err := r.Col.InsertOne(ctx, result)
	if err != nil {
		return "", err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		result.ID = oid.Hex()
	}
	return result.ID, nil
}

// FindRecentByUser lists the user's most recent results, newest first.
func (r *ResultRepository) FindRecentByUser(ctx context.Context, userID int64, limit int) ([]models.TestResult, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "test_date", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.Col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var results []models.TestResult
	for cur.Next(ctx) {
		var res models.TestResult
		if err := cur.Decode(&res); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, cur.Err()
}

// CountAll counts every persisted test.
func (r *ResultRepository) CountAll(ctx context.Context) (int64, error) {
	return r.Col.CountDocuments(ctx, bson.M{})
}

// AverageScore returns the mean percentage over all results, 0 when none
// exist.
func (r *ResultRepository) AverageScore(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": nil, "avg": bson.M{"$avg": "$percentage"}}}},
	}
	cur, err := r.Col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)
	if cur.Next(ctx) {
		var doc struct {
			Avg float64 `bson:"avg"`
		}
		if err := cur.Decode(&doc); err != nil {
			return 0, err
		}
		return doc.Avg, nil
	}
	return 0, cur.Err()
}

// CountBySubject groups persisted tests by subject.
func (r *ResultRepository) CountBySubject(ctx context.Context) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$subject", "count": bson.M{"$sum": 1}}}},
	}
	cur, err := r.Col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	counts := make(map[string]int64)
	for cur.Next(ctx) {
		var doc struct {
			Subject string `bson:"_id"`
			Count   int64  `bson:"count"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		counts[doc.Subject] = doc.Count
	}
	return counts, cur.Err()
}
