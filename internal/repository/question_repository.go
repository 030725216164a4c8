package repository

import (
	"context"

	"dtm-test-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type QuestionRepository struct {
	Col *mongo.Collection
}

func NewQuestionRepository(db *mongo.Database) *QuestionRepository {
	return &QuestionRepository{Col: db.Collection("questions")}
}

// DrawRandom returns up to count random questions for the subject and
// language. $sample never repeats a document within one draw; fewer than
// count come back only when the bank holds fewer matching questions.
func (r *QuestionRepository) DrawRandom(ctx context.Context, subject, language string, count int) ([]models.Question, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"subject": subject, "language": language}}},
		{{Key: "$sample", Value: bson.M{"size": count}}},
	}
	cur, err := r.Col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var questions []models.Question
	for cur.Next(ctx) {
		var q models.Question
		if err := cur.Decode(&q); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, cur.Err()
}

// Count counts bank questions; empty subject or language means "any".
func (r *QuestionRepository) Count(ctx context.Context, subject, language string) (int64, error) {
	filter := bson.M{}
	if subject != "" {
		filter["subject"] = subject
	}
	if language != "" {
		filter["language"] = language
	}
	return r.Col.CountDocuments(ctx, filter)
}

func (r *QuestionRepository) FindByID(ctx context.Context, id string) (*models.Question, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var question models.Question
	if err := r.Col.FindOne(ctx, bson.M{"_id": objID}).Decode(&question); err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *QuestionRepository) FindBySubject(ctx context.Context, subject, language string) ([]models.Question, error) {
	filter := bson.M{}
	if subject != "" {
		filter["subject"] = subject
	}
	if language != "" {
		filter["language"] = language
	}
	cur, err := r.Col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var questions []models.Question
	for cur.Next(ctx) {
		var q models.Question
		if err := cur.Decode(&q); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, cur.Err()
}

func (r *QuestionRepository) Create(ctx context.Context, question *models.Question) error {
	res, err := r.Col.InsertOne(ctx, question)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		question.ID = oid.Hex()
	}
	return nil
}

func (r *QuestionRepository) Update(ctx context.Context, id string, update bson.M) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Col.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": update})
	return err
}

func (r *QuestionRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Col.DeleteOne(ctx, bson.M{"_id": objID})
	return err
}
