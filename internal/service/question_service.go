package service

import (
	"context"
	"strings"
	"time"

	"dtm-test-service/internal/models"
	"dtm-test-service/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
)

// QuestionService manages the question bank for the admin surface. The
// test flow itself only draws; it never goes through this service.
type QuestionService struct {
	Repo *repository.QuestionRepository
}

func NewQuestionService(repo *repository.QuestionRepository) *QuestionService {
	return &QuestionService{Repo: repo}
}

// CreateQuestion validates and stores a new bank question. The correct
// letter is normalized to upper case before storage.
func (s *QuestionService) CreateQuestion(ctx context.Context, question *models.Question) error {
	question.CorrectAnswer = strings.ToUpper(question.CorrectAnswer)
	if err := question.Validate(); err != nil {
		return err
	}
	if question.DifficultyLevel == 0 {
		question.DifficultyLevel = 1
	}
	question.CreatedAt = time.Now()
	return s.Repo.Create(ctx, question)
}

func (s *QuestionService) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	return s.Repo.FindByID(ctx, id)
}

func (s *QuestionService) ListQuestions(ctx context.Context, subject, language string) ([]models.Question, error) {
	return s.Repo.FindBySubject(ctx, subject, language)
}

func (s *QuestionService) UpdateQuestion(ctx context.Context, id string, update bson.M) error {
	return s.Repo.Update(ctx, id, update)
}

func (s *QuestionService) DeleteQuestion(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}
