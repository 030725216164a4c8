package service

import (
	"context"
	"errors"
	"log"
	"time"

	"dtm-test-service/internal/event"
	"dtm-test-service/internal/models"
	"dtm-test-service/internal/session"
)

// ErrNoActiveTest is returned when an action references a user with no
// live session: expired, cancelled, already consumed, or never started.
var ErrNoActiveTest = errors.New("no active test for user")

// QuestionDrawer is the slice of the question store the test flow
// consumes: a random draw for one subject and language.
type QuestionDrawer interface {
	DrawRandom(ctx context.Context, subject, language string, count int) ([]models.Question, error)
}

// ResultStore is the durable, append-only store of completed tests.
type ResultStore interface {
	Append(ctx context.Context, result *models.TestResult) (string, error)
	FindRecentByUser(ctx context.Context, userID int64, limit int) ([]models.TestResult, error)
}

// EventPublisher emits lifecycle events. Satisfied by *event.Publisher.
type EventPublisher interface {
	Publish(routingKey string, payload any)
}

// TestService drives the test flow: drawing questions, running the
// per-user session state machine, scoring, and persisting results.
type TestService struct {
	Registry  *session.Registry
	Questions QuestionDrawer
	Results   ResultStore
	Publisher EventPublisher

	QuestionsPerTest    int
	ResultsHistoryLimit int
}

func NewTestService(reg *session.Registry, questions QuestionDrawer, results ResultStore, publisher EventPublisher, questionsPerTest, historyLimit int) *TestService {
	return &TestService{
		Registry:            reg,
		Questions:           questions,
		Results:             results,
		Publisher:           publisher,
		QuestionsPerTest:    questionsPerTest,
		ResultsHistoryLimit: historyLimit,
	}
}

// publish emits one lifecycle event, tolerating a missing publisher.
func (s *TestService) publish(routingKey string, payload map[string]any) {
	if s.Publisher != nil {
		s.Publisher.Publish(routingKey, payload)
	}
}

// AnswerOutcome is what a submitted answer produces: either the next
// question, or the final summary once the last answer lands.
type AnswerOutcome struct {
	Finished bool                   `json:"finished"`
	Next     *models.PublicQuestion `json:"next,omitempty"`
	Summary  *session.Summary       `json:"summary,omitempty"`
	ResultID string                 `json:"result_id,omitempty"`
}

// StartTest draws questions and opens a session for the user, silently
// replacing any test already in progress. An empty draw returns
// session.ErrNoQuestions and registers nothing.
func (s *TestService) StartTest(ctx context.Context, userID int64, subject, language string) (*models.PublicQuestion, error) {
	questions, err := s.Questions.DrawRandom(ctx, subject, language, s.QuestionsPerTest)
	if err != nil {
		return nil, err
	}
	sess, err := session.New(userID, subject, language, questions)
	if err != nil {
		return nil, err
	}

	slot := s.Registry.Acquire(userID)
	slot.Set(sess)
	q, _ := sess.Current()
	first := q.PublicView(0, len(questions))
	slot.Release()

	s.publish(event.TestStarted, map[string]any{
		"user_id":       userID,
		"subject":       subject,
		"language":      language,
		"session_token": sess.Token,
		"questions":     len(questions),
	})
	return &first, nil
}

// SubmitAnswer records one answer for the user's live session. When the
// last question is answered the session is finished in the same call:
// scored, persisted best-effort, and kept around for one analysis read.
func (s *TestService) SubmitAnswer(ctx context.Context, userID int64, answer string, index int) (*AnswerOutcome, error) {
	slot := s.Registry.Acquire(userID)

	sess := slot.Session()
	if sess == nil {
		slot.Release()
		return nil, ErrNoActiveTest
	}
	if err := sess.Submit(answer, index); err != nil {
		slot.Release()
		return nil, err
	}

	if q, ok := sess.Current(); ok {
		next := q.PublicView(sess.Position, len(sess.Questions))
		slot.Release()
		return &AnswerOutcome{Next: &next}, nil
	}

	// Last answer landed: finish under the same lock. The result-store
	// append is the one network call allowed inside the slot lock, and
	// it only ever stalls this user's slot.
	now := time.Now()
	summary, transcript, err := sess.Finish(now)
	if err != nil {
		slot.Release()
		return nil, err
	}

	result := &models.TestResult{
		UserID:          userID,
		Subject:         sess.Subject,
		CorrectAnswers:  summary.CorrectAnswers,
		TotalQuestions:  summary.TotalQuestions,
		Percentage:      summary.Percentage,
		DurationSeconds: summary.DurationSeconds,
		TestDate:        now,
		Answers:         transcript,
	}
	resultID, err := s.Results.Append(ctx, result)
	if err != nil {
		// Persistence failure is local: the user still gets the summary
		// and one analysis read from memory.
		log.Printf("Failed to persist test result for user %d: %v", userID, err)
	} else {
		sess.ResultID = resultID
	}
	slot.Release()

	s.publish(event.TestCompleted, map[string]any{
		"user_id":    userID,
		"subject":    sess.Subject,
		"correct":    summary.CorrectAnswers,
		"total":      summary.TotalQuestions,
		"percentage": summary.Percentage,
		"duration":   summary.DurationSeconds,
		"result_id":  resultID,
	})
	return &AnswerOutcome{Finished: true, Summary: &summary, ResultID: resultID}, nil
}

// CurrentQuestion re-reads the question the user is on without advancing
// anything, for clients re-rendering after a reconnect.
func (s *TestService) CurrentQuestion(userID int64) (*models.PublicQuestion, error) {
	slot := s.Registry.Acquire(userID)
	defer slot.Release()

	sess := slot.Session()
	if sess == nil {
		return nil, ErrNoActiveTest
	}
	q, ok := sess.Current()
	if !ok {
		return nil, session.ErrFinished
	}
	view := q.PublicView(sess.Position, len(sess.Questions))
	return &view, nil
}

// CancelTest abandons the user's session without persisting anything.
// Reports whether there was a session to cancel.
func (s *TestService) CancelTest(userID int64) bool {
	slot := s.Registry.Acquire(userID)
	sess := slot.Session()
	if sess == nil {
		slot.Release()
		return false
	}
	sess.Abandon()
	slot.Clear()
	slot.Release()

	s.publish(event.TestCancelled, map[string]any{
		"user_id": userID,
		"subject": sess.Subject,
	})
	return true
}

// Analysis hands out the finished test's transcript exactly once and
// drops the session. A second call, or a call with no completed test,
// returns session.ErrNoAnalysis.
func (s *TestService) Analysis(userID int64) ([]models.AnswerRecord, error) {
	slot := s.Registry.Acquire(userID)

	sess := slot.Session()
	if sess == nil {
		slot.Release()
		return nil, session.ErrNoAnalysis
	}
	transcript, err := sess.ConsumeTranscript()
	if err != nil {
		slot.Release()
		return nil, err
	}
	slot.Clear()
	slot.Release()

	s.publish(event.AnalysisViewed, map[string]any{
		"user_id":   userID,
		"subject":   sess.Subject,
		"result_id": sess.ResultID,
	})
	return transcript, nil
}

// RecentResults lists the user's most recent persisted results, newest
// first, capped at the configured history limit.
func (s *TestService) RecentResults(ctx context.Context, userID int64) ([]models.TestResult, error) {
	return s.Results.FindRecentByUser(ctx, userID, s.ResultsHistoryLimit)
}
