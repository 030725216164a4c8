package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"dtm-test-service/internal/models"
	"dtm-test-service/internal/session"
)

type fakeDrawer struct {
	questions []models.Question
	err       error
}

func (f *fakeDrawer) DrawRandom(ctx context.Context, subject, language string, count int) ([]models.Question, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.questions) > count {
		return f.questions[:count], nil
	}
	return f.questions, nil
}

type fakeResultStore struct {
	appended   []*models.TestResult
	failAppend bool
}

func (f *fakeResultStore) Append(ctx context.Context, result *models.TestResult) (string, error) {
	if f.failAppend {
		return "", errors.New("result store down")
	}
	result.ID = fmt.Sprintf("r%d", len(f.appended)+1)
	f.appended = append(f.appended, result)
	return result.ID, nil
}

func (f *fakeResultStore) FindRecentByUser(ctx context.Context, userID int64, limit int) ([]models.TestResult, error) {
	var out []models.TestResult
	for i := len(f.appended) - 1; i >= 0 && len(out) < limit; i-- {
		if f.appended[i].UserID == userID {
			out = append(out, *f.appended[i])
		}
	}
	return out, nil
}

func bankQuestions(n int, correct string) []models.Question {
	questions := make([]models.Question, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, models.Question{
			ID:            fmt.Sprintf("q%d", i),
			Subject:       "mathematics",
			Language:      "uz",
			Text:          fmt.Sprintf("Question %d", i),
			OptionA:       "one",
			OptionB:       "two",
			OptionC:       "three",
			OptionD:       "four",
			CorrectAnswer: correct,
		})
	}
	return questions
}

func newTestService(drawer *fakeDrawer, store *fakeResultStore) *TestService {
	return NewTestService(session.NewRegistry(), drawer, store, nil, 10, 5)
}

func TestFullTestFlow(t *testing.T) {
	store := &fakeResultStore{}
	svc := newTestService(&fakeDrawer{questions: bankQuestions(10, "B")}, store)
	ctx := context.Background()

	first, err := svc.StartTest(ctx, 1, "mathematics", "uz")
	if err != nil {
		t.Fatalf("StartTest error: %v", err)
	}
	if first.Index != 0 || first.Total != 10 {
		t.Errorf("Expected question 0/10, got %d/%d", first.Index, first.Total)
	}

	// Answer 0-8 correctly, index 9 wrong: 9/1, 90.0%.
	for i := 0; i < 9; i++ {
		outcome, err := svc.SubmitAnswer(ctx, 1, "B", i)
		if err != nil {
			t.Fatalf("SubmitAnswer(%d) error: %v", i, err)
		}
		if outcome.Finished {
			t.Fatalf("Unexpected finish at index %d", i)
		}
		if outcome.Next.Index != i+1 {
			t.Errorf("Expected next index %d, got %d", i+1, outcome.Next.Index)
		}
	}
	outcome, err := svc.SubmitAnswer(ctx, 1, "A", 9)
	if err != nil {
		t.Fatalf("SubmitAnswer(9) error: %v", err)
	}
	if !outcome.Finished {
		t.Fatal("Expected test to finish on last answer")
	}
	if outcome.Summary.CorrectAnswers != 9 || outcome.Summary.WrongAnswers != 1 {
		t.Errorf("Expected 9/1, got %d/%d", outcome.Summary.CorrectAnswers, outcome.Summary.WrongAnswers)
	}
	if outcome.Summary.Percentage != 90.0 {
		t.Errorf("Expected 90.0%%, got %.1f%%", outcome.Summary.Percentage)
	}
	if outcome.ResultID == "" {
		t.Error("Expected a persisted result id")
	}

	if len(store.appended) != 1 {
		t.Fatalf("Expected 1 persisted result, got %d", len(store.appended))
	}
	saved := store.appended[0]
	if saved.Percentage != 90.0 || len(saved.Answers) != 10 {
		t.Errorf("Persisted result wrong: %.1f%% with %d answers", saved.Percentage, len(saved.Answers))
	}

	// One analysis read, then the session is gone.
	transcript, err := svc.Analysis(1)
	if err != nil {
		t.Fatalf("Analysis error: %v", err)
	}
	if len(transcript) != 10 {
		t.Errorf("Expected 10 transcript records, got %d", len(transcript))
	}
	if _, err := svc.Analysis(1); err != session.ErrNoAnalysis {
		t.Errorf("Expected ErrNoAnalysis on second read, got %v", err)
	}
}

func TestLowercaseAnswerScoresCorrect(t *testing.T) {
	svc := newTestService(&fakeDrawer{questions: bankQuestions(4, "B")}, &fakeResultStore{})
	ctx := context.Background()

	if _, err := svc.StartTest(ctx, 1, "mathematics", "uz"); err != nil {
		t.Fatalf("StartTest error: %v", err)
	}
	answers := []string{"A", "A", "A", "b"} // index 3 lowercase b, correct B
	var outcome *AnswerOutcome
	var err error
	for i, a := range answers {
		outcome, err = svc.SubmitAnswer(ctx, 1, a, i)
		if err != nil {
			t.Fatalf("SubmitAnswer(%d) error: %v", i, err)
		}
	}
	if outcome.Summary.CorrectAnswers != 1 {
		t.Errorf("Expected lowercase b to score correct, got %d correct", outcome.Summary.CorrectAnswers)
	}
}

func TestStartTestEmptyDraw(t *testing.T) {
	svc := newTestService(&fakeDrawer{}, &fakeResultStore{})

	_, err := svc.StartTest(context.Background(), 1, "law", "en")
	if err != session.ErrNoQuestions {
		t.Fatalf("Expected ErrNoQuestions, got %v", err)
	}

	// Nothing may have been registered.
	if _, err := svc.SubmitAnswer(context.Background(), 1, "A", 0); err != ErrNoActiveTest {
		t.Errorf("Expected ErrNoActiveTest after failed start, got %v", err)
	}
	if svc.Registry.ActiveTests() != 0 {
		t.Errorf("Expected empty registry, got %d sessions", svc.Registry.ActiveTests())
	}
}

func TestStartTestUndersizedDraw(t *testing.T) {
	svc := newTestService(&fakeDrawer{questions: bankQuestions(3, "B")}, &fakeResultStore{})

	first, err := svc.StartTest(context.Background(), 1, "mathematics", "uz")
	if err != nil {
		t.Fatalf("Undersized draw must still start a test: %v", err)
	}
	if first.Total != 3 {
		t.Errorf("Expected 3 questions, got %d", first.Total)
	}
}

func TestCancelMakesAnswerNoOp(t *testing.T) {
	svc := newTestService(&fakeDrawer{questions: bankQuestions(5, "B")}, &fakeResultStore{})
	ctx := context.Background()

	svc.StartTest(ctx, 1, "mathematics", "uz")
	if !svc.CancelTest(1) {
		t.Fatal("Expected cancel to find a session")
	}
	if svc.CancelTest(1) {
		t.Error("Second cancel should find nothing")
	}
	if _, err := svc.SubmitAnswer(ctx, 1, "A", 0); err != ErrNoActiveTest {
		t.Errorf("Expected ErrNoActiveTest after cancel, got %v", err)
	}
}

func TestRestartDiscardsOldSession(t *testing.T) {
	store := &fakeResultStore{}
	svc := newTestService(&fakeDrawer{questions: bankQuestions(5, "B")}, store)
	ctx := context.Background()

	svc.StartTest(ctx, 1, "mathematics", "uz")
	svc.SubmitAnswer(ctx, 1, "B", 0)
	svc.SubmitAnswer(ctx, 1, "B", 1)

	// Starting again replaces the half-done test without error.
	first, err := svc.StartTest(ctx, 1, "history", "uz")
	if err != nil {
		t.Fatalf("Restart error: %v", err)
	}
	if first.Index != 0 {
		t.Errorf("Expected a fresh session at index 0, got %d", first.Index)
	}
	// The discarded test was never persisted.
	if len(store.appended) != 0 {
		t.Errorf("Discarded session must not persist, got %d results", len(store.appended))
	}
}

func TestStaleIndexRejected(t *testing.T) {
	svc := newTestService(&fakeDrawer{questions: bankQuestions(5, "B")}, &fakeResultStore{})
	ctx := context.Background()

	svc.StartTest(ctx, 1, "mathematics", "uz")
	svc.SubmitAnswer(ctx, 1, "B", 0)

	if _, err := svc.SubmitAnswer(ctx, 1, "C", 0); err != session.ErrIndexMismatch {
		t.Errorf("Expected ErrIndexMismatch for replayed index, got %v", err)
	}
}

func TestPersistenceFailureStillServesResult(t *testing.T) {
	store := &fakeResultStore{failAppend: true}
	svc := newTestService(&fakeDrawer{questions: bankQuestions(2, "B")}, store)
	ctx := context.Background()

	svc.StartTest(ctx, 1, "mathematics", "uz")
	svc.SubmitAnswer(ctx, 1, "B", 0)
	outcome, err := svc.SubmitAnswer(ctx, 1, "B", 1)
	if err != nil {
		t.Fatalf("Finish must not fail on persistence error: %v", err)
	}
	if outcome.Summary == nil || outcome.Summary.CorrectAnswers != 2 {
		t.Fatal("Expected summary despite persistence failure")
	}
	if outcome.ResultID != "" {
		t.Errorf("Expected no result id, got %q", outcome.ResultID)
	}

	// Analysis still comes from the in-memory transcript.
	transcript, err := svc.Analysis(1)
	if err != nil {
		t.Fatalf("Analysis error: %v", err)
	}
	if len(transcript) != 2 {
		t.Errorf("Expected 2 records, got %d", len(transcript))
	}
}

func TestCurrentQuestionIdempotent(t *testing.T) {
	svc := newTestService(&fakeDrawer{questions: bankQuestions(3, "B")}, &fakeResultStore{})
	ctx := context.Background()

	svc.StartTest(ctx, 1, "mathematics", "uz")
	svc.SubmitAnswer(ctx, 1, "B", 0)

	for i := 0; i < 3; i++ {
		q, err := svc.CurrentQuestion(1)
		if err != nil {
			t.Fatalf("CurrentQuestion error: %v", err)
		}
		if q.Index != 1 {
			t.Errorf("Expected index 1, got %d", q.Index)
		}
	}
}

func TestRecentResultsNewestFirstWithLimit(t *testing.T) {
	store := &fakeResultStore{}
	svc := newTestService(&fakeDrawer{questions: bankQuestions(1, "B")}, store)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		svc.StartTest(ctx, 1, "mathematics", "uz")
		svc.SubmitAnswer(ctx, 1, "B", 0)
		svc.Analysis(1)
	}

	results, err := svc.RecentResults(ctx, 1)
	if err != nil {
		t.Fatalf("RecentResults error: %v", err)
	}
	if len(results) != 5 {
		t.Fatalf("Expected history limit of 5, got %d", len(results))
	}
	if results[0].ID != "r7" {
		t.Errorf("Expected newest result first, got %s", results[0].ID)
	}
}
