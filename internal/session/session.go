package session

import (
	"errors"
	"math"
	"strings"
	"time"

	"dtm-test-service/internal/models"

	"github.com/google/uuid"
)

// State tracks where a session is in its lifecycle. A session is created
// InProgress, moves to Completed when Finish runs, and to Consumed after
// its one analysis read. Abandoned sessions are simply dropped from the
// registry; the state exists so a stale pointer held across an Abandon
// cannot be finished.
type State int

const (
	StateInProgress State = iota
	StateCompleted
	StateConsumed
	StateAbandoned
)

var (
	// ErrNoQuestions is returned by New when the draw came back empty.
	ErrNoQuestions = errors.New("no questions available")
	// ErrIndexMismatch is returned by Submit when the caller-supplied
	// question index is not the session's current position.
	ErrIndexMismatch = errors.New("answer index does not match current question")
	// ErrFinished is returned by Submit and Finish once a session has
	// left the InProgress state.
	ErrFinished = errors.New("test already finished")
	// ErrNoAnalysis is returned by ConsumeTranscript unless the session
	// is Completed with an unread transcript.
	ErrNoAnalysis = errors.New("no analysis available")
)

// Session is one user's run through one fixed-length test. The question
// sequence is fixed at creation; Position always equals the number of
// answered questions while in progress. Sessions are not safe for
// concurrent use on their own; the Registry serializes access per user.
type Session struct {
	UserID    int64
	Subject   string
	Language  string
	Token     string
	Questions []models.Question
	Position  int
	Answers   map[int]string
	StartedAt time.Time
	State     State
	ResultID  string

	transcript []models.AnswerRecord
}

// Summary is what Finish computes: the numbers shown to the user the
// moment the test ends.
type Summary struct {
	Subject         string  `json:"subject"`
	CorrectAnswers  int     `json:"correct_answers"`
	WrongAnswers    int     `json:"wrong_answers"`
	TotalQuestions  int     `json:"total_questions"`
	Percentage      float64 `json:"percentage"`
	DurationSeconds int     `json:"duration"`
}

// New creates an InProgress session over the drawn questions. An empty
// draw is rejected with ErrNoQuestions; the caller must not register
// anything in that case. An undersized draw is usable as long as it is
// non-empty.
func New(userID int64, subject, language string, questions []models.Question) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	return &Session{
		UserID:    userID,
		Subject:   subject,
		Language:  language,
		Token:     uuid.NewString(),
		Questions: questions,
		Answers:   make(map[int]string, len(questions)),
		StartedAt: time.Now(),
		State:     StateInProgress,
	}, nil
}

// Current returns the question at the current position. ok is false once
// every question has been answered, which tells the caller to Finish.
// Calling Current never advances the position.
func (s *Session) Current() (*models.Question, bool) {
	if s.Position >= len(s.Questions) {
		return nil, false
	}
	return &s.Questions[s.Position], true
}

// Submit records an answer for the question at index and advances the
// position. The index must match the session's current position: a
// replayed or out-of-order index (a double-tapped button, a stale client)
// is rejected with ErrIndexMismatch and the session is left untouched.
// The answer letter itself is not validated; anything outside A-D is
// stored as-is and scores as wrong.
func (s *Session) Submit(answer string, index int) error {
	if s.State != StateInProgress {
		return ErrFinished
	}
	if index != s.Position {
		return ErrIndexMismatch
	}
	s.Answers[index] = answer
	s.Position = index + 1
	return nil
}

// Finish scores the session in one pass over the fixed question sequence
// and builds the transcript. Unanswered indices score as incorrect.
// Normally called once Current reports no more questions; calling it
// earlier force-finishes and scores the rest as unanswered. The session
// moves to Completed and holds the transcript for one ConsumeTranscript
// read; the same records are returned so the caller can persist them.
func (s *Session) Finish(now time.Time) (Summary, []models.AnswerRecord, error) {
	if s.State != StateInProgress {
		return Summary{}, nil, ErrFinished
	}

	total := len(s.Questions)
	correct := 0
	transcript := make([]models.AnswerRecord, 0, total)
	for i := range s.Questions {
		q := &s.Questions[i]
		userAnswer := s.Answers[i]
		isCorrect := q.IsCorrect(userAnswer)
		if isCorrect {
			correct++
		}
		transcript = append(transcript, models.AnswerRecord{
			QuestionText:  q.Text,
			UserAnswer:    strings.ToUpper(userAnswer),
			CorrectAnswer: strings.ToUpper(q.CorrectAnswer),
			IsCorrect:     isCorrect,
			OptionA:       q.OptionA,
			OptionB:       q.OptionB,
			OptionC:       q.OptionC,
			OptionD:       q.OptionD,
		})
	}

	s.transcript = transcript
	s.State = StateCompleted

	return Summary{
		Subject:         s.Subject,
		CorrectAnswers:  correct,
		WrongAnswers:    total - correct,
		TotalQuestions:  total,
		Percentage:      math.Round(float64(correct)/float64(total)*1000) / 10,
		DurationSeconds: int(now.Sub(s.StartedAt).Seconds()),
	}, transcript, nil
}

// ConsumeTranscript hands out the transcript exactly once. After the
// first read the session is Consumed and must be dropped from the
// registry by the caller; a second read fails with ErrNoAnalysis.
func (s *Session) ConsumeTranscript() ([]models.AnswerRecord, error) {
	if s.State != StateCompleted {
		return nil, ErrNoAnalysis
	}
	s.State = StateConsumed
	t := s.transcript
	s.transcript = nil
	return t, nil
}

// Abandon marks the session dead so stale pointers cannot act on it.
// Registry removal is the caller's responsibility.
func (s *Session) Abandon() {
	s.State = StateAbandoned
}
