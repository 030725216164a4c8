package models

import (
	"fmt"
	"strings"
	"time"
)

// Question is one multiple-choice question from the question bank. The
// bank is consumed read-only during tests; a session copies its drawn
// questions at creation time and never re-reads them.
type Question struct {
	ID              string    `bson:"_id,omitempty" json:"id"`
	Subject         string    `bson:"subject" json:"subject"`
	Language        string    `bson:"language" json:"language"`
	Text            string    `bson:"question_text" json:"question_text"`
	OptionA         string    `bson:"option_a" json:"option_a"`
	OptionB         string    `bson:"option_b" json:"option_b"`
	OptionC         string    `bson:"option_c" json:"option_c"`
	OptionD         string    `bson:"option_d" json:"option_d"`
	CorrectAnswer   string    `bson:"correct_answer" json:"correct_answer"`
	DifficultyLevel int       `bson:"difficulty_level" json:"difficulty_level"`
	CreatedAt       time.Time `bson:"created_date" json:"created_date"`
}

// Option returns the option text for letter ("A".."D", case-insensitive),
// or "" for anything else.
func (q *Question) Option(letter string) string {
	switch strings.ToUpper(letter) {
	case "A":
		return q.OptionA
	case "B":
		return q.OptionB
	case "C":
		return q.OptionC
	case "D":
		return q.OptionD
	}
	return ""
}

// IsCorrect reports whether answer matches the correct letter. The match
// is case-insensitive; an empty or garbage answer never matches.
func (q *Question) IsCorrect(answer string) bool {
	return answer != "" && strings.EqualFold(answer, q.CorrectAnswer)
}

// Validate checks the invariants questions must satisfy before entering
// the bank: a correct letter in A-D whose option text is non-empty, and
// non-empty question text.
func (q *Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("question text is empty")
	}
	letter := strings.ToUpper(q.CorrectAnswer)
	switch letter {
	case "A", "B", "C", "D":
	default:
		return fmt.Errorf("correct answer must be one of A, B, C, D; got %q", q.CorrectAnswer)
	}
	if strings.TrimSpace(q.Option(letter)) == "" {
		return fmt.Errorf("option %s is empty but marked correct", letter)
	}
	return nil
}

// PublicQuestion is the client-facing view of a question inside a running
// test. It carries the position so the client can echo it back with the
// answer, and never includes the correct letter.
type PublicQuestion struct {
	Index    int    `json:"index"`
	Total    int    `json:"total"`
	Text     string `json:"question_text"`
	OptionA  string `json:"option_a"`
	OptionB  string `json:"option_b"`
	OptionC  string `json:"option_c"`
	OptionD  string `json:"option_d"`
	Subject  string `json:"subject"`
	Language string `json:"language"`
}

// PublicView strips the correct answer for delivery to a client.
func (q *Question) PublicView(index, total int) PublicQuestion {
	return PublicQuestion{
		Index:    index,
		Total:    total,
		Text:     q.Text,
		OptionA:  q.OptionA,
		OptionB:  q.OptionB,
		OptionC:  q.OptionC,
		OptionD:  q.OptionD,
		Subject:  q.Subject,
		Language: q.Language,
	}
}
