package models

import "time"

// AnswerRecord is one line of a finished test's transcript. Option texts
// are stored per record on purpose: the transcript stays displayable even
// if the question bank changes or becomes unavailable.
type AnswerRecord struct {
	QuestionText  string `bson:"question_text" json:"question_text"`
	UserAnswer    string `bson:"user_answer" json:"user_answer"`
	CorrectAnswer string `bson:"correct_answer" json:"correct_answer"`
	IsCorrect     bool   `bson:"is_correct" json:"is_correct"`
	OptionA       string `bson:"option_a" json:"option_a"`
	OptionB       string `bson:"option_b" json:"option_b"`
	OptionC       string `bson:"option_c" json:"option_c"`
	OptionD       string `bson:"option_d" json:"option_d"`
}

// TestResult is the durable record of one completed test. Written exactly
// once at completion, never updated or deleted by this service.
type TestResult struct {
	ID              string         `bson:"_id,omitempty" json:"id"`
	UserID          int64          `bson:"user_id" json:"user_id"`
	Subject         string         `bson:"subject" json:"subject"`
	CorrectAnswers  int            `bson:"correct_answers" json:"correct_answers"`
	TotalQuestions  int            `bson:"total_questions" json:"total_questions"`
	Percentage      float64        `bson:"percentage" json:"percentage"`
	DurationSeconds int            `bson:"duration" json:"duration"`
	TestDate        time.Time      `bson:"test_date" json:"test_date"`
	Answers         []AnswerRecord `bson:"answers" json:"answers"`
}
