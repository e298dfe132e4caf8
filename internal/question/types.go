package question

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type is the kind of exam question.
type Type string

// Question type constants.
const (
	TypeMultipleChoice Type = "multiple_choice"
	TypeTrueFalse      Type = "true_false"
	TypeShortAnswer    Type = "short_answer"
)

// Difficulty constants for readability.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// DefaultTopic is used when a generate request leaves the topic blank.
const DefaultTopic = "general knowledge"

const (
	multipleChoiceOptions = 4
	trueFalseOptions      = 2
)

// Valid reports whether t is a supported question type.
func (t Type) Valid() bool {
	switch t {
	case TypeMultipleChoice, TypeTrueFalse, TypeShortAnswer:
		return true
	}
	return false
}

// Valid reports whether d is a supported difficulty.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Question is the stored record. Answer is server-side only.
type Question struct {
	ID         string     `json:"id"`
	Type       Type       `json:"type"`
	Question   string     `json:"question"`
	Options    []string   `json:"options,omitempty"`
	Answer     string     `json:"answer"`
	Difficulty Difficulty `json:"difficulty"`
	Topic      string     `json:"topic"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// ClientQuestion is a Question with the answer removed, safe to send before grading.
type ClientQuestion struct {
	ID         string     `json:"id"`
	Type       Type       `json:"type"`
	Difficulty Difficulty `json:"difficulty"`
	Topic      string     `json:"topic"`
	Question   string     `json:"question"`
	Options    []string   `json:"options,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// ClientView strips the answer from q.
func (q Question) ClientView() ClientQuestion {
	return ClientQuestion{
		ID:         q.ID,
		Type:       q.Type,
		Difficulty: q.Difficulty,
		Topic:      q.Topic,
		Question:   q.Question,
		Options:    q.Options,
		CreatedAt:  q.CreatedAt,
	}
}

// Verdict is the outcome of evaluating a submitted answer.
type Verdict struct {
	IsCorrect     bool   `json:"isCorrect"`
	Feedback      string `json:"feedback"`
	CorrectAnswer string `json:"correctAnswer"`
}

// StatsRecord is the per-user running tally kept by the stats ledger.
type StatsRecord struct {
	Email         string `json:"email"`
	TotalAnswered int64  `json:"totalAnswered"`
	Correct       int64  `json:"correct"`
	Incorrect     int64  `json:"incorrect"`
}

// GenerateRequest is the body of a generate call.
type GenerateRequest struct {
	Type       string `json:"type"`
	Difficulty string `json:"difficulty"`
	Topic      string `json:"topic,omitempty"`
}

// EvaluateRequest is the body of a check-answer call.
type EvaluateRequest struct {
	ID         string `json:"id"`
	UserAnswer string `json:"userAnswer"`
}

// TextGenerator is the AI text-completion capability. The response is free
// text expected to contain a JSON object.
type TextGenerator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// QuestionStore persists and reads question records. Get and Random return
// an error matching ErrQuestionNotFound when nothing matches.
type QuestionStore interface {
	Insert(ctx context.Context, q Question) (Question, error)
	Get(ctx context.Context, id uuid.UUID) (Question, error)
	Random(ctx context.Context) (Question, error)
}

// StatsLedger applies one answered-question increment atomically in the store.
type StatsLedger interface {
	Increment(ctx context.Context, email string, correct bool) (StatsRecord, error)
}
