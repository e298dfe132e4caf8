package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/gokatarajesh/student-toolkit/internal/question"
)

const questionColumns = `question_id, type, question, options, answer, difficulty, topic, created_at`

const insertQuestion = `
INSERT INTO questions (type, question, options, answer, difficulty, topic, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING question_id, created_at`

const getQuestion = `SELECT ` + questionColumns + ` FROM questions WHERE question_id = $1`

const randomQuestion = `SELECT ` + questionColumns + ` FROM questions ORDER BY random() LIMIT 1`

const countQuestions = `SELECT count(*) FROM questions`

// QuestionRepository stores exam questions in Postgres.
type QuestionRepository struct {
	db DBTX
}

func NewQuestionRepository(db DBTX) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// Insert stores q and returns it with the generated id.
func (r *QuestionRepository) Insert(ctx context.Context, q question.Question) (question.Question, error) {
	options, err := encodeOptions(q.Options)
	if err != nil {
		return question.Question{}, err
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}

	var (
		id        pgtype.UUID
		createdAt time.Time
	)
	err = r.db.QueryRow(ctx, insertQuestion,
		string(q.Type), q.Question, options, q.Answer, string(q.Difficulty), q.Topic, q.CreatedAt,
	).Scan(&id, &createdAt)
	if err != nil {
		return question.Question{}, fmt.Errorf("insert question: %w", err)
	}

	q.ID = uuidFrom(id)
	q.CreatedAt = createdAt.UTC()
	return q, nil
}

// Get loads a question by id.
func (r *QuestionRepository) Get(ctx context.Context, id uuid.UUID) (question.Question, error) {
	q, err := scanQuestion(r.db.QueryRow(ctx, getQuestion, pgUUID(id)))
	if err != nil {
		return question.Question{}, fmt.Errorf("get question %s: %w", id, err)
	}
	return q, nil
}

// Random picks one stored question uniformly.
func (r *QuestionRepository) Random(ctx context.Context) (question.Question, error) {
	q, err := scanQuestion(r.db.QueryRow(ctx, randomQuestion))
	if err != nil {
		return question.Question{}, fmt.Errorf("random question: %w", err)
	}
	return q, nil
}

// Count returns the number of stored questions.
func (r *QuestionRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, countQuestions).Scan(&n); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}

func scanQuestion(row pgx.Row) (question.Question, error) {
	var (
		id         pgtype.UUID
		qType      string
		text       string
		options    []byte
		answer     string
		difficulty string
		topic      string
		createdAt  time.Time
	)
	if err := row.Scan(&id, &qType, &text, &options, &answer, &difficulty, &topic, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return question.Question{}, question.ErrQuestionNotFound
		}
		return question.Question{}, err
	}

	q := question.Question{
		ID:         uuidFrom(id),
		Type:       question.Type(qType),
		Question:   text,
		Answer:     answer,
		Difficulty: question.Difficulty(difficulty),
		Topic:      topic,
		CreatedAt:  createdAt.UTC(),
	}
	if len(options) > 0 {
		if err := json.Unmarshal(options, &q.Options); err != nil {
			return question.Question{}, fmt.Errorf("decode options: %w", err)
		}
	}
	return q, nil
}

// encodeOptions returns nil for an empty list so the column stays NULL.
func encodeOptions(options []string) ([]byte, error) {
	if len(options) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(options)
	if err != nil {
		return nil, fmt.Errorf("encode options: %w", err)
	}
	return b, nil
}
