package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gokatarajesh/student-toolkit/internal/question"
)

// incrementStats is a single statement so concurrent answers for the same
// email never lose an update.
const incrementStats = `
INSERT INTO question_stats (email, total_answered, correct, incorrect, updated_at)
VALUES ($1, 1, $2, $3, now())
ON CONFLICT (email) DO UPDATE SET
    total_answered = question_stats.total_answered + 1,
    correct        = question_stats.correct + EXCLUDED.correct,
    incorrect      = question_stats.incorrect + EXCLUDED.incorrect,
    updated_at     = now()
RETURNING email, total_answered, correct, incorrect`

const getStats = `
SELECT email, total_answered, correct, incorrect
FROM question_stats
WHERE email = $1`

// StatsRepository is the per-email answer ledger.
type StatsRepository struct {
	db DBTX
}

func NewStatsRepository(db DBTX) *StatsRepository {
	return &StatsRepository{db: db}
}

// Increment records one answered question for email.
func (r *StatsRepository) Increment(ctx context.Context, email string, correct bool) (question.StatsRecord, error) {
	var c, ic int64 = 0, 1
	if correct {
		c, ic = 1, 0
	}

	var rec question.StatsRecord
	err := r.db.QueryRow(ctx, incrementStats, email, c, ic).
		Scan(&rec.Email, &rec.TotalAnswered, &rec.Correct, &rec.Incorrect)
	if err != nil {
		return question.StatsRecord{}, fmt.Errorf("increment stats: %w", err)
	}
	return rec, nil
}

// Get returns the tally for email, or zero counters when none exists.
func (r *StatsRepository) Get(ctx context.Context, email string) (question.StatsRecord, error) {
	var rec question.StatsRecord
	err := r.db.QueryRow(ctx, getStats, email).
		Scan(&rec.Email, &rec.TotalAnswered, &rec.Correct, &rec.Incorrect)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return question.StatsRecord{Email: email}, nil
		}
		return question.StatsRecord{}, fmt.Errorf("get stats: %w", err)
	}
	return rec, nil
}
