package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gokatarajesh/student-toolkit/internal/config"
	"github.com/gokatarajesh/student-toolkit/internal/db/repository"
	"github.com/gokatarajesh/student-toolkit/internal/question"
)

type sampleQuestion struct {
	Type       question.Type       `json:"-"`
	Difficulty question.Difficulty `json:"-"`
	Topic      string              `json:"-"`
	Question   string              `json:"question"`
	Options    []string            `json:"options,omitempty"`
	Answer     string              `json:"answer"`
}

// sampleQuestions are stored with the answer text as written; buildSeed
// converts them to the canonical answer form.
var sampleQuestions = []sampleQuestion{
	{
		Type:       question.TypeMultipleChoice,
		Difficulty: question.DifficultyEasy,
		Topic:      "javascript",
		Question:   "Which method is used to add an element at the end of an array in JavaScript?",
		Options:    []string{"push()", "pop()", "shift()", "unshift()"},
		Answer:     "push()",
	},
	{
		Type:       question.TypeMultipleChoice,
		Difficulty: question.DifficultyEasy,
		Topic:      "css",
		Question:   "What does CSS stand for?",
		Options:    []string{"Cascading Style Sheets", "Computer Style Sheets", "Creative Style System", "Coded Style Syntax"},
		Answer:     "Cascading Style Sheets",
	},
	{
		Type:       question.TypeShortAnswer,
		Difficulty: question.DifficultyEasy,
		Topic:      "html",
		Question:   "Write the HTML tag for creating a link.",
		Answer:     `<a href="...">...</a>`,
	},
	{
		Type:       question.TypeTrueFalse,
		Difficulty: question.DifficultyEasy,
		Topic:      "http",
		Question:   "The HTTP status code 404 means Not Found.",
		Options:    []string{"true", "false"},
		Answer:     "true",
	},
}

// buildSeed runs every sample through the same validation generated
// questions get.
func buildSeed(now time.Time) ([]question.Question, error) {
	out := make([]question.Question, 0, len(sampleQuestions))
	for _, s := range sampleQuestions {
		raw, err := json.Marshal(s)
		if err != nil {
			return nil, err
		}
		parsed, err := question.ParseGenerated(s.Type, string(raw))
		if err != nil {
			return nil, fmt.Errorf("sample %q: %w", s.Question, err)
		}
		out = append(out, question.Question{
			Type:       parsed.Type,
			Question:   parsed.Question,
			Options:    parsed.Options,
			Answer:     parsed.Answer,
			Difficulty: s.Difficulty,
			Topic:      s.Topic,
			CreatedAt:  now,
		})
	}
	return out, nil
}

type seedStore interface {
	Insert(ctx context.Context, q question.Question) (question.Question, error)
	Count(ctx context.Context) (int64, error)
}

func seed(ctx context.Context, store seedStore, force bool, now time.Time) (int, error) {
	if !force {
		n, err := store.Count(ctx)
		if err != nil {
			return 0, err
		}
		if n > 0 {
			return 0, nil
		}
	}

	questions, err := buildSeed(now)
	if err != nil {
		return 0, err
	}
	for i, q := range questions {
		if _, err := store.Insert(ctx, q); err != nil {
			return i, err
		}
	}
	return len(questions), nil
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the sample question set",
	Long:  "Insert the sample question set. Skips when questions already exist unless --force is given.",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		pg, err := config.LoadSection[config.Postgres]()
		if err != nil {
			return err
		}
		pool, err := pgxpool.New(cmd.Context(), pg.DSN())
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()

		inserted, err := seed(cmd.Context(), repository.NewQuestionRepository(pool), force, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("seed questions: %w", err)
		}
		if inserted == 0 {
			log.Info().Msg("questions already present; use --force to seed anyway")
			return nil
		}
		log.Info().Int("inserted", inserted).Msg("seeded sample questions")
		return nil
	},
}

func init() {
	seedCmd.Flags().Bool("force", false, "seed even when questions already exist")
}
