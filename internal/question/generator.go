package question

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/student-toolkit/internal/metrics"
)

// Generator builds a prompt, asks the text generator for a question, validates
// the response and persists it. It keeps no state between calls.
type Generator struct {
	ai      TextGenerator
	store   QuestionStore
	prompts *Prompts
	logger  zerolog.Logger
	now     func() time.Time
}

// GeneratorOptions configures optional Generator behavior.
type GeneratorOptions struct {
	Prompts *Prompts
	Now     func() time.Time
}

func NewGenerator(ai TextGenerator, store QuestionStore, opts GeneratorOptions, logger zerolog.Logger) *Generator {
	prompts := opts.Prompts
	if prompts == nil {
		prompts = DefaultPrompts()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Generator{
		ai:      ai,
		store:   store,
		prompts: prompts,
		logger:  logger.With().Str("component", "question_generator").Logger(),
		now:     now,
	}
}

// Generate creates one question and returns its client view. No record is
// persisted unless every earlier step succeeded.
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (ClientQuestion, error) {
	q, err := g.generate(ctx, req)
	if err != nil {
		metrics.GenerationFailures.WithLabelValues(KindOf(err).String()).Inc()
		return ClientQuestion{}, err
	}
	metrics.QuestionsGenerated.WithLabelValues(string(q.Type), string(q.Difficulty)).Inc()
	return q.ClientView(), nil
}

func (g *Generator) generate(ctx context.Context, req GenerateRequest) (Question, error) {
	const op = "generate"

	qType := Type(strings.TrimSpace(req.Type))
	if !qType.Valid() {
		return Question{}, invalidField(op, "type", "type must be one of multiple_choice, short_answer, true_false; got %q", req.Type)
	}
	difficulty := Difficulty(strings.TrimSpace(req.Difficulty))
	if !difficulty.Valid() {
		return Question{}, invalidField(op, "difficulty", "difficulty must be one of easy, medium, hard; got %q", req.Difficulty)
	}
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		topic = DefaultTopic
	}

	prompt, err := g.prompts.Generation(qType, difficulty, topic)
	if err != nil {
		return Question{}, &Error{Kind: KindUnknown, Op: op, Msg: "render prompt", Err: err}
	}

	raw, err := g.ai.Complete(ctx, prompt)
	if err != nil {
		g.logger.Warn().Err(err).Str("type", string(qType)).Msg("text generator call failed")
		return Question{}, upstream(op, "question generator is unavailable", err)
	}

	parsed, err := ParseGenerated(qType, raw)
	if err != nil {
		g.logger.Warn().Err(err).Str("type", string(qType)).Msg("generated question rejected")
		return Question{}, err
	}

	stored, err := g.store.Insert(ctx, Question{
		Type:       qType,
		Question:   parsed.Question,
		Options:    parsed.Options,
		Answer:     parsed.Answer,
		Difficulty: difficulty,
		Topic:      topic,
		CreatedAt:  g.now().UTC(),
	})
	if err != nil {
		return Question{}, storage(op, "failed to save question", err)
	}

	g.logger.Info().
		Str("question_id", stored.ID).
		Str("type", string(stored.Type)).
		Str("difficulty", string(stored.Difficulty)).
		Str("topic", stored.Topic).
		Msg("question generated")

	return stored, nil
}
