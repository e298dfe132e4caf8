package question

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/student-toolkit/internal/metrics"
)

const (
	feedbackCorrect   = "Correct!"
	feedbackIncorrect = "Incorrect!"
)

// Evaluator grades a submitted answer and records it in the stats ledger.
type Evaluator struct {
	ai      TextGenerator
	store   QuestionStore
	ledger  StatsLedger
	prompts *Prompts
	logger  zerolog.Logger
}

func NewEvaluator(ai TextGenerator, store QuestionStore, ledger StatsLedger, prompts *Prompts, logger zerolog.Logger) *Evaluator {
	if prompts == nil {
		prompts = DefaultPrompts()
	}
	return &Evaluator{
		ai:      ai,
		store:   store,
		ledger:  ledger,
		prompts: prompts,
		logger:  logger.With().Str("component", "answer_evaluator").Logger(),
	}
}

// Evaluate grades req for the caller identified by email. A verdict is only
// returned once the ledger increment has been stored.
func (e *Evaluator) Evaluate(ctx context.Context, email string, req EvaluateRequest) (Verdict, error) {
	verdict, qType, err := e.evaluate(ctx, email, req)
	if err != nil {
		metrics.EvaluationFailures.WithLabelValues(KindOf(err).String()).Inc()
		return Verdict{}, err
	}
	metrics.AnswersEvaluated.WithLabelValues(string(qType), metrics.Result(verdict.IsCorrect)).Inc()
	return verdict, nil
}

func (e *Evaluator) evaluate(ctx context.Context, email string, req EvaluateRequest) (Verdict, Type, error) {
	const op = "evaluate"

	if strings.TrimSpace(email) == "" {
		return Verdict{}, "", invalidArgument(op, "caller email is required")
	}
	id, err := ParseID(req.ID)
	if err != nil {
		return Verdict{}, "", err
	}
	if strings.TrimSpace(req.UserAnswer) == "" {
		return Verdict{}, "", missingField(op, "userAnswer")
	}

	q, err := e.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrQuestionNotFound) {
			return Verdict{}, "", notFound(op, "question not found", err)
		}
		return Verdict{}, "", storage(op, "failed to load question", err)
	}

	var verdict Verdict
	switch q.Type {
	case TypeMultipleChoice:
		verdict, err = gradeMultipleChoice(q, req.UserAnswer)
	case TypeTrueFalse:
		verdict, err = gradeTrueFalse(q, req.UserAnswer)
	case TypeShortAnswer:
		verdict, err = e.gradeShortAnswer(ctx, q, req.UserAnswer)
	default:
		err = storage(op, "stored question has an unknown type", errors.New(string(q.Type)))
	}
	if err != nil {
		return Verdict{}, "", err
	}
	verdict.CorrectAnswer = q.Answer

	record, err := e.ledger.Increment(ctx, email, verdict.IsCorrect)
	if err != nil {
		e.logger.Error().Err(err).Str("question_id", q.ID).Msg("stats ledger update failed")
		return Verdict{}, "", storage(op, "failed to record answer", err)
	}

	e.logger.Info().
		Str("question_id", q.ID).
		Str("type", string(q.Type)).
		Bool("correct", verdict.IsCorrect).
		Int64("total_answered", record.TotalAnswered).
		Msg("answer evaluated")

	return verdict, q.Type, nil
}

// gradeMultipleChoice compares option keys. Rows whose stored answer is not a
// key are compared by option value instead.
func gradeMultipleChoice(q Question, userAnswer string) (Verdict, error) {
	idx, err := optionIndex(userAnswer, q.Options)
	if err != nil {
		return Verdict{}, err
	}
	var correct bool
	if isOptionKey(q.Answer, len(q.Options)) {
		correct = Normalize(userAnswer) == Normalize(q.Answer)
	} else {
		correct = Normalize(q.Options[idx]) == Normalize(q.Answer)
	}
	return fixedVerdict(correct), nil
}

// gradeTrueFalse resolves the submitted key to its option value and compares
// it to the stored value.
func gradeTrueFalse(q Question, userAnswer string) (Verdict, error) {
	if len(q.Options) < trueFalseOptions {
		return Verdict{}, invalidArgument("grade_true_false", "question has %d options, need at least %d", len(q.Options), trueFalseOptions)
	}
	idx, err := optionIndex(userAnswer, q.Options)
	if err != nil {
		return Verdict{}, err
	}
	return fixedVerdict(Normalize(q.Options[idx]) == Normalize(q.Answer)), nil
}

func (e *Evaluator) gradeShortAnswer(ctx context.Context, q Question, userAnswer string) (Verdict, error) {
	const op = "grade_short_answer"

	prompt, err := e.prompts.Judge(q, strings.TrimSpace(userAnswer))
	if err != nil {
		return Verdict{}, &Error{Kind: KindUnknown, Op: op, Msg: "render prompt", Err: err}
	}
	raw, err := e.ai.Complete(ctx, prompt)
	if err != nil {
		e.logger.Warn().Err(err).Str("question_id", q.ID).Msg("judge call failed")
		return Verdict{}, upstream(op, "answer grader is unavailable", err)
	}
	isCorrect, feedback, err := ParseJudgement(raw)
	if err != nil {
		e.logger.Warn().Err(err).Str("question_id", q.ID).Msg("judge response rejected")
		return Verdict{}, upstream(op, "answer grader returned an unreadable verdict", err)
	}
	return Verdict{IsCorrect: isCorrect, Feedback: feedback}, nil
}

func fixedVerdict(correct bool) Verdict {
	if correct {
		return Verdict{IsCorrect: true, Feedback: feedbackCorrect}
	}
	return Verdict{IsCorrect: false, Feedback: feedbackIncorrect}
}
