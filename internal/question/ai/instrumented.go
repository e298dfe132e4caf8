package ai

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/student-toolkit/internal/metrics"
	"github.com/gokatarajesh/student-toolkit/internal/question"
)

// Instrumented bounds every call by a timeout and records its latency and
// outcome. It never retries.
type Instrumented struct {
	inner    question.TextGenerator
	provider string
	timeout  time.Duration
	logger   zerolog.Logger
}

// WithInstrumentation wraps a TextGenerator.
func WithInstrumentation(inner question.TextGenerator, provider string, timeout time.Duration, logger zerolog.Logger) *Instrumented {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Instrumented{
		inner:    inner,
		provider: provider,
		timeout:  timeout,
		logger:   logger.With().Str("component", "text_generator").Str("provider", provider).Logger(),
	}
}

func (i *Instrumented) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	start := time.Now()
	text, err := i.inner.Complete(ctx, prompt)
	elapsed := time.Since(start)

	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		outcome = "timeout"
	default:
		outcome = "error"
	}
	metrics.AIRequestDuration.WithLabelValues(i.provider, outcome).Observe(elapsed.Seconds())

	if err != nil {
		i.logger.Warn().Err(err).Str("outcome", outcome).Dur("elapsed", elapsed).Msg("text generator call failed")
		return "", err
	}
	i.logger.Debug().Dur("elapsed", elapsed).Int("response_bytes", len(text)).Msg("text generator call completed")
	return text, nil
}
