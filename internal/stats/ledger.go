package stats

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/student-toolkit/internal/question"
	ws "github.com/gokatarajesh/student-toolkit/pkg/http/ws"
)

// DefaultChannel carries stats updates between API instances.
const DefaultChannel = "stats:updates"

// Store is the durable per-email ledger.
type Store interface {
	Increment(ctx context.Context, email string, correct bool) (question.StatsRecord, error)
	Get(ctx context.Context, email string) (question.StatsRecord, error)
}

// Publisher fans an encoded update out to subscribers.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// RedisPublisher publishes over Redis Pub/Sub.
type RedisPublisher struct {
	redis *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{redis: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	return p.redis.Publish(ctx, channel, payload).Err()
}

// Ledger records answers in the store and announces the new tally.
type Ledger struct {
	store     Store
	publisher Publisher
	board     Board
	channel   string
	logger    zerolog.Logger
}

// NewLedger wraps store. publisher may be nil, in which case nothing is announced.
func NewLedger(store Store, publisher Publisher, channel string, logger zerolog.Logger) *Ledger {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Ledger{
		store:     store,
		publisher: publisher,
		channel:   channel,
		logger:    logger.With().Str("component", "stats_ledger").Logger(),
	}
}

// WithLeaderboard makes every stored increment also count on board.
func (l *Ledger) WithLeaderboard(board Board) *Ledger {
	l.board = board
	return l
}

// Board returns the leaderboard fed by this ledger, or nil.
func (l *Ledger) Board() Board {
	return l.board
}

// Increment applies one answer. The leaderboard and subscribers only hear
// about it after the durable write, and their failures do not fail the
// increment.
func (l *Ledger) Increment(ctx context.Context, email string, correct bool) (question.StatsRecord, error) {
	rec, err := l.store.Increment(ctx, email, correct)
	if err != nil {
		return question.StatsRecord{}, err
	}
	if l.board != nil {
		if err := l.board.Record(ctx, email, correct); err != nil {
			l.logger.Warn().Err(err).Str("email", email).Msg("failed to update leaderboard")
		}
	}
	l.publish(ctx, rec)
	return rec, nil
}

// Get returns the caller's tally with zero defaults.
func (l *Ledger) Get(ctx context.Context, email string) (question.StatsRecord, error) {
	return l.store.Get(ctx, email)
}

func (l *Ledger) publish(ctx context.Context, rec question.StatsRecord) {
	if l.publisher == nil {
		return
	}
	payload, err := json.Marshal(toPayload(rec))
	if err != nil {
		l.logger.Warn().Err(err).Msg("failed to encode stats update")
		return
	}
	if err := l.publisher.Publish(ctx, l.channel, payload); err != nil {
		l.logger.Warn().Err(err).Str("email", rec.Email).Msg("failed to publish stats update")
	}
}

func toPayload(rec question.StatsRecord) ws.StatsUpdatePayload {
	return ws.StatsUpdatePayload{
		Email:         rec.Email,
		TotalAnswered: rec.TotalAnswered,
		Correct:       rec.Correct,
		Incorrect:     rec.Incorrect,
	}
}
