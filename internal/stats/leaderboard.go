package stats

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Supported leaderboard windows.
const (
	WindowDaily   = "daily"
	WindowWeekly  = "weekly"
	WindowAllTime = "all_time"
)

var defaultWindows = []string{WindowDaily, WindowWeekly, WindowAllTime}

// LeaderboardEntry is one ranked student.
type LeaderboardEntry struct {
	Rank     int     `json:"rank"`
	Email    string  `json:"email"`
	Correct  int64   `json:"correct"`
	Answered int64   `json:"answered"`
	Accuracy float64 `json:"accuracy"`
}

// Board ranks students by correct answers.
type Board interface {
	Record(ctx context.Context, email string, correct bool) error
	Top(ctx context.Context, window string, limit int) ([]LeaderboardEntry, error)
}

// IsValidWindow reports whether window names a supported leaderboard.
func IsValidWindow(window string) bool {
	switch window {
	case WindowDaily, WindowWeekly, WindowAllTime:
		return true
	default:
		return false
	}
}

// LeaderboardOptions configures RedisLeaderboard.
type LeaderboardOptions struct {
	TopN      int
	KeyPrefix string
	Now       func() time.Time
}

// RedisLeaderboard keeps one sorted set per window bucket, scored by correct
// answers, plus a hash of counters per member.
type RedisLeaderboard struct {
	redis  *redis.Client
	logger zerolog.Logger
	topN   int
	prefix string
	now    func() time.Time
}

func NewRedisLeaderboard(client *redis.Client, logger zerolog.Logger, opts LeaderboardOptions) *RedisLeaderboard {
	topN := opts.TopN
	if topN <= 0 {
		topN = 50
	}
	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = "lb"
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &RedisLeaderboard{
		redis:  client,
		logger: logger.With().Str("component", "leaderboard").Logger(),
		topN:   topN,
		prefix: prefix,
		now:    now,
	}
}

// Record counts one answer in every window.
func (b *RedisLeaderboard) Record(ctx context.Context, email string, correct bool) error {
	now := b.now().UTC()

	pipe := b.redis.TxPipeline()
	for _, window := range defaultWindows {
		zKey := windowKey(b.prefix, window, now)
		metaKey := memberKey(zKey, email)

		pipe.ZIncrBy(ctx, zKey, float64(boolToInt(correct)), email)
		pipe.HIncrBy(ctx, metaKey, "answered", 1)
		pipe.HIncrBy(ctx, metaKey, "correct", boolToInt(correct))
		if ttl := windowTTL(window); ttl > 0 {
			pipe.Expire(ctx, zKey, ttl)
			pipe.Expire(ctx, metaKey, ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("update leaderboard: %w", err)
	}
	return nil
}

// Top retrieves the highest ranked students for the current bucket of window.
func (b *RedisLeaderboard) Top(ctx context.Context, window string, limit int) ([]LeaderboardEntry, error) {
	if !IsValidWindow(window) {
		return nil, fmt.Errorf("unknown leaderboard window %q", window)
	}
	if limit <= 0 || limit > b.topN {
		limit = b.topN
	}

	zKey := windowKey(b.prefix, window, b.now().UTC())
	results, err := b.redis.ZRevRangeWithScores(ctx, zKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch leaderboard: %w", err)
	}

	entries := make([]LeaderboardEntry, 0, len(results))
	for i, z := range results {
		email, _ := z.Member.(string)
		meta, err := b.redis.HGetAll(ctx, memberKey(zKey, email)).Result()
		if err != nil {
			b.logger.Warn().Err(err).Str("window", window).Msg("failed to read leaderboard counters")
			continue
		}
		entry := LeaderboardEntry{
			Rank:     i + 1,
			Email:    email,
			Correct:  int64(z.Score),
			Answered: parseInt(meta["answered"]),
		}
		if entry.Answered > 0 {
			entry.Accuracy = float64(entry.Correct) / float64(entry.Answered)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// windowKey names the sorted set for the bucket of window containing now.
func windowKey(prefix, window string, now time.Time) string {
	switch window {
	case WindowDaily:
		return fmt.Sprintf("%s:%s:%s", prefix, window, now.Format("2006-01-02"))
	case WindowWeekly:
		year, week := now.ISOWeek()
		return fmt.Sprintf("%s:%s:%d-W%02d", prefix, window, year, week)
	default:
		return fmt.Sprintf("%s:%s", prefix, window)
	}
}

func memberKey(zKey, email string) string {
	return zKey + ":meta:" + email
}

// windowTTL keeps a bucket around a little past its end; all_time never expires.
func windowTTL(window string) time.Duration {
	switch window {
	case WindowDaily:
		return 48 * time.Hour
	case WindowWeekly:
		return 8 * 24 * time.Hour
	default:
		return 0
	}
}

func boolToInt(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

func parseInt(val string) int64 {
	if val == "" {
		return 0
	}
	i, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}
	return i
}
