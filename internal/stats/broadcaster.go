package stats

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	ws "github.com/gokatarajesh/student-toolkit/pkg/http/ws"
)

// UserSender delivers a message to one connected user.
type UserSender interface {
	SendToUser(email string, msg ws.Message) error
}

// Broadcaster listens for Redis Pub/Sub stats updates and forwards each one to
// the owning user's websocket, if connected to this instance.
type Broadcaster struct {
	redis   *redis.Client
	hub     UserSender
	channel string
	logger  zerolog.Logger
}

// NewBroadcaster creates a Pub/Sub powered stats broadcaster.
func NewBroadcaster(redis *redis.Client, hub UserSender, channel string, logger zerolog.Logger) *Broadcaster {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Broadcaster{
		redis:   redis,
		hub:     hub,
		channel: channel,
		logger:  logger.With().Str("component", "stats_broadcaster").Logger(),
	}
}

// Run subscribes to the update channel and blocks until the context is cancelled.
func (b *Broadcaster) Run(ctx context.Context) error {
	if b.redis == nil || b.hub == nil {
		return nil
	}

	sub := b.redis.Subscribe(ctx, b.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.forward(msg.Payload)
		}
	}
}

func (b *Broadcaster) forward(payload string) {
	var evt ws.StatsUpdatePayload
	if err := json.Unmarshal([]byte(payload), &evt); err != nil {
		b.logger.Warn().Err(err).Msg("failed to decode stats update payload")
		return
	}
	if evt.Email == "" {
		return
	}

	msg, err := ws.NewMessage(ws.TypeStatsUpdate, evt)
	if err != nil {
		b.logger.Warn().Err(err).Msg("failed to marshal stats WS payload")
		return
	}
	if err := b.hub.SendToUser(evt.Email, msg); err != nil && !errors.Is(err, ws.ErrConnectionNotFound) {
		b.logger.Warn().Err(err).Str("email", evt.Email).Msg("failed to forward stats update")
	}
}
