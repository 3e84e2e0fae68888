package feed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Channel is the redis pub/sub channel shared by every instance.
const Channel = "nutritrack:feed"

type relayMessage struct {
	Origin string   `json:"origin"`
	Topics []string `json:"topics"`
}

// RedisRelay fans notifications out to other instances over redis pub/sub and
// replays theirs into the local hub.
type RedisRelay struct {
	rdb    *redis.Client
	hub    *Hub
	origin string
}

// NewRedisRelay creates a relay with a fresh origin id.
func NewRedisRelay(rdb *redis.Client, hub *Hub) *RedisRelay {
	return &RedisRelay{rdb: rdb, hub: hub, origin: uuid.NewString()}
}

// Origin identifies this instance in relayed messages.
func (r *RedisRelay) Origin() string {
	return r.origin
}

func (r *RedisRelay) encode(topics []string) (string, error) {
	b, err := json.Marshal(relayMessage{Origin: r.origin, Topics: topics})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Publish implements Relay.
func (r *RedisRelay) Publish(ctx context.Context, topics []string) error {
	payload, err := r.encode(topics)
	if err != nil {
		return fmt.Errorf("encode feed message: %w", err)
	}
	if err := r.rdb.Publish(ctx, Channel, payload).Err(); err != nil {
		return fmt.Errorf("publish feed message: %w", err)
	}
	return nil
}

// Run subscribes to the shared channel until ctx is cancelled.
func (r *RedisRelay) Run(ctx context.Context) error {
	ps := r.rdb.Subscribe(ctx, Channel)
	defer ps.Close()

	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", Channel, err)
	}
	log.Info().Str("channel", Channel).Str("origin", r.origin).Msg("feed relay subscribed")

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.handle(msg.Payload)
		}
	}
}

// handle replays a relayed message locally, skipping our own.
func (r *RedisRelay) handle(payload string) {
	var m relayMessage
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		log.Warn().Err(err).Msg("feed relay: malformed message")
		return
	}
	if m.Origin == r.origin || len(m.Topics) == 0 {
		return
	}
	r.hub.Notify(m.Topics...)
}
