package realtime

import (
	"context"
	"fmt"

	"github.com/bassista/go_sole/internal/logger"
	"github.com/redis/go-redis/v9"
)

// RedisTransport subscribes to a Redis pub/sub channel. go-redis
// resubscribes on its own after connection loss.
type RedisTransport struct {
	client  *redis.Client
	channel string
}

// NewRedisTransport creates a transport with its own client.
func NewRedisTransport(addr, password string, db int, channel string) *RedisTransport {
	return &RedisTransport{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		channel: channel,
	}
}

// Run subscribes and forwards messages until ctx is done.
func (t *RedisTransport) Run(ctx context.Context, emit func(Event)) error {
	log := logger.WithComponent("realtime-redis")

	pubsub := t.client.Subscribe(ctx, t.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("subscribe to %s: %w", t.channel, err)
	}
	log.Infof("subscribed to %s", t.channel)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			emit(parseMessage("", []byte(msg.Payload)))
		}
	}
}

// Close releases the Redis client.
func (t *RedisTransport) Close() error {
	return t.client.Close()
}
