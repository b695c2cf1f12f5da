package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	redisChannel = "mapshare:changes"
	// publishTimeout bounds each mirror write to Redis.
	publishTimeout = 2 * time.Second
)

type envelope struct {
	Origin string      `json:"origin"`
	Event  ChangeEvent `json:"event"`
}

// RedisBridge shares one change feed between server instances. Local
// publishes hit the hub directly and are mirrored to Redis; events from
// other instances are replayed into the hub by Run.
type RedisBridge struct {
	hub     *Hub
	client  *redis.Client
	origin  string
	logger  *slog.Logger
	timeout time.Duration
}

func NewRedisBridge(hub *Hub, client *redis.Client, logger *slog.Logger) *RedisBridge {
	return &RedisBridge{hub: hub, client: client, origin: uuid.NewString(), logger: logger, timeout: publishTimeout}
}

func OpenRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	opts.ContextTimeoutEnabled = true
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func (b *RedisBridge) Publish(event ChangeEvent) {
	if event.At.IsZero() {
		event.At = b.hub.now().UTC()
	}
	b.hub.Publish(event)
	payload, err := json.Marshal(envelope{Origin: b.origin, Event: event})
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()
	if err := b.client.Publish(ctx, redisChannel, payload).Err(); err != nil {
		b.logger.Warn("redis publish failed", "table", event.Table, "error", err)
	}
}

func (b *RedisBridge) Run(ctx context.Context) {
	pubsub := b.client.Subscribe(ctx, redisChannel)
	defer pubsub.Close()
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			b.relay(msg.Payload)
		}
	}
}

func (b *RedisBridge) relay(payload string) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		b.logger.Warn("dropping malformed change event", "error", err)
		return
	}
	if env.Origin == b.origin {
		return
	}
	b.hub.Publish(env.Event)
}
