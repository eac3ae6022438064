package feed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Totarae/bookmarks/internal/model"
)

// Channel канал Redis, через который экземпляры сервиса обмениваются изменениями.
const Channel = "bookmarks:changes"

// RedisRelay публикует изменения в Redis и раздаёт полученные из Redis
// изменения локальному Hub. Локально Publish ничего не рассылает:
// изменение вернётся через подписку, как и на остальных экземплярах.
type RedisRelay struct {
	client redis.UniversalClient
	hub    *Hub
	logger *zap.Logger
	ready  chan struct{}
}

// NewRedisRelay создаёт RedisRelay.
func NewRedisRelay(client redis.UniversalClient, hub *Hub, logger *zap.Logger) *RedisRelay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisRelay{client: client, hub: hub, logger: logger, ready: make(chan struct{})}
}

// Publish отправляет изменение в Redis.
func (r *RedisRelay) Publish(ctx context.Context, change model.Change) error {
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}
	if err := r.client.Publish(ctx, Channel, data).Err(); err != nil {
		return fmt.Errorf("publish change: %w", err)
	}
	return nil
}

// Ready закрывается, когда подписка на канал подтверждена.
func (r *RedisRelay) Ready() <-chan struct{} {
	return r.ready
}

// Run слушает канал до отмены ctx.
func (r *RedisRelay) Run(ctx context.Context) error {
	pubsub := r.client.Subscribe(ctx, Channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", Channel, err)
	}
	close(r.ready)
	r.logger.Info("Change relay subscribed", zap.String("channel", Channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var change model.Change
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				r.logger.Warn("Skipping malformed change", zap.Error(err))
				continue
			}
			_ = r.hub.Publish(ctx, change)
		}
	}
}
