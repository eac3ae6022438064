package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisOptions параметры подключения к Redis.
type RedisOptions struct {
	Addr           string
	Password       string
	DB             int
	ConnectTimeout time.Duration // общее время на попытки подключения
	RetryInterval  time.Duration // начальная пауза, удваивается до maxRetryWait
}

const maxRetryWait = 5 * time.Second

// NewRedis подключается к Redis, повторяя ping с экспоненциальной паузой.
func NewRedis(ctx context.Context, opts RedisOptions, logger *zap.Logger) (*redis.Client, error) {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10 * time.Second
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 500 * time.Millisecond
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	wait := opts.RetryInterval
	for attempt := 1; ; attempt++ {
		err := client.Ping(ctx).Err()
		if err == nil {
			logger.Info("connected to redis", zap.String("addr", opts.Addr), zap.Int("attempts", attempt))
			return client, nil
		}

		logger.Warn("redis connection failed, retrying",
			zap.String("addr", opts.Addr),
			zap.Int("attempt", attempt),
			zap.Duration("next_retry_in", wait),
			zap.Error(err))

		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, fmt.Errorf("redis unavailable at %s after %d attempts: %w", opts.Addr, attempt, err)
		case <-time.After(wait):
		}
		wait *= 2
		if wait > maxRetryWait {
			wait = maxRetryWait
		}
	}
}
