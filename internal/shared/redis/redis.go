package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/config"

	"github.com/redis/go-redis/v9"
)

const defaultTimeout = 5 * time.Second

// Connect создает клиент Redis и проверяет соединение через PING
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		DB:           cfg.DB,
		DialTimeout:  defaultTimeout,
		ReadTimeout:  defaultTimeout,
		WriteTimeout: defaultTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}
