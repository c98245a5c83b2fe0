package spool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/logger"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/application/ports/out"

	"github.com/redis/go-redis/v9"
)

// PendingKey: список уведомлений, ожидающих повторной отправки
const PendingKey = "userdir:notifications:pending"

var _ out.NotificationSpool = (*RedisSpool)(nil)

// RedisSpool хранит FIFO в Redis list: RPUSH в хвост, разбор с головы.
// Рассчитан на одного разборщика.
type RedisSpool struct {
	client *redis.Client
	key    string
	log    *logger.Logger
}

func NewRedisSpool(client *redis.Client, log *logger.Logger) *RedisSpool {
	return &RedisSpool{client: client, key: PendingKey, log: log}
}

func (s *RedisSpool) Park(ctx context.Context, n out.Notification) error {
	raw, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := s.client.RPush(ctx, s.key, raw).Err(); err != nil {
		return fmt.Errorf("spool park: %w", err)
	}
	return nil
}

// Drain снимает элемент с головы только после того, как fn его приняла
func (s *RedisSpool) Drain(ctx context.Context, fn func(out.Notification) bool) (int, error) {
	delivered := 0
	for {
		if err := ctx.Err(); err != nil {
			return delivered, err
		}

		raw, err := s.client.LIndex(ctx, s.key, 0).Result()
		if errors.Is(err, redis.Nil) {
			return delivered, nil
		}
		if err != nil {
			return delivered, fmt.Errorf("spool peek: %w", err)
		}

		var n out.Notification
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			s.log.Warn(logger.Entry{
				Action:  "spool_entry_discarded",
				Message: err.Error(),
			})
			if err := s.client.LPop(ctx, s.key).Err(); err != nil && !errors.Is(err, redis.Nil) {
				return delivered, fmt.Errorf("spool pop: %w", err)
			}
			continue
		}

		if !fn(n) {
			return delivered, nil
		}
		if err := s.client.LPop(ctx, s.key).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return delivered, fmt.Errorf("spool pop: %w", err)
		}
		delivered++
	}
}

// Len: число отложенных уведомлений
func (s *RedisSpool) Len(ctx context.Context) (int64, error) {
	return s.client.LLen(ctx, s.key).Result()
}
