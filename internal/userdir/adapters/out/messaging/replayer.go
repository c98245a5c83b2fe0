package messaging

import (
	"context"
	"time"

	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/logger"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/metrics"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/application/ports/out"
)

// Replayer периодически переотправляет уведомления из спула.
// Первая неудачная публикация прерывает проход до следующего тика.
type Replayer struct {
	spool     out.NotificationSpool
	publisher out.NotificationPublisher
	interval  time.Duration
	log       *logger.Logger
}

func NewReplayer(spool out.NotificationSpool, publisher out.NotificationPublisher, interval time.Duration, log *logger.Logger) *Replayer {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Replayer{
		spool:     spool,
		publisher: publisher,
		interval:  interval,
		log:       log,
	}
}

func (r *Replayer) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.ReplayOnce(ctx)
		}
	}
}

// ReplayOnce возвращает число доставленных уведомлений
func (r *Replayer) ReplayOnce(ctx context.Context) int {
	n, err := r.spool.Drain(ctx, func(n out.Notification) bool {
		return r.publisher.Publish(ctx, n)
	})
	if err != nil {
		r.log.Error(logger.Entry{
			Action:  "notification_replay_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}
	if n > 0 {
		metrics.NotificationsTotal.WithLabelValues(metrics.NotificationReplayed).Add(float64(n))
		r.log.Info(logger.Entry{
			Action:     "notifications_replayed",
			Message:    "spooled notifications delivered",
			Additional: map[string]any{"count": n},
		})
	}
	return n
}
