package messaging

import (
	"context"
	"time"

	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/logger"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/metrics"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/application/ports/out"
)

var _ out.Notifier = (*Dispatcher)(nil)

const (
	spoolTimeout = 2 * time.Second
	drainTimeout = 10 * time.Second
)

// Dispatcher: единственная горутина, владеющая publisher'ом. Запросы
// кладут уведомления в ограниченную очередь и не ждут брокер.
type Dispatcher struct {
	publisher out.NotificationPublisher
	spool     out.NotificationSpool // nil если Redis не настроен
	queue     chan out.Notification
	log       *logger.Logger
}

// NewDispatcher; spool может быть nil
func NewDispatcher(publisher out.NotificationPublisher, spool out.NotificationSpool, size int, log *logger.Logger) *Dispatcher {
	if size <= 0 {
		size = 256
	}
	return &Dispatcher{
		publisher: publisher,
		spool:     spool,
		queue:     make(chan out.Notification, size),
		log:       log,
	}
}

// Notify никогда не блокируется: при полной очереди уведомление уходит
// в спул или отбрасывается
func (d *Dispatcher) Notify(ctx context.Context, n out.Notification) {
	select {
	case d.queue <- n:
		metrics.NotificationQueueDepth.Inc()
	default:
		d.log.Warn(logger.Entry{
			Action:     "notification_queue_full",
			Message:    "publish queue is full",
			Additional: map[string]any{"event": n.Event, "capacity": cap(d.queue)},
		})
		d.park(context.WithoutCancel(ctx), n)
	}
}

// Run обрабатывает очередь до отмены ctx. Оставшиеся уведомления
// паркуются в спул, а без него публикуются с ограничением drainTimeout.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.log.Info(logger.Entry{Action: "notification_dispatcher_started", Message: "dispatcher started"})
	for {
		// отмена важнее очереди: select выбирает случайно
		if ctx.Err() != nil {
			d.stop()
			return nil
		}
		select {
		case <-ctx.Done():
			d.stop()
			return nil
		case n := <-d.queue:
			metrics.NotificationQueueDepth.Dec()
			d.deliver(ctx, n)
		}
	}
}

func (d *Dispatcher) stop() {
	d.drain()
	d.log.Info(logger.Entry{Action: "notification_dispatcher_stopped", Message: "dispatcher stopped"})
}

func (d *Dispatcher) deliver(ctx context.Context, n out.Notification) {
	if d.publisher.Publish(ctx, n) {
		return
	}
	d.park(context.WithoutCancel(ctx), n)
}

func (d *Dispatcher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	for {
		select {
		case n := <-d.queue:
			metrics.NotificationQueueDepth.Dec()
			if d.spool != nil {
				d.park(ctx, n)
				continue
			}
			d.deliver(ctx, n)
		default:
			return
		}
	}
}

func (d *Dispatcher) park(ctx context.Context, n out.Notification) {
	if d.spool == nil {
		d.dropped(n, "no spool configured")
		return
	}

	parkCtx, cancel := context.WithTimeout(ctx, spoolTimeout)
	defer cancel()

	if err := d.spool.Park(parkCtx, n); err != nil {
		d.dropped(n, err.Error())
		return
	}
	metrics.NotificationsTotal.WithLabelValues(metrics.NotificationSpooled).Inc()
	d.log.Info(logger.Entry{
		Action:     "notification_spooled",
		Message:    n.Event + " parked for replay",
		Additional: map[string]any{"email": n.Email},
	})
}

func (d *Dispatcher) dropped(n out.Notification, reason string) {
	metrics.NotificationsTotal.WithLabelValues(metrics.NotificationDropped).Inc()
	d.log.Warn(logger.Entry{
		Action:  "notification_dropped",
		Message: reason,
		Additional: map[string]any{
			"event": n.Event,
			"email": n.Email,
		},
	})
}
