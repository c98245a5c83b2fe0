package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/logger"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/metrics"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/mq"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/application/ports/out"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

var _ out.NotificationPublisher = (*NotificationPublisher)(nil)

// notificationMessage: тело сообщения для сервиса уведомлений.
// assunto/mensagem дублируют subject/message для текущего потребителя.
type notificationMessage struct {
	Event     string `json:"event"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	Assunto   string `json:"assunto"`
	Mensagem  string `json:"mensagem"`
	Timestamp string `json:"timestamp"`
}

// NotificationPublisher публикует уведомления в topic exchange под
// одним routing key
type NotificationPublisher struct {
	mq         *mq.RabbitMQ
	routingKey string
	log        *logger.Logger
}

// NewNotificationPublisher создает новый publisher для RabbitMQ
func NewNotificationPublisher(mq *mq.RabbitMQ, routingKey string, log *logger.Logger) *NotificationPublisher {
	return &NotificationPublisher{
		mq:         mq,
		routingKey: routingKey,
		log:        log,
	}
}

// Publish возвращает false при любой ошибке подключения или публикации.
// Может блокироваться на время повторных попыток подключения.
func (p *NotificationPublisher) Publish(ctx context.Context, n out.Notification) bool {
	at := n.OccurredAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	body, err := json.Marshal(notificationMessage{
		Event:     n.Event,
		Email:     n.Email,
		Subject:   n.Subject,
		Message:   n.Message,
		Assunto:   n.Subject,
		Mensagem:  n.Message,
		Timestamp: at.Format(time.RFC3339),
	})
	if err != nil {
		p.fail(n, fmt.Errorf("marshal notification: %w", err))
		return false
	}

	msgID := uuid.NewString()
	err = p.mq.Publish(ctx, p.routingKey, amqp.Publishing{
		ContentType: "application/json",
		MessageId:   msgID,
		Type:        n.Event,
		Timestamp:   at,
		Body:        body,
	})
	if err != nil {
		p.fail(n, err)
		return false
	}

	metrics.NotificationsTotal.WithLabelValues(metrics.NotificationPublished).Inc()
	p.log.Debug(logger.Entry{
		Action:  "notification_published",
		Message: fmt.Sprintf("%s to %s", n.Event, n.Email),
		Additional: map[string]any{
			"message_id":  msgID,
			"exchange":    p.mq.Exchange(),
			"routing_key": p.routingKey,
		},
	})
	return true
}

func (p *NotificationPublisher) fail(n out.Notification, err error) {
	metrics.NotificationsTotal.WithLabelValues(metrics.NotificationFailed).Inc()
	p.log.Error(logger.Entry{
		Action:  "publish_notification_failed",
		Message: err.Error(),
		Error:   &logger.ErrObj{Msg: err.Error()},
		Additional: map[string]any{
			"event": n.Event,
			"email": n.Email,
		},
	})
}
