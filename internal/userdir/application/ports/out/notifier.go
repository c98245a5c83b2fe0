package out

import (
	"context"
	"time"
)

// Типы доменных событий
const (
	EventUserCreated     = "user.created"
	EventUserUpdated     = "user.updated"
	EventUserDeactivated = "user.deactivated"
)

// Notification: событие для сервиса уведомлений
type Notification struct {
	Event      string    `json:"event"`
	Email      string    `json:"email"`
	Subject    string    `json:"subject"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"timestamp"`
}

// Notifier принимает уведомление к отправке. Не блокируется на брокере
// и не возвращает ошибку, доставка идет по принципу best effort.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotificationPublisher: синхронная публикация в брокер
type NotificationPublisher interface {
	Publish(ctx context.Context, n Notification) bool
}

// NotificationSpool хранит уведомления, которые не удалось опубликовать
type NotificationSpool interface {
	Park(ctx context.Context, n Notification) error

	// Drain передает отложенные уведомления в fn по одному, пока fn
	// возвращает true. Уведомление, на котором fn вернула false,
	// остается в спуле. Возвращает число доставленных.
	Drain(ctx context.Context, fn func(Notification) bool) (int, error)
}
